package server

// PlayerID 表示玩家唯一标识
type PlayerID string

// Role 玩家在房间中的角色
type Role string

const (
	RoleController Role = "controller" // 驾驶出租车，名字记入成绩
	RoleSpectator  Role = "spectator"
)

// PlayerState 为广播给客户端的轻量状态
type PlayerState struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Player 房间内的玩家
type Player struct {
	ID   PlayerID
	Role Role

	lastSeq        int64
	inputsThisTick int

	Conn *ClientConn // 网络连接的发送端（写协程）
}
