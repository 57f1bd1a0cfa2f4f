package server

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"shadowtaxi/config"
	"shadowtaxi/level"
	"shadowtaxi/score"
	"shadowtaxi/sim"
)

// TopScores 结束画面展示的排行条数
const TopScores = 5

// Deps 房间运行所需的外部依赖，由 main 注入
type Deps struct {
	Game   sim.Config
	Level  *level.Level
	Scores score.Store // 可为空：不落盘
	Server config.ServerConfig
}

// RoundStatus 对外（HTTP）可见的一局概况，由 Tick 协程整体替换
type RoundStatus struct {
	RoundID    string  `json:"round"`
	Frame      int     `json:"frame"`
	Earnings   float64 `json:"earnings"`
	Outcome    string  `json:"outcome"`
	Weather    string  `json:"weather"`
	Controller string  `json:"controller"`
	Players    int     `json:"players"`
}

// joinRequest 加入与离开请求；离开时 conn 用于识别重连前的旧连接
type joinRequest struct {
	id   PlayerID
	conn *ClientConn
}

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进
type Room struct {
	ID string

	deps Deps

	Players    map[PlayerID]*Player
	order      []PlayerID // 加入顺序，控制者离开时按此移交
	controller PlayerID

	inputChan   chan Input
	joinChan    chan joinRequest
	leaveChan   chan joinRequest
	restartChan chan PlayerID
	stopChan    chan struct{}
	doneChan    chan struct{}
	stopOnce    sync.Once

	world   *sim.World
	roundID string
	keys    keyState
	ranking []score.Entry
	dirty   bool // 人员或回合变化，结束后仍需广播一次

	interval         time.Duration
	maxInputsPerTick int64 // 原子读写，可由管理接口热更新
	tickSeq          int64
	metrics          *RoomMetrics
	status           atomic.Pointer[RoundStatus]

	tickerMu      sync.Mutex
	tickerStarted bool
}

// NewRoom 创建房间，初始化数据结构；回合在第一个玩家加入时开始
func NewRoom(id string, deps Deps) *Room {
	inputBuf := deps.Server.InputBuffer
	if inputBuf <= 0 {
		inputBuf = 256 // 足够缓冲，避免网络读阻塞影响 Tick
	}
	tps := deps.Server.TicksPerSecond
	if tps <= 0 {
		tps = 60
	}
	r := &Room{
		ID:               id,
		deps:             deps,
		Players:          make(map[PlayerID]*Player),
		inputChan:        make(chan Input, inputBuf),
		joinChan:         make(chan joinRequest, 64),
		leaveChan:        make(chan joinRequest, 64),
		restartChan:      make(chan PlayerID, 8),
		stopChan:         make(chan struct{}),
		doneChan:         make(chan struct{}),
		interval:         time.Second / time.Duration(tps),
		maxInputsPerTick: int64(deps.Server.MaxInputsPerTick),
		metrics:          &RoomMetrics{},
	}
	r.status.Store(&RoundStatus{Outcome: "waiting"})
	return r
}

// RequestJoin 请求在 Tick 线程中加入玩家
func (r *Room) RequestJoin(id PlayerID, conn *ClientConn) {
	select {
	case <-r.stopChan:
		// 房间已停止
	default:
		select {
		case r.joinChan <- joinRequest{id: id, conn: conn}:
			return
		case <-r.stopChan:
		}
	}
	if conn != nil {
		conn.Close()
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家，避免并发改动房间状态
func (r *Room) RequestLeave(pid PlayerID, conn *ClientConn) {
	// 为保证移除一定生效，这里采用阻塞式写入；房间停止后由 Stop 统一清理
	select {
	case r.leaveChan <- joinRequest{id: pid, conn: conn}:
	case <-r.stopChan:
	}
}

// RequestRestart 请求开始新的一局；pid 为空表示来自管理接口
func (r *Room) RequestRestart(pid PlayerID) {
	select {
	case r.restartChan <- pid:
	default:
		// 已有待处理的重开请求
	}
}

// OnInput 入站输入（不立即改变世界），仅记录意图，等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	// 不阻塞：输入拥塞时直接丢弃，保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// BeginTick 重置帧内计数
func (r *Room) BeginTick() {
	atomic.AddInt64(&r.tickSeq, 1)
	for _, p := range r.Players {
		p.inputsThisTick = 0
	}
}

// ProcessInputs 按加入、输入、重开、离开的顺序处理本帧积压的请求（非阻塞 drain）
func (r *Room) ProcessInputs() {
	for n := len(r.joinChan); n > 0; n-- {
		r.joinPlayer(<-r.joinChan)
	}
	for n := len(r.inputChan); n > 0; n-- {
		r.applyInput(<-r.inputChan)
	}
	for n := len(r.restartChan); n > 0; n-- {
		pid := <-r.restartChan
		if pid != "" && pid != r.controller {
			continue
		}
		r.startRound()
	}
	for n := len(r.leaveChan); n > 0; n-- {
		req := <-r.leaveChan
		if p, ok := r.Players[req.id]; ok && req.conn != nil && p.Conn != req.conn {
			continue // 旧连接的读泵退出，玩家已重连
		}
		r.LeavePlayer(req.id)
	}
}

func (r *Room) joinPlayer(req joinRequest) {
	if old, ok := r.Players[req.id]; ok {
		// 同名重连：替换连接，保留角色
		if old.Conn != nil {
			old.Conn.Close()
		}
		old.Conn = req.conn
		old.lastSeq = 0
		r.dirty = true
		return
	}
	p := &Player{ID: req.id, Role: RoleSpectator, Conn: req.conn}
	r.Players[req.id] = p
	r.order = append(r.order, req.id)
	if r.controller == "" {
		r.promote(p)
	}
	r.dirty = true
	logger().Infow("player joined", "room", r.ID, "player", req.id, "role", p.Role)

	if r.world == nil {
		r.startRound()
	}
}

// LeavePlayer 将玩家移出房间
func (r *Room) LeavePlayer(id PlayerID) {
	p, ok := r.Players[id]
	if !ok {
		return
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.Players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.dirty = true
	logger().Infow("player left", "room", r.ID, "player", id)

	if id != r.controller {
		return
	}
	r.controller = ""
	r.keys.releaseAll()
	if len(r.order) > 0 {
		r.promote(r.Players[r.order[0]])
	}
}

func (r *Room) promote(p *Player) {
	p.Role = RoleController
	r.controller = p.ID
	logger().Infow("controller assigned", "room", r.ID, "player", p.ID)
}

func (r *Room) applyInput(in Input) {
	p, ok := r.Players[in.PlayerID]
	if !ok {
		return
	}
	if in.Seq > 0 {
		if in.Seq <= p.lastSeq {
			r.metrics.IncOldSeqIgnored()
			return
		}
		p.lastSeq = in.Seq
	}
	if p.Role != RoleController {
		r.metrics.IncSpectatorIgnored()
		return
	}
	if limit := atomic.LoadInt64(&r.maxInputsPerTick); limit > 0 && int64(p.inputsThisTick) >= limit {
		r.metrics.IncRateLimited()
		return
	}
	p.inputsThisTick++
	r.keys.apply(in.Key, in.Down)
	r.metrics.IncAccepted()
}

// startRound 用控制者的名字开始新的一局，旧的一局直接丢弃
func (r *Room) startRound() {
	name := r.deps.Server.PlayerName
	if r.controller != "" {
		name = string(r.controller)
	}
	roundID := uuid.NewString()
	log := logger().With("room", r.ID, "round", roundID)

	bus := sim.NewEventBus()
	bus.Subscribe(sim.EventTripCompleted, func(sim.Event) { r.metrics.IncTripsCompleted() })
	bus.Subscribe(sim.EventActorDestroyed, func(e sim.Event) {
		if e.Kind.IsVehicle() {
			r.metrics.IncVehiclesDestroyed()
		}
	})

	var recorder sim.ScoreRecorder
	if r.deps.Scores != nil {
		recorder = r.deps.Scores
	}
	var placements []sim.Placement
	var weather []sim.WeatherSpan
	if r.deps.Level != nil {
		placements, weather = r.deps.Level.Placements, r.deps.Level.Weather
	}

	seed := rand.Uint64()
	w, err := sim.NewWorld(r.deps.Game, placements, weather, sim.Options{
		Log:        log,
		Rand:       rand.New(rand.NewPCG(seed, seed>>1)),
		Recorder:   recorder,
		Bus:        bus,
		PlayerName: name,
	})
	if err != nil {
		log.Errorw("start round failed", "err", err)
		return
	}

	r.world = w
	r.roundID = roundID
	r.ranking = nil
	r.keys = keyState{held: r.keys.held}
	r.dirty = true
	r.metrics.IncRoundsStarted()
	log.Infow("round started", "player", name, "seed", seed)
}

// UpdateWorld 用汇总后的按键推进一帧；没有控制者或已结束时暂停
func (r *Room) UpdateWorld() bool {
	if r.world == nil || r.world.Finished() || r.controller == "" {
		return false
	}
	if r.world.Tick(r.keys.frame()) {
		won := r.world.Outcome() == sim.OutcomeWon
		r.metrics.AddOutcome(won)
		r.ranking = r.topScores()
		r.dirty = true
	}
	return true
}

func (r *Room) topScores() []score.Entry {
	if r.deps.Scores == nil {
		return nil
	}
	entries, err := r.deps.Scores.List()
	if err != nil {
		logger().Warnw("list scores failed", "room", r.ID, "err", err)
		return nil
	}
	return score.Top(entries, TopScores)
}

type statePayload struct {
	Type    string        `json:"type"` // state 或 end
	Room    string        `json:"room"`
	Round   string        `json:"round"`
	Tick    int64         `json:"tick"`
	Players []PlayerState `json:"players"`
	World   *sim.Snapshot `json:"world,omitempty"`
	Scores  []score.Entry `json:"scores,omitempty"`
}

// Broadcast 将当前世界状态广播给所有玩家（文本 JSON）
func (r *Room) Broadcast(advanced bool) {
	if !advanced && !r.dirty {
		return
	}
	r.dirty = false
	b, err := json.Marshal(r.payload())
	if err != nil {
		logger().Errorw("marshal state failed", "room", r.ID, "err", err)
		return
	}
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Enqueue(b)
		}
	}
}

func (r *Room) payload() statePayload {
	players := make([]PlayerState, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, PlayerState{ID: string(id), Role: r.Players[id].Role})
	}
	out := statePayload{
		Type:    "state",
		Room:    r.ID,
		Round:   r.roundID,
		Tick:    atomic.LoadInt64(&r.tickSeq),
		Players: players,
	}
	if r.world != nil {
		snap := r.world.Snapshot()
		out.World = &snap
		if r.world.Finished() {
			out.Type = "end"
			out.Scores = r.ranking
		}
	}
	return out
}

func (r *Room) updateStatus() {
	st := &RoundStatus{
		RoundID:    r.roundID,
		Controller: string(r.controller),
		Players:    len(r.Players),
		Outcome:    "waiting",
	}
	if r.world != nil {
		st.Frame = r.world.Frame()
		st.Earnings = r.world.Earnings()
		st.Outcome = r.world.Outcome().String()
		st.Weather = r.world.Weather()
	}
	r.status.Store(st)
}

// Status 当前一局的概况，可在任意协程读取
func (r *Room) Status() RoundStatus {
	return *r.status.Load()
}

// Metrics 房间指标
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Tick 当前 Tick 序号
func (r *Room) Tick() int64 { return atomic.LoadInt64(&r.tickSeq) }

// MaxInputsPerTick 每个玩家每 Tick 的输入上限，0 表示不限
func (r *Room) MaxInputsPerTick() int { return int(atomic.LoadInt64(&r.maxInputsPerTick)) }

// SetMaxInputsPerTick 热更新输入上限
func (r *Room) SetMaxInputsPerTick(n int) { atomic.StoreInt64(&r.maxInputsPerTick, int64(n)) }
