package server

import (
	"net/http"
	"sync"
)

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	deps  Deps
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

// InitRoomManager 用依赖初始化单例；只有第一次调用生效
func InitRoomManager(deps Deps) *RoomManager {
	once.Do(func() {
		defaultManager = NewRoomManager(deps)
	})
	return defaultManager
}

// GetRoomManager 单例房间管理器，需先调用 InitRoomManager
func GetRoomManager() *RoomManager {
	return defaultManager
}

// NewRoomManager 创建独立的管理器（测试或多实例场景）
func NewRoomManager(deps Deps) *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room), deps: deps}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.deps)
		m.rooms[id] = r
		r.StartTicker()
		logger().Infow("room created", "room", id, "tps", m.deps.Server.TicksPerSecond)
	}
	return r
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// StopAll 停止所有房间的 Tick 循环
func (m *RoomManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Stop()
		delete(m.rooms, id)
	}
}

// RegisterRoutes 注册 WebSocket、管理与监控接口
func (m *RoomManager) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/admin/round", m.HandleAdminRound)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/scores", m.HandleScores)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

// roomID 读取 ?room=，缺省为配置的默认房间
func (m *RoomManager) roomID(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	if m.deps.Server.RoomID != "" {
		return m.deps.Server.RoomID
	}
	return "lobby"
}
