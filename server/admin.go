package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shadowtaxi/config"
	"shadowtaxi/score"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供配置的读取与房间参数的更新（热更新基本规则）
// GET /admin/config?room=lobby  返回解析后的全部配置与房间参数
// POST /admin/config?room=lobby 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := m.roomID(r)

	type cfg struct {
		MaxInputsPerTick *int `json:"maxInputsPerTick,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		cur := map[string]any{"settings": config.All()}
		if room, ok := m.Room(roomID); ok {
			n := room.MaxInputsPerTick()
			cur["room"] = cfg{MaxInputsPerTick: &n}
		}
		writeJSON(w, http.StatusOK, cur)
		return
	case http.MethodPost:
		room, ok := m.Room(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.MaxInputsPerTick != nil {
			if *body.MaxInputsPerTick < 0 {
				http.Error(w, "maxInputsPerTick must not be negative", http.StatusBadRequest)
				return
			}
			room.SetMaxInputsPerTick(*body.MaxInputsPerTick)
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		logger().Infof("config updated: room=%s maxInputsPerTick=%d", roomID, room.MaxInputsPerTick())
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleAdminRound 结束当前一局并开始新的一局
// POST /admin/round?room=lobby
func (m *RoomManager) HandleAdminRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomID := m.roomID(r)
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	room.RequestRestart("")
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "room": roomID})
	logger().Infow("round restart requested", "room", roomID)
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=lobby
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := m.roomID(r)
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"room":    roomID,
		"tick":    room.Tick(),
		"round":   room.Status(),
		"metrics": room.Metrics().Snapshot(),
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleScores 成绩排行
// GET /scores?n=5
func (m *RoomManager) HandleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n := TopScores
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = v
	}
	entries := []score.Entry{}
	if m.deps.Scores != nil {
		list, err := m.deps.Scores.List()
		if err != nil {
			logger().Errorw("list scores failed", "err", err)
			http.Error(w, "scores unavailable", http.StatusInternalServerError)
			return
		}
		entries = score.Top(list, n)
	}
	writeJSON(w, http.StatusOK, entries)
}
