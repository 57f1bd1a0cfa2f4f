package server

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowtaxi/config"
	"shadowtaxi/level"
	"shadowtaxi/score"
	"shadowtaxi/sim"
)

func testDeps(store score.Store) Deps {
	cfg := sim.DefaultConfig()
	cfg.CarSpawnProbability = 0
	cfg.EnemySpawnProbability = 0
	cfg.FireballSpawnProbability = 0
	return Deps{
		Game:   cfg,
		Level:  &level.Level{Placements: []sim.Placement{{Kind: sim.PlaceTaxi, X: 480, Y: 500}}},
		Scores: store,
		Server: config.ServerConfig{
			TicksPerSecond:   100,
			RoomID:           "lobby",
			PlayerName:       "player",
			SendBuffer:       16,
			InputBuffer:      64,
			MaxInputsPerTick: 16,
		},
	}
}

// 无底层连接，只用发送队列观察广播
func fakeConn() *ClientConn { return NewClientConn(nil, 16) }

func lastMessage(t *testing.T, c *ClientConn) statePayload {
	t.Helper()
	var last []byte
	for len(c.send) > 0 {
		last = <-c.send
	}
	require.NotNil(t, last, "no message broadcast")
	var p statePayload
	require.NoError(t, json.Unmarshal(last, &p))
	return p
}

func key(pid PlayerID, k sim.Key, down bool) Input {
	return Input{PlayerID: pid, Key: k, Down: down}
}

func TestKeyState_Edges(t *testing.T) {
	var k keyState
	k.apply(sim.KeyUp, true)
	k.apply(sim.KeyLeft, true)
	k.apply(sim.KeyLeft, false)

	in := k.frame()
	assert.True(t, in.WasPressed(sim.KeyUp))
	assert.True(t, in.IsDown(sim.KeyUp))
	assert.False(t, in.WasPressed(sim.KeyLeft), "last event in a frame wins")
	assert.True(t, in.WasReleased(sim.KeyLeft))
	assert.False(t, in.IsDown(sim.KeyLeft))

	in = k.frame()
	assert.False(t, in.WasPressed(sim.KeyUp), "edges cleared after a frame")
	assert.True(t, in.IsDown(sim.KeyUp), "held keys persist")

	k.apply(sim.KeyUp, true) // 重复按下不产生新边沿
	assert.False(t, k.frame().WasPressed(sim.KeyUp))

	k.releaseAll()
	in = k.frame()
	assert.True(t, in.WasReleased(sim.KeyUp))
	assert.False(t, in.IsDown(sim.KeyUp))

	// 松开后再按下：只剩按下边沿
	k.apply(sim.KeyDown, true)
	k.frame()
	k.apply(sim.KeyDown, false)
	k.apply(sim.KeyDown, true)
	in = k.frame()
	assert.True(t, in.WasPressed(sim.KeyDown))
	assert.False(t, in.WasReleased(sim.KeyDown))
	assert.True(t, in.IsDown(sim.KeyDown))

	// 同一帧按下后离开
	k.apply(sim.KeyRight, true)
	k.releaseAll()
	in = k.frame()
	assert.False(t, in.WasPressed(sim.KeyRight))
	assert.True(t, in.WasReleased(sim.KeyRight))
}

func TestRoom_FirstJoinerControls(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	alice, bob := fakeConn(), fakeConn()
	r.RequestJoin("alice", alice)
	r.RequestJoin("bob", bob)
	r.RunTick()

	st := r.Status()
	assert.Equal(t, "alice", st.Controller)
	assert.Equal(t, 2, st.Players)
	assert.NotEmpty(t, st.RoundID)
	assert.Equal(t, "running", st.Outcome)
	assert.Equal(t, 1, st.Frame)
	assert.EqualValues(t, 1, r.Metrics().RoundsStarted)

	msg := lastMessage(t, bob)
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, st.RoundID, msg.Round)
	assert.Equal(t, []PlayerState{{ID: "alice", Role: RoleController}, {ID: "bob", Role: RoleSpectator}}, msg.Players)
	require.NotNil(t, msg.World)
	assert.Equal(t, 1, msg.World.Frame)
}

func TestRoom_ControllerKeysDriveWorld(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	r.RequestJoin("alice", fakeConn())
	r.RequestJoin("bob", fakeConn())
	r.RunTick()

	r.OnInput(key("bob", sim.KeyUp, true))
	r.RunTick()
	assert.False(t, r.world.Scrolling(), "spectator keys are ignored")
	assert.EqualValues(t, 1, r.Metrics().SpectatorIgnored)

	r.OnInput(key("alice", sim.KeyUp, true))
	r.RunTick()
	assert.True(t, r.world.Scrolling())

	r.OnInput(key("alice", sim.KeyUp, false))
	r.RunTick()
	assert.False(t, r.world.Scrolling())
	assert.EqualValues(t, 2, r.Metrics().InputsAccepted)
}

func TestRoom_TapWithinTickStopsScroll(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	r.RequestJoin("alice", fakeConn())
	r.RunTick()

	r.OnInput(key("alice", sim.KeyUp, true))
	r.OnInput(key("alice", sim.KeyUp, false))
	r.RunTick()
	for i := 0; i < 5; i++ {
		r.RunTick()
	}
	assert.False(t, r.world.Scrolling(), "no key held after a tap")
	assert.False(t, r.world.Taxi().MovingY)
	assert.EqualValues(t, 2, r.Metrics().InputsAccepted)
}

func TestRoom_OldSeqIgnored(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	r.RequestJoin("alice", fakeConn())
	r.RunTick()

	r.OnInput(Input{PlayerID: "alice", Key: sim.KeyLeft, Down: true, Seq: 5})
	r.OnInput(Input{PlayerID: "alice", Key: sim.KeyLeft, Down: false, Seq: 5})
	r.OnInput(Input{PlayerID: "alice", Key: sim.KeyLeft, Down: false, Seq: 3})
	r.RunTick()

	assert.EqualValues(t, 1, r.Metrics().InputsAccepted)
	assert.EqualValues(t, 2, r.Metrics().OldSeqIgnored)
}

func TestRoom_RateLimitPerTick(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	r.SetMaxInputsPerTick(1)
	r.RequestJoin("alice", fakeConn())
	r.RunTick()

	r.OnInput(key("alice", sim.KeyLeft, true))
	r.OnInput(key("alice", sim.KeyLeft, false))
	r.RunTick()
	assert.EqualValues(t, 1, r.Metrics().InputsAccepted)
	assert.EqualValues(t, 1, r.Metrics().RateLimited)

	// 下一帧计数重置
	r.OnInput(key("alice", sim.KeyLeft, false))
	r.RunTick()
	assert.EqualValues(t, 2, r.Metrics().InputsAccepted)
}

func TestRoom_ChannelFullDiscards(t *testing.T) {
	deps := testDeps(nil)
	deps.Server.InputBuffer = 1
	r := NewRoom("lobby", deps)

	r.OnInput(key("alice", sim.KeyUp, true))
	r.OnInput(key("alice", sim.KeyUp, false))
	assert.EqualValues(t, 1, r.Metrics().ChanFullDiscarded)
}

func TestRoom_ControllerLeavePromotesNext(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	alice := fakeConn()
	r.RequestJoin("alice", alice)
	r.RequestJoin("bob", fakeConn())
	r.RunTick()

	r.OnInput(key("alice", sim.KeyUp, true))
	r.RunTick()
	require.True(t, r.world.Scrolling())

	r.RequestLeave("alice", alice)
	r.RunTick()
	assert.Equal(t, "bob", r.Status().Controller)
	assert.Equal(t, RoleController, r.Players["bob"].Role)

	// 控制者离开时松开按键，道路停止滚动
	r.RunTick()
	assert.False(t, r.world.Scrolling())
}

func TestRoom_StaleLeaveAfterReconnect(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	first, second := fakeConn(), fakeConn()
	r.RequestJoin("alice", first)
	r.RunTick()

	r.RequestJoin("alice", second)
	r.RunTick()
	r.RequestLeave("alice", first)
	r.RunTick()

	require.Contains(t, r.Players, PlayerID("alice"))
	assert.Same(t, second, r.Players["alice"].Conn)
	assert.Equal(t, "alice", r.Status().Controller)
}

func TestRoom_PausedWithoutController(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	alice := fakeConn()
	r.RequestJoin("alice", alice)
	r.RunTick()
	r.RequestLeave("alice", alice)
	r.RunTick()
	frame := r.Status().Frame

	r.RunTick()
	r.RunTick()
	assert.Equal(t, frame, r.Status().Frame)
	assert.Empty(t, r.Status().Controller)
}

func TestRoom_RoundEndRecordsAndRanks(t *testing.T) {
	store := score.NewFileStore(filepath.Join(t.TempDir(), "scores.csv"))
	require.NoError(t, store.Record("bob", 42))

	deps := testDeps(store)
	deps.Game.MaxFrames = 2
	r := NewRoom("lobby", deps)
	alice := fakeConn()
	r.RequestJoin("alice", alice)
	r.RunTick()
	r.RunTick()

	assert.Equal(t, "lost", r.Status().Outcome)
	assert.EqualValues(t, 1, r.Metrics().RoundsLost)

	msg := lastMessage(t, alice)
	assert.Equal(t, "end", msg.Type)
	assert.Equal(t, []score.Entry{{Name: "bob", Earnings: 42}, {Name: "alice", Earnings: 0}}, msg.Scores)

	// 结束后不再推进也不再重复广播
	r.RunTick()
	assert.Equal(t, 2, r.Status().Frame)
	assert.Zero(t, len(alice.send))

	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2, "score recorded exactly once")
}

func TestRoom_RestartOnlyByController(t *testing.T) {
	deps := testDeps(nil)
	deps.Game.MaxFrames = 1
	r := NewRoom("lobby", deps)
	r.RequestJoin("alice", fakeConn())
	r.RequestJoin("bob", fakeConn())
	r.RunTick()
	first := r.Status().RoundID
	require.Equal(t, "lost", r.Status().Outcome)

	r.RequestRestart("bob")
	r.RunTick()
	assert.Equal(t, first, r.Status().RoundID)

	r.RequestRestart("alice")
	r.RunTick()
	st := r.Status()
	assert.NotEqual(t, first, st.RoundID)
	assert.EqualValues(t, 2, r.Metrics().RoundsStarted)

	r.RequestRestart("")
	r.RunTick()
	assert.NotEqual(t, st.RoundID, r.Status().RoundID)
}

func TestRoom_StopClosesPlayers(t *testing.T) {
	r := NewRoom("lobby", testDeps(nil))
	r.StartTicker()
	r.Stop()
	r.Stop()

	// 停止后加入请求直接关闭连接
	c := fakeConn()
	r.RequestJoin("late", c)
	assert.Nil(t, c.send)
	assert.Empty(t, r.Players)
}
