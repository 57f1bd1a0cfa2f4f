package server

import "shadowtaxi/sim"

// Input 客户端按键事件（意图），由服务端在 Tick 中汇总为一帧的 sim.Input
type Input struct {
	PlayerID PlayerID
	Key      sim.Key
	Down     bool  // true 按下，false 松开
	Seq      int64 // 客户端本地序列号，用于去重
}

// 入站消息的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"key","key":"up","down":true,"seq":12}
//
//	{"type":"restart"}
type InputMessage struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
	Down bool   `json:"down,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// keyState 控制者的按键状态：持续按住的集合，以及本帧的按下/松开边沿
type keyState struct {
	held     sim.KeySet
	pressed  sim.KeySet
	released sim.KeySet
}

// apply 同一帧内对同一按键的多次事件以最后一次为准
func (k *keyState) apply(key sim.Key, down bool) {
	if down {
		if !k.held.Has(key) {
			k.pressed = k.pressed.With(key)
			k.released = k.released.Without(key)
		}
		k.held = k.held.With(key)
		return
	}
	if k.held.Has(key) {
		k.pressed = k.pressed.Without(key)
		k.released = k.released.With(key)
	}
	k.held = k.held.Without(key)
}

// frame 取出本帧输入并清空边沿
func (k *keyState) frame() sim.Input {
	in := sim.Input{Pressed: k.pressed, Held: k.held, Released: k.released}
	k.pressed, k.released = 0, 0
	return in
}

// releaseAll 控制者离开时松开所有按键
func (k *keyState) releaseAll() {
	k.pressed &^= k.held
	k.released |= k.held
	k.held = 0
}
