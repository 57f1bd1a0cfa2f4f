package sim

// Pickup 道具（金币 / 无敌），被拾取后开始计时
type Pickup struct {
	Actor
	MaxFrames    int
	FramesActive int
	Collected    bool
}

func newPickup(id ID, kind Kind, x, y int, spec PickupSpec) *Pickup {
	return &Pickup{
		Actor: Actor{
			ID:     id,
			Kind:   kind,
			Caps:   CapCollidable | CapMovable,
			X:      x,
			Y:      y,
			Radius: spec.Radius,
		},
		MaxFrames: spec.MaxFrames,
	}
}

// Active 生效窗口：0 < FramesActive ≤ MaxFrames
func (p *Pickup) Active() bool {
	return p != nil && p.Collected && p.FramesActive > 0 && p.FramesActive <= p.MaxFrames
}

// Remaining 生效窗口剩余帧数，未生效为 0
func (p *Pickup) Remaining() int {
	if !p.Active() {
		return 0
	}
	return p.MaxFrames - p.FramesActive
}

// advance 未拾取时随道路滚动，已拾取则计数
func (p *Pickup) advance(scroll int) {
	if p.Collected {
		p.FramesActive++
		return
	}
	p.Y += scroll
}

// holder 持有道具的一方（出租车或司机），两者可以同时持有同一个道具
type holder struct {
	Coin  *Pickup
	Power *Pickup
}

func (h *holder) collect(p *Pickup) {
	switch p.Kind {
	case KindCoin:
		h.Coin = p
	case KindInvinciblePower:
		h.Power = p
	}
}

func (h *holder) holds(p *Pickup) bool { return h.Coin == p || h.Power == p }

func (h *holder) invincible() bool { return h.Power.Active() }

// applyCoin 金币生效期间让当前行程的优先级降一档，每个行程只生效一次
func (h *holder) applyCoin(t *Trip) bool {
	if t == nil || t.Completed || !h.Coin.Active() {
		return false
	}
	plan := t.Passenger.Plan
	if plan.CoinApplied {
		return false
	}
	plan.LowerPriority()
	plan.CoinApplied = true
	return true
}
