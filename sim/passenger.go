package sim

// Passenger 乘客
type Passenger struct {
	Actor
	Plan *TravelPlan

	WalkSpeedX   int
	WalkSpeedY   int
	DetectRadius float64

	// InTaxi 行程进行中（上车标记），行程完成后清除
	InTaxi      bool
	Boarding    bool // 正走向出租车
	ReachedFlag bool

	trip *Trip
}

func newPassenger(id ID, x, y int, plan *TravelPlan, spec PersonSpec, detectRadius float64) *Passenger {
	return &Passenger{
		Actor: Actor{
			ID:     id,
			Kind:   KindPassenger,
			Caps:   CapDamageable | CapCollidable | CapMovable,
			X:      x,
			Y:      y,
			Radius: spec.Radius,
			Health: NewHealth(spec.Health),
			Attack: spec.Attack,
			KnockX: 2,
			KnockY: 2,
		},
		Plan:         plan,
		WalkSpeedX:   spec.WalkSpeedX,
		WalkSpeedY:   spec.WalkSpeedY,
		DetectRadius: detectRadius,
	}
}

// Trip 最近一次行程（进行中或已完成）
func (p *Passenger) Trip() *Trip { return p.trip }

// Waiting 还没有开始过行程
func (p *Passenger) Waiting() bool { return p.trip == nil }

// canBoard 出租车静止、无其他行程、司机在车上且在感应半径内
func (p *Passenger) canBoard(taxi *Vehicle) bool {
	if p.trip != nil || p.Destroyed || taxi == nil || taxi.Destroyed {
		return false
	}
	if taxi.Moving() || taxi.Trip != nil || !taxi.DriverAboard {
		return false
	}
	return distance(p.X, p.Y, taxi.X, taxi.Y) <= p.DetectRadius
}

// walkToward 每轴按步行速度靠近目标，不越过目标；到达返回 true
func (p *Passenger) walkToward(x, y int) bool {
	p.X = approach(p.X, x, p.WalkSpeedX)
	p.Y = approach(p.Y, y, p.WalkSpeedY)
	return p.X == x && p.Y == y
}

// follow 行程中跟随出租车或司机
func (p *Passenger) follow(x, y int) {
	p.X, p.Y = x, y
}

func approach(from, to, step int) int {
	switch {
	case from < to:
		return min(from+step, to)
	case from > to:
		return max(from-step, to)
	default:
		return from
	}
}
