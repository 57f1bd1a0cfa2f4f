package sim

// Vehicle 出租车、普通车与敌方车辆
type Vehicle struct {
	Actor
	holder

	SpeedX int
	SpeedY int // 出租车：道路滚动步长；其他车辆：自身速度

	MovingX bool
	MovingY bool

	// 仅出租车使用
	DriverAboard bool
	Trip         *Trip
	Trips        []*Trip // 已完成行程，出租车重生后继续累计
	OffScreen    bool
	respawnIn    int
	wreckPlaced  bool

	wreck     *Effect // 摧毁时生成的火焰，过期后才能移除
	fireballs []*Projectile
}

func newTaxi(id ID, x, y int, spec VehicleSpec, tripHint int) *Vehicle {
	return &Vehicle{
		Actor: Actor{
			ID:     id,
			Kind:   KindTaxi,
			Caps:   CapDamageable | CapCollidable | CapMovable,
			X:      x,
			Y:      y,
			Radius: spec.Radius,
			Health: NewHealth(spec.Health),
			Attack: spec.Attack,
			KnockY: 1,
		},
		SpeedX:       spec.SpeedX,
		SpeedY:       spec.SpeedY,
		DriverAboard: true,
		Trips:        make([]*Trip, 0, tripHint),
	}
}

func newTraffic(id ID, kind Kind, x, y, speed int, spec VehicleSpec) *Vehicle {
	return &Vehicle{
		Actor: Actor{
			ID:     id,
			Kind:   kind,
			Caps:   CapDamageable | CapCollidable | CapMovable,
			X:      x,
			Y:      y,
			Radius: spec.Radius,
			Health: NewHealth(spec.Health),
			Attack: spec.Attack,
			KnockY: 1,
		},
		SpeedY: speed,
	}
}

// Moving 任一方向在移动
func (v *Vehicle) Moving() bool { return v.MovingX || v.MovingY }

// Earnings 历史行程车费之和
func (v *Vehicle) Earnings() float64 {
	var total float64
	for _, t := range v.Trips {
		total += t.Fee
	}
	return total
}

// LastTrip 进行中的行程，没有则返回最近完成的行程
func (v *Vehicle) LastTrip() *Trip {
	if v.Trip != nil {
		return v.Trip
	}
	if n := len(v.Trips); n > 0 {
		return v.Trips[n-1]
	}
	return nil
}

// Fireballs 在途火球
func (v *Vehicle) Fireballs() []*Projectile { return v.fireballs }

// steer 司机在车上时左右键横向移动
func (v *Vehicle) steer(in Input) {
	v.MovingX = false
	if !v.DriverAboard {
		return
	}
	switch {
	case in.IsDown(KeyLeft):
		v.X -= v.SpeedX
		v.MovingX = true
	case in.IsDown(KeyRight):
		v.X += v.SpeedX
		v.MovingX = true
	}
}

// respawn 在随机车道与位置重生，生命回满，车上无人
func (v *Vehicle) respawn(x, y int) {
	v.X, v.Y = x, y
	v.Health.Restore()
	v.Destroyed = false
	v.Collided = false
	v.Cooldown = 0
	v.CrashDir = 0
	v.DriverAboard = false
	v.MovingX, v.MovingY = false, false
	v.wreckPlaced = false
	v.wreck = nil
}

// prunable 车辆离开可玩区域，或摧毁后冷却与残骸火焰都已结束
func (v *Vehicle) prunable(height, margin int) bool {
	if v.Y < -margin || v.Y > height+margin {
		return true
	}
	return v.Destroyed && v.Cooldown == 0 && v.wreck.Expired()
}
