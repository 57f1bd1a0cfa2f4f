package sim

// Driver 司机：在车上时与出租车同步，下车后由方向键控制步行
type Driver struct {
	Actor
	holder

	WalkSpeedX  int
	WalkSpeedY  int
	GetInRadius float64
}

func newDriver(id ID, x, y int, spec PersonSpec, getInRadius float64) *Driver {
	return &Driver{
		Actor: Actor{
			ID:     id,
			Kind:   KindDriver,
			Caps:   CapDamageable | CapCollidable | CapMovable,
			X:      x,
			Y:      y,
			Radius: spec.Radius,
			Health: NewHealth(spec.Health),
			Attack: spec.Attack,
			KnockX: 2,
			KnockY: 2,
		},
		WalkSpeedX:  spec.WalkSpeedX,
		WalkSpeedY:  spec.WalkSpeedY,
		GetInRadius: getInRadius,
	}
}

func (d *Driver) walk(in Input) {
	if in.IsDown(KeyUp) {
		d.Y -= d.WalkSpeedY
	}
	if in.IsDown(KeyDown) {
		d.Y += d.WalkSpeedY
	}
	if in.IsDown(KeyLeft) {
		d.X -= d.WalkSpeedX
	}
	if in.IsDown(KeyRight) {
		d.X += d.WalkSpeedX
	}
}

// canBoard 出租车完好且在上车半径内
func (d *Driver) canBoard(taxi *Vehicle) bool {
	if taxi == nil || taxi.Destroyed {
		return false
	}
	return distance(d.X, d.Y, taxi.X, taxi.Y) <= d.GetInRadius
}
