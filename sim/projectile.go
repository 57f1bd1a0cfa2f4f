package sim

// Projectile 敌方车辆发射的火球，向上飞行，命中或飞出屏幕即移除
type Projectile struct {
	Actor
	Shooter ID
	SpeedY  int
	Hit     bool
}

func newFireball(id ID, shooter *Vehicle, radius, attack float64, speedY int) *Projectile {
	return &Projectile{
		Actor: Actor{
			ID:     id,
			Kind:   KindFireball,
			Caps:   CapCollidable | CapMovable | CapTransient,
			X:      shooter.X,
			Y:      shooter.Y,
			Radius: radius,
			Attack: attack,
		},
		Shooter: shooter.ID,
		SpeedY:  speedY,
	}
}

func (p *Projectile) advance() { p.Y -= p.SpeedY }

// offScreen 完全越过屏幕上沿
func (p *Projectile) offScreen() bool {
	return float64(p.Y)+p.Radius < 0
}
