package sim

// EffectKind 伤害特效种类
type EffectKind uint8

const (
	EffectFire EffectKind = iota + 1
	EffectSmoke
	EffectBlood
)

func (k EffectKind) String() string {
	switch k {
	case EffectFire:
		return "fire"
	case EffectSmoke:
		return "smoke"
	case EffectBlood:
		return "blood"
	default:
		return "unknown"
	}
}

// Effect 固定在路面上的短时特效，不参与碰撞
type Effect struct {
	Kind EffectKind
	X, Y int
	TTL  int
}

func (e *Effect) Expired() bool { return e == nil || e.TTL <= 0 }

func (e *Effect) advance(scroll int) {
	e.Y += scroll
	if e.TTL > 0 {
		e.TTL--
	}
}

// Wreck 出租车被摧毁后留在原地的残骸
type Wreck struct {
	X, Y int
}
