// Package sim 是出租车游戏的逐帧模拟核心：推进所有角色、结算碰撞与伤害、计算行程车费。
// 整个包单线程运行，World.Tick 每调用一次推进一帧。
package sim

// ID 角色的稳定身份句柄，单调分配，不随切片下标或位置变化
type ID uint64

// Kind 角色种类，决定每帧的更新策略
type Kind uint8

const (
	KindTaxi Kind = iota + 1
	KindCar
	KindEnemyCar
	KindDriver
	KindPassenger
	KindFireball
	KindCoin
	KindInvinciblePower
)

func (k Kind) String() string {
	switch k {
	case KindTaxi:
		return "taxi"
	case KindCar:
		return "car"
	case KindEnemyCar:
		return "enemy_car"
	case KindDriver:
		return "driver"
	case KindPassenger:
		return "passenger"
	case KindFireball:
		return "fireball"
	case KindCoin:
		return "coin"
	case KindInvinciblePower:
		return "invincible_power"
	default:
		return "unknown"
	}
}

// IsVehicle 出租车、普通车与敌方车辆
func (k Kind) IsVehicle() bool {
	return k == KindTaxi || k == KindCar || k == KindEnemyCar
}

// IsPerson 司机与乘客（受伤留下血迹）
func (k Kind) IsPerson() bool {
	return k == KindDriver || k == KindPassenger
}

// Capability 能力位集合，替代继承层级
type Capability uint8

const (
	CapDamageable Capability = 1 << iota
	CapCollidable
	CapMovable
	CapTransient
)

// Has 是否具备全部给定能力
func (c Capability) Has(f Capability) bool { return c&f == f }

// Health 生命值（Current 降到 0 即摧毁）
type Health struct {
	Current float64
	Max     float64
}

func NewHealth(max float64) Health {
	return Health{Current: max, Max: max}
}

// Damage 扣血，不会低于 0
func (h *Health) Damage(amount float64) {
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
}

// Restore 回满
func (h *Health) Restore() { h.Current = h.Max }

func (h *Health) IsDead() bool { return h.Current <= 0 }

// Actor 所有参与碰撞的物体的统一表示
type Actor struct {
	ID     ID
	Kind   Kind
	Caps   Capability
	X, Y   int
	Radius float64
	Health Health
	Attack float64 // 接触时对对方造成的伤害

	Destroyed bool

	// 碰撞状态：Cooldown 一旦设置只会单调减到 0，期间不再受伤
	Collided   bool
	CrashDir   int
	Cooldown   int
	Invincible bool

	// 击退步长（车辆只沿 y 方向 1 像素，行人 x/y 各 2 像素）
	KnockX, KnockY int
}

// tickCooldown 每帧推进冷却计数；冷却开始后的前 knockFrames 帧沿碰撞方向击退。
// 返回值表示本帧冷却刚好结束。
func (a *Actor) tickCooldown(window, knockFrames int) bool {
	if !a.Collided {
		return false
	}
	if a.Cooldown > 0 {
		a.Cooldown--
		if a.Cooldown >= window-knockFrames && a.Cooldown > 0 {
			a.X += a.CrashDir * a.KnockX
			a.Y += a.CrashDir * a.KnockY
		}
	}
	if a.Cooldown == 0 {
		a.Collided = false
		return true
	}
	return false
}

// Pos 当前坐标
func (a *Actor) Pos() (int, int) { return a.X, a.Y }

func (a *Actor) actor() *Actor { return a }

// body 能参与碰撞结算的对象（车辆、司机、乘客、火球）
type body interface {
	actor() *Actor
}
