package sim

// DamageRules 伤害结算参数
type DamageRules struct {
	CooldownWindow  int // 受伤后的无敌/击退窗口（帧）
	KnockbackFrames int // 窗口开始后的击退帧数
}

// Hit 单方的结算结果
type Hit struct {
	Damaged   bool // 本帧扣了血（冷却已重置）
	Destroyed bool // 本帧被摧毁
	Amount    float64
}

// Resolve 在 a、b 重叠时结算一次碰撞，未重叠返回 ok=false。
// 双方每个重叠帧都会被标记 Collided 并拿到相反方向（无敌也一样）；
// 只有自身冷却为 0 且不处于无敌的一方才会受到对方的攻击力伤害。
func Resolve(a, b *Actor, rules DamageRules) (ha, hb Hit, ok bool) {
	if a == b || a.ID == b.ID {
		return Hit{}, Hit{}, false
	}
	if !Overlaps(a, b) {
		return Hit{}, Hit{}, false
	}
	a.Collided = true
	b.Collided = true
	a.CrashDir, b.CrashDir = CrashDirections(a, b)

	ha = receive(a, b.Attack, rules)
	hb = receive(b, a.Attack, rules)
	return ha, hb, true
}

// receive 冷却与无敌门控后的受伤
func receive(a *Actor, amount float64, rules DamageRules) Hit {
	if !a.Caps.Has(CapDamageable) || a.Destroyed {
		return Hit{}
	}
	if a.Cooldown > 0 || a.Invincible {
		return Hit{}
	}
	a.Health.Damage(amount)
	a.Cooldown = rules.CooldownWindow
	h := Hit{Damaged: true, Amount: amount}
	if a.Health.IsDead() {
		a.Destroyed = true
		h.Destroyed = true
	}
	return h
}
