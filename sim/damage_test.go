package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVehicle(id ID, x, y int, radius, health, attack float64) *Actor {
	return &Actor{
		ID:     id,
		Kind:   KindCar,
		Caps:   CapDamageable | CapCollidable | CapMovable,
		X:      x,
		Y:      y,
		Radius: radius,
		Health: NewHealth(health),
		Attack: attack,
		KnockY: 1,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		ax   int
		bx   int
		want bool
	}{
		{"touching", 0, 60, true},
		{"apart", 0, 61, false},
		{"same position", 10, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testVehicle(1, tt.ax, 0, 30, 1, 1)
			b := testVehicle(2, tt.bx, 0, 30, 1, 1)
			assert.Equal(t, tt.want, Overlaps(a, b))
			assert.Equal(t, tt.want, Overlaps(b, a))
		})
	}
}

func TestCrashDirections(t *testing.T) {
	lower := testVehicle(1, 0, 100, 30, 1, 1)
	upper := testVehicle(2, 0, 80, 30, 1, 1)

	da, db := CrashDirections(lower, upper)
	assert.Equal(t, CrashUp, da)
	assert.Equal(t, CrashDown, db)

	da, db = CrashDirections(upper, lower)
	assert.Equal(t, CrashDown, da)
	assert.Equal(t, CrashUp, db)

	same := testVehicle(3, 10, 100, 30, 1, 1)
	da, db = CrashDirections(lower, same)
	assert.Equal(t, CrashDown, da)
	assert.Equal(t, CrashUp, db)
}

func TestResolveMarksBothSides(t *testing.T) {
	rules := DamageRules{CooldownWindow: 200, KnockbackFrames: 10}
	a := testVehicle(1, 0, 100, 30, 1, 0.25)
	b := testVehicle(2, 0, 90, 30, 1, 0.5)

	ha, hb, ok := Resolve(a, b, rules)
	require.True(t, ok)
	assert.True(t, a.Collided)
	assert.True(t, b.Collided)
	assert.Equal(t, -b.CrashDir, a.CrashDir)
	assert.True(t, ha.Damaged)
	assert.True(t, hb.Damaged)
	assert.InDelta(t, 0.5, a.Health.Current, 1e-9)
	assert.InDelta(t, 0.75, b.Health.Current, 1e-9)
	assert.Equal(t, 200, a.Cooldown)
	assert.Equal(t, 200, b.Cooldown)
}

func TestResolveExcludesSameIdentity(t *testing.T) {
	rules := DamageRules{CooldownWindow: 200, KnockbackFrames: 10}
	a := testVehicle(7, 0, 0, 30, 1, 1)
	twin := testVehicle(7, 0, 0, 30, 1, 1)
	_, _, ok := Resolve(a, twin, rules)
	assert.False(t, ok)
	assert.False(t, a.Collided)

	// 不同身份的两个角色即使坐标完全相同也要结算
	other := testVehicle(8, 0, 0, 30, 1, 1)
	_, _, ok = Resolve(a, other, rules)
	assert.True(t, ok)
}

func TestInvincibleReceiverStillKnockedBack(t *testing.T) {
	rules := DamageRules{CooldownWindow: 200, KnockbackFrames: 10}
	a := testVehicle(1, 0, 100, 30, 1, 1)
	b := testVehicle(2, 0, 90, 30, 1, 1)
	a.Invincible = true

	ha, hb, ok := Resolve(a, b, rules)
	require.True(t, ok)
	assert.False(t, ha.Damaged)
	assert.True(t, hb.Damaged)
	assert.Equal(t, 1.0, a.Health.Current)
	assert.Equal(t, CrashUp, a.CrashDir)
	assert.True(t, a.Collided)
	assert.Equal(t, 0, a.Cooldown)
}

func TestContinuousOverlapDamageCount(t *testing.T) {
	rules := DamageRules{CooldownWindow: 200, KnockbackFrames: 10}
	for _, frames := range []int{400, 401, 450, 600, 999} {
		a := testVehicle(1, 0, 0, 1000, 1e6, 1)
		b := testVehicle(2, 0, 5, 1000, 1e6, 1)
		hitsA, hitsB := 0, 0
		for i := 0; i < frames; i++ {
			a.tickCooldown(rules.CooldownWindow, rules.KnockbackFrames)
			b.tickCooldown(rules.CooldownWindow, rules.KnockbackFrames)
			ha, hb, ok := Resolve(a, b, rules)
			require.True(t, ok)
			if ha.Damaged {
				hitsA++
			}
			if hb.Damaged {
				hitsB++
			}
		}
		want := (frames + rules.CooldownWindow - 1) / rules.CooldownWindow
		assert.Equal(t, want, hitsA, "frames=%d", frames)
		assert.Equal(t, want, hitsB, "frames=%d", frames)
	}
}

func TestKnockbackOnlyAtWindowStart(t *testing.T) {
	rules := DamageRules{CooldownWindow: 200, KnockbackFrames: 10}
	a := testVehicle(1, 0, 100, 30, 5, 1)
	b := testVehicle(2, 0, 90, 30, 5, 1)
	_, _, ok := Resolve(a, b, rules)
	require.True(t, ok)

	startY := a.Y
	for i := 0; i < rules.CooldownWindow; i++ {
		a.tickCooldown(rules.CooldownWindow, rules.KnockbackFrames)
	}
	// 冷却从 199 递减到 190 的帧内击退，共 10 帧，每帧向上 1
	assert.Equal(t, startY-rules.KnockbackFrames, a.Y)
	assert.Equal(t, 0, a.Cooldown)
	assert.False(t, a.Collided)
}

func TestLethalHitDestroys(t *testing.T) {
	rules := DamageRules{CooldownWindow: 200, KnockbackFrames: 10}
	a := testVehicle(1, 0, 0, 30, 0.5, 1)
	b := testVehicle(2, 0, 0, 30, 1, 0.5)

	ha, _, ok := Resolve(a, b, rules)
	require.True(t, ok)
	assert.True(t, ha.Destroyed)
	assert.True(t, a.Destroyed)
	assert.Equal(t, 0.0, a.Health.Current)
}
