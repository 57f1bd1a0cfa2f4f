package sim

import "math"

const (
	CrashUp   = -1
	CrashDown = 1
)

// distance 两点欧氏距离
func distance(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Hypot(dx, dy)
}

// Overlaps 圆形重叠检测：距离不大于两半径之和即视为碰撞（对称、无副作用）
func Overlaps(a, b *Actor) bool {
	return distance(a.X, a.Y, b.X, b.Y) <= a.Radius+b.Radius
}

// CrashDirections 返回 a、b 的碰撞方向：y 较大者（屏幕更靠下）为 Up，另一方为 Down；
// y 相等时 a 为 Down、b 为 Up
func CrashDirections(a, b *Actor) (int, int) {
	if a.Y > b.Y {
		return CrashUp, CrashDown
	}
	return CrashDown, CrashUp
}
