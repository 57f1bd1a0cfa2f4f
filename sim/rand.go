package sim

// Rand 注入的随机源；*math/rand/v2.Rand 可直接满足
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// chance 一次伯努利试验
func chance(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

// rangeInt 闭区间 [lo, hi] 内的随机整数
func rangeInt(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// pick 随机取一个值，空切片返回 fallback
func pick(r Rand, vals []int, fallback int) int {
	if len(vals) == 0 {
		return fallback
	}
	return vals[r.IntN(len(vals))]
}
