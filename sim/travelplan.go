package sim

// TravelPlan 乘客的目的地与计费参数
type TravelPlan struct {
	EndX      int
	DistanceY int
	EndY      int // 上车时确定：上车位置 y − DistanceY
	Priority  int // 1..5，金币效果可降低，最低 1

	// CoinApplied 本行程已经用过金币
	CoinApplied bool

	resolved bool
}

func NewTravelPlan(endX, distanceY, priority int) *TravelPlan {
	if priority < 1 {
		priority = 1
	}
	return &TravelPlan{EndX: endX, DistanceY: distanceY, Priority: priority}
}

// Resolve 以上车时的 y 确定终点 y
func (tp *TravelPlan) Resolve(startY int) {
	tp.EndY = startY - tp.DistanceY
	tp.resolved = true
}

func (tp *TravelPlan) Resolved() bool { return tp.resolved }

// LowerPriority 优先级降一档，不低于 1
func (tp *TravelPlan) LowerPriority() {
	if tp.Priority > 1 {
		tp.Priority--
	}
}

// ExpectedFee 按当前优先级计算的预期车费
func (tp *TravelPlan) ExpectedFee(r FareRates) float64 {
	return r.PerY*float64(tp.DistanceY) + r.PriorityRate(tp.Priority)
}
