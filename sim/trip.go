package sim

// Flag 行程终点标记
type Flag struct {
	X, Y   int
	Radius float64
}

// Trip 乘客、车辆与终点的绑定关系
type Trip struct {
	Passenger *Passenger
	Vehicle   *Vehicle
	Flag      Flag

	StartFrame int
	EndFrame   int
	Completed  bool
	Fee        float64
	Penalty    float64
}

func newTrip(p *Passenger, v *Vehicle, flagRadius float64, frame int) *Trip {
	return &Trip{
		Passenger:  p,
		Vehicle:    v,
		Flag:       Flag{X: p.Plan.EndX, Y: p.Plan.EndY, Radius: flagRadius},
		StartFrame: frame,
	}
}

func (t *Trip) distanceToFlag() float64 {
	return distance(t.Passenger.X, t.Passenger.Y, t.Flag.X, t.Flag.Y)
}

// overshot 乘客已越过终点（y 更小）且不在终点半径内
func (t *Trip) overshot() bool {
	return t.Passenger.Y < t.Flag.Y && t.distanceToFlag() > t.Flag.Radius
}

// HasReachedEnd 车辆完全静止，且乘客在终点半径内或已越过终点
func (t *Trip) HasReachedEnd() bool {
	if t.Completed || t.Vehicle.Moving() {
		return false
	}
	return t.distanceToFlag() <= t.Flag.Radius || t.overshot()
}

// complete 结算车费：越过终点按超出距离罚款，车费不为负
func (t *Trip) complete(r FareRates, frame int) {
	expected := t.Passenger.Plan.ExpectedFee(r)
	if t.overshot() {
		t.Penalty = r.PenaltyPerY * float64(t.Flag.Y-t.Passenger.Y)
	}
	t.Fee = max(0, expected-t.Penalty)
	t.Completed = true
	t.EndFrame = frame
}
