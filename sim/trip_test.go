package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fareRates() FareRates {
	return FareRates{
		PerY:        0.1,
		Priority:    map[int]float64{1: 30, 2: 20, 3: 10, 4: 5, 5: 2},
		PenaltyPerY: 0.2,
	}
}

func testTrip(passengerY, flagY int, priority int) *Trip {
	plan := NewTravelPlan(0, 100, priority)
	p := newPassenger(1, 0, passengerY, plan, PersonSpec{Radius: 20, Health: 1}, 100)
	v := newTaxi(2, 0, passengerY, VehicleSpec{Radius: 30, Health: 1}, 1)
	return &Trip{Passenger: p, Vehicle: v, Flag: Flag{X: 0, Y: flagY, Radius: 10}}
}

func TestExpectedFee(t *testing.T) {
	plan := NewTravelPlan(0, 100, 3)
	assert.InDelta(t, 20.0, plan.ExpectedFee(fareRates()), 1e-9)
}

func TestTripFee(t *testing.T) {
	tests := []struct {
		name      string
		passenger int
		flag      int
		fee       float64
		penalty   float64
	}{
		{"on flag", 100, 100, 20, 0},
		{"inside radius", 105, 100, 20, 0},
		{"overshoot 50", 50, 100, 10, 10},
		{"overshoot 300 clamps to zero", -200, 100, 0, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testTrip(tt.passenger, tt.flag, 3)
			require.True(t, tr.HasReachedEnd())
			tr.complete(fareRates(), 10)
			assert.True(t, tr.Completed)
			assert.InDelta(t, tt.fee, tr.Fee, 1e-9)
			assert.InDelta(t, tt.penalty, tr.Penalty, 1e-9)
			assert.GreaterOrEqual(t, tr.Fee, 0.0)
		})
	}
}

func TestTripNotReachedWhileMoving(t *testing.T) {
	tr := testTrip(100, 100, 3)
	tr.Vehicle.MovingY = true
	assert.False(t, tr.HasReachedEnd())

	tr.Vehicle.MovingY = false
	tr.Vehicle.MovingX = true
	assert.False(t, tr.HasReachedEnd())
}

func TestTripNotReachedBeforeFlag(t *testing.T) {
	// 乘客还在终点下方且不在半径内
	tr := testTrip(300, 100, 3)
	assert.False(t, tr.HasReachedEnd())
}

func TestCoinLowersPriorityOncePerTrip(t *testing.T) {
	coin := newPickup(9, KindCoin, 0, 0, PickupSpec{Radius: 20, MaxFrames: 500})
	coin.Collected = true
	coin.FramesActive = 1

	var h holder
	h.collect(coin)
	tr := testTrip(100, 0, 3)

	for i := 0; i < 50; i++ {
		h.applyCoin(tr)
		coin.FramesActive++
	}
	assert.Equal(t, 2, tr.Passenger.Plan.Priority)
	assert.True(t, tr.Passenger.Plan.CoinApplied)

	// 新行程可以再次生效
	next := testTrip(100, 0, 3)
	assert.True(t, h.applyCoin(next))
	assert.Equal(t, 2, next.Passenger.Plan.Priority)
}

func TestCoinPriorityFloor(t *testing.T) {
	coin := newPickup(9, KindCoin, 0, 0, PickupSpec{Radius: 20, MaxFrames: 500})
	coin.Collected = true
	coin.FramesActive = 1

	var h holder
	h.collect(coin)
	tr := testTrip(100, 0, 1)
	h.applyCoin(tr)
	assert.Equal(t, 1, tr.Passenger.Plan.Priority)
}

func TestCoinInactiveOutsideWindow(t *testing.T) {
	coin := newPickup(9, KindCoin, 0, 0, PickupSpec{Radius: 20, MaxFrames: 5})
	var h holder
	h.collect(coin)
	tr := testTrip(100, 0, 4)

	coin.Collected = true
	assert.False(t, h.applyCoin(tr), "frames active is still zero")

	coin.FramesActive = 6
	assert.False(t, h.applyCoin(tr), "window elapsed")
	assert.Equal(t, 4, tr.Passenger.Plan.Priority)

	coin.FramesActive = 5
	assert.True(t, h.applyCoin(tr))
	assert.Equal(t, 3, tr.Passenger.Plan.Priority)
}

func TestTravelPlanResolve(t *testing.T) {
	plan := NewTravelPlan(400, 250, 0)
	assert.Equal(t, 1, plan.Priority)
	assert.False(t, plan.Resolved())
	plan.Resolve(600)
	assert.True(t, plan.Resolved())
	assert.Equal(t, 350, plan.EndY)
}
