package sim

// ActorState 广播用的角色状态
type ActorState struct {
	ID         ID      `json:"id"`
	Kind       string  `json:"kind"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Radius     float64 `json:"r"`
	Health     float64 `json:"hp,omitempty"`
	Destroyed  bool    `json:"destroyed,omitempty"`
	Invincible bool    `json:"invincible,omitempty"`
}

type TripState struct {
	Passenger   ID      `json:"passenger"`
	FlagX       int     `json:"flagX"`
	FlagY       int     `json:"flagY"`
	Priority    int     `json:"priority"`
	ExpectedFee float64 `json:"expectedFee"`
	Completed   bool    `json:"completed"`
	Fee         float64 `json:"fee"`
	Penalty     float64 `json:"penalty"`
}

type EffectState struct {
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	TTL  int    `json:"ttl"`
}

// Snapshot 一帧的只读视图，序列化为 JSON 发送给客户端
type Snapshot struct {
	Frame       int           `json:"frame"`
	FramesLeft  int           `json:"framesLeft"` // 不限帧数时为 -1
	Weather     string        `json:"weather"`
	Background  int           `json:"bg"`
	Earnings    float64       `json:"earnings"`
	Target      float64       `json:"target"`
	Outcome     string        `json:"outcome"`
	Taxi        ActorState    `json:"taxi"`
	Driver      ActorState    `json:"driver"`
	Aboard      bool          `json:"aboard"`
	Passengers  []ActorState  `json:"passengers"`
	Vehicles    []ActorState  `json:"vehicles"`
	Fireballs   []ActorState  `json:"fireballs"`
	Pickups     []ActorState  `json:"pickups"`
	Effects     []EffectState `json:"effects"`
	Wrecks      []EffectState `json:"wrecks"`
	Trip        *TripState    `json:"trip,omitempty"`
	CoinFrames  int           `json:"coinFrames"`
	PowerFrames int           `json:"powerFrames"`
}

func actorState(a *Actor) ActorState {
	return ActorState{
		ID:         a.ID,
		Kind:       a.Kind.String(),
		X:          a.X,
		Y:          a.Y,
		Radius:     a.Radius,
		Health:     a.Health.Current,
		Destroyed:  a.Destroyed,
		Invincible: a.Invincible,
	}
}

// Snapshot 生成当前帧的视图
func (w *World) Snapshot() Snapshot {
	left := -1
	if w.cfg.MaxFrames > 0 {
		left = max(0, w.cfg.MaxFrames-w.frame)
	}
	s := Snapshot{
		Frame:      w.frame,
		FramesLeft: left,
		Weather:    w.weather,
		Background: w.bgOffset,
		Earnings:   w.Earnings(),
		Target:     w.cfg.Target,
		Outcome:    w.outcome.String(),
		Taxi:       actorState(&w.taxi.Actor),
		Driver:     actorState(&w.driver.Actor),
		Aboard:     w.taxi.DriverAboard,
		Passengers: make([]ActorState, 0, len(w.passengers)),
		Vehicles:   make([]ActorState, 0, len(w.vehicles)),
		Pickups:    make([]ActorState, 0, len(w.pickups)),
		Effects:    make([]EffectState, 0, len(w.effects)),
		Wrecks:     make([]EffectState, 0, len(w.wrecks)),
	}
	for _, p := range w.passengers {
		s.Passengers = append(s.Passengers, actorState(&p.Actor))
	}
	for _, v := range w.vehicles {
		s.Vehicles = append(s.Vehicles, actorState(&v.Actor))
		for _, fb := range v.fireballs {
			s.Fireballs = append(s.Fireballs, actorState(&fb.Actor))
		}
	}
	for _, p := range w.pickups {
		if !p.Collected {
			s.Pickups = append(s.Pickups, actorState(&p.Actor))
		}
	}
	for _, e := range w.effects {
		s.Effects = append(s.Effects, EffectState{Kind: e.Kind.String(), X: e.X, Y: e.Y, TTL: e.TTL})
	}
	for _, wr := range w.wrecks {
		s.Wrecks = append(s.Wrecks, EffectState{Kind: "wreck", X: wr.X, Y: wr.Y})
	}
	if tr := w.taxi.LastTrip(); tr != nil {
		plan := tr.Passenger.Plan
		s.Trip = &TripState{
			Passenger:   tr.Passenger.ID,
			FlagX:       tr.Flag.X,
			FlagY:       tr.Flag.Y,
			Priority:    plan.Priority,
			ExpectedFee: plan.ExpectedFee(w.cfg.Fare),
			Completed:   tr.Completed,
			Fee:         tr.Fee,
			Penalty:     tr.Penalty,
		}
	}
	s.CoinFrames = max(w.taxi.Coin.Remaining(), w.driver.Coin.Remaining())
	s.PowerFrames = max(w.taxi.Power.Remaining(), w.driver.Power.Remaining())
	return s
}
