package sim

import (
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"
)

// ErrNoTaxi 关卡没有放置出租车
var ErrNoTaxi = errors.New("sim: level has no taxi placement")

// Outcome 一局的结果，只会锁定一次
type Outcome uint8

const (
	OutcomeRunning Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "running"
	}
}

// ScoreRecorder 成绩落盘，结束时恰好调用一次
type ScoreRecorder interface {
	Record(name string, earnings float64) error
}

// Options 注入的协作者，均可为空
type Options struct {
	Log        *zap.SugaredLogger
	Rand       Rand
	Recorder   ScoreRecorder
	Bus        *EventBus
	PlayerName string
}

// World 一局游戏的全部状态
type World struct {
	cfg        Config
	log        *zap.SugaredLogger
	rng        Rand
	recorder   ScoreRecorder
	bus        *EventBus
	playerName string

	nextID ID
	frame  int

	weatherSpans []WeatherSpan
	weather      string
	scrolling    bool
	bgOffset     int

	taxi       *Vehicle
	driver     *Driver
	passengers []*Passenger
	vehicles   []*Vehicle // 普通车与敌方车辆
	pickups    []*Pickup
	effects    []*Effect
	wrecks     []*Wreck

	outcome Outcome
}

// NewWorld 按关卡放置记录构造世界
func NewWorld(cfg Config, placements []Placement, weather []WeatherSpan, opts Options) (*World, error) {
	w := &World{
		cfg:          cfg,
		log:          opts.Log,
		rng:          opts.Rand,
		recorder:     opts.Recorder,
		bus:          opts.Bus,
		playerName:   opts.PlayerName,
		weatherSpans: weather,
		weather:      DefaultWeather,
	}
	if w.log == nil {
		w.log = zap.NewNop().Sugar()
	}
	if w.rng == nil {
		seed := uint64(time.Now().UnixNano())
		w.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if w.bus == nil {
		w.bus = NewEventBus()
	}

	passengerCount := 0
	for _, pl := range placements {
		if pl.Kind == PlacePassenger {
			passengerCount++
		}
	}

	for _, pl := range placements {
		switch pl.Kind {
		case PlaceTaxi:
			w.taxi = newTaxi(w.allocID(), pl.X, pl.Y, cfg.Taxi, passengerCount)
			w.driver = newDriver(w.allocID(), pl.X, pl.Y, cfg.Driver, cfg.DriverGetInRadius)
		case PlacePassenger:
			plan := NewTravelPlan(pl.EndX, pl.DistanceY, pl.Priority)
			w.passengers = append(w.passengers,
				newPassenger(w.allocID(), pl.X, pl.Y, plan, cfg.Passenger, cfg.TaxiDetectRadius))
		case PlaceCoin:
			w.pickups = append(w.pickups, newPickup(w.allocID(), KindCoin, pl.X, pl.Y, cfg.Coin))
		case PlaceInvinciblePower:
			w.pickups = append(w.pickups, newPickup(w.allocID(), KindInvinciblePower, pl.X, pl.Y, cfg.InvinciblePower))
		}
	}
	if w.taxi == nil {
		return nil, ErrNoTaxi
	}

	w.log.Infow("world created",
		"player", w.playerName,
		"passengers", len(w.passengers),
		"pickups", len(w.pickups),
		"target", cfg.Target,
		"maxFrames", cfg.MaxFrames,
	)
	return w, nil
}

func (w *World) allocID() ID {
	w.nextID++
	return w.nextID
}

// Tick 推进一帧，返回本局是否已结束；结束后不再推进
func (w *World) Tick(in Input) bool {
	if w.outcome != OutcomeRunning {
		return true
	}
	w.frame++

	// 1. 环境：天气与道路滚动
	w.updateEnvironment(in)

	// 2-3. 乘客：先更新等待/已下车的，再更新行程中的
	active := w.tripPassenger()
	for _, p := range w.passengers {
		if p == active {
			continue
		}
		w.updatePassenger(p)
	}
	if active != nil {
		w.updateTripPassenger(active)
	}

	// 4. 出租车
	w.updateTaxi(in)

	// 5. 司机
	w.updateDriver(in)

	// 6. 车流生成
	w.spawnTraffic()

	// 7. 车流移动、碰撞与火球
	w.updateVehicles()

	// 8. 道具
	w.updatePickups()

	// 9. 结束判定
	return w.checkEnd()
}

func (w *World) scroll() int {
	if w.scrolling {
		return w.cfg.Taxi.SpeedY
	}
	return 0
}

func (w *World) updateEnvironment(in Input) {
	w.weather = WeatherAt(w.weatherSpans, w.frame)
	if in.WasPressed(KeyUp) {
		w.scrolling = true
	} else if in.WasReleased(KeyUp) {
		w.scrolling = false
	}
	if w.scrolling && w.cfg.WindowHeight > 0 {
		w.bgOffset = (w.bgOffset + w.scroll()) % w.cfg.WindowHeight
	}
}

// tripPassenger 出租车当前行程的乘客
func (w *World) tripPassenger() *Passenger {
	if w.taxi.Trip == nil {
		return nil
	}
	return w.taxi.Trip.Passenger
}

func (w *World) updatePassenger(p *Passenger) {
	p.tickCooldown(w.cfg.Damage.CooldownWindow, w.cfg.Damage.KnockbackFrames)
	p.Y += w.scroll()
	if p.Destroyed {
		return
	}

	switch {
	case p.trip == nil:
		if !p.canBoard(w.taxi) {
			p.Boarding = false
			return
		}
		p.Boarding = true
		if p.walkToward(w.taxi.X, w.taxi.Y) {
			w.startTrip(p)
		}
	case p.trip.Completed && !p.ReachedFlag:
		if p.walkToward(p.trip.Flag.X, p.trip.Flag.Y) {
			p.ReachedFlag = true
		}
	}
}

func (w *World) startTrip(p *Passenger) {
	p.Plan.Resolve(p.Y)
	t := newTrip(p, w.taxi, w.cfg.FlagRadius, w.frame)
	p.trip = t
	p.InTaxi = true
	p.Boarding = false
	w.taxi.Trip = t

	w.log.Infow("trip started",
		"frame", w.frame,
		"passenger", p.ID,
		"priority", p.Plan.Priority,
		"flagX", t.Flag.X,
		"flagY", t.Flag.Y,
	)
	w.bus.Emit(Event{Type: EventTripStarted, Frame: w.frame, Actor: p.ID, Kind: KindPassenger, X: p.X, Y: p.Y,
		Value: p.Plan.ExpectedFee(w.cfg.Fare)})
}

// updateTripPassenger 行程中的乘客跟随出租车，司机下车后跟随司机
func (w *World) updateTripPassenger(p *Passenger) {
	p.tickCooldown(w.cfg.Damage.CooldownWindow, w.cfg.Damage.KnockbackFrames)
	if w.taxi.DriverAboard && !w.taxi.Destroyed {
		p.follow(w.taxi.X, w.taxi.Y)
		return
	}
	p.follow(w.driver.X-w.cfg.PassengerFollowOffsetX, w.driver.Y)
}

func (w *World) updateTaxi(in Input) {
	t := w.taxi
	if t.Destroyed {
		w.updateDestroyedTaxi()
	} else {
		if t.DriverAboard {
			w.driver.X, w.driver.Y = t.X, t.Y
		}
		if t.applyCoin(t.Trip) {
			w.log.Debugw("coin applied", "frame", w.frame, "holder", "taxi", "priority", t.Trip.Passenger.Plan.Priority)
		}
		t.Invincible = t.invincible()
		t.tickCooldown(w.cfg.Damage.CooldownWindow, w.cfg.Damage.KnockbackFrames)

		t.MovingY = w.scrolling
		t.steer(in)
		if !t.DriverAboard && w.scrolling {
			t.Y += t.SpeedY
			if t.Y >= w.cfg.WindowHeight {
				t.OffScreen = true
			}
		}
	}

	// 出租车被摧毁后乘客步行到达终点同样算完成
	if t.Trip != nil && t.Trip.HasReachedEnd() {
		w.completeTrip(t.Trip)
	}

	w.advanceFlags()
	w.advanceEffects()
}

// updateDestroyedTaxi 摧毁后的下一帧留下残骸，延迟若干帧后重生
func (w *World) updateDestroyedTaxi() {
	t := w.taxi
	if !t.wreckPlaced {
		w.wrecks = append(w.wrecks, &Wreck{X: t.X, Y: t.Y})
		t.wreckPlaced = true
		t.respawnIn = w.cfg.RespawnDelay
	} else {
		t.respawnIn--
	}
	if t.respawnIn > 0 {
		return
	}
	x, y := w.respawnPosition()
	t.respawn(x, y)
	w.log.Infow("taxi respawned", "frame", w.frame, "x", x, "y", y)
	w.bus.Emit(Event{Type: EventTaxiRespawned, Frame: w.frame, Actor: t.ID, Kind: KindTaxi, X: x, Y: y})
}

func (w *World) completeTrip(tr *Trip) {
	tr.complete(w.cfg.Fare, w.frame)
	tr.Passenger.InTaxi = false
	w.taxi.Trip = nil
	w.taxi.Trips = append(w.taxi.Trips, tr)

	w.log.Infow("trip completed",
		"frame", w.frame,
		"passenger", tr.Passenger.ID,
		"fee", tr.Fee,
		"penalty", tr.Penalty,
		"earnings", w.taxi.Earnings(),
	)
	w.bus.Emit(Event{Type: EventTripCompleted, Frame: w.frame, Actor: tr.Passenger.ID, Kind: KindPassenger,
		X: tr.Passenger.X, Y: tr.Passenger.Y, Value: tr.Fee})
}

// advanceFlags 终点标记随道路滚动
func (w *World) advanceFlags() {
	s := w.scroll()
	if s == 0 {
		return
	}
	if tr := w.taxi.Trip; tr != nil {
		tr.Flag.Y += s
	}
	for _, tr := range w.taxi.Trips {
		tr.Flag.Y += s
	}
}

func (w *World) advanceEffects() {
	s := w.scroll()
	for i := len(w.effects) - 1; i >= 0; i-- {
		e := w.effects[i]
		e.advance(s)
		if e.Expired() {
			w.effects = slices.Delete(w.effects, i, i+1)
		}
	}
	for i := len(w.wrecks) - 1; i >= 0; i-- {
		wr := w.wrecks[i]
		wr.Y += s
		if wr.Y > w.cfg.WindowHeight+w.cfg.DespawnMargin {
			w.wrecks = slices.Delete(w.wrecks, i, i+1)
		}
	}
}

func (w *World) addEffect(kind EffectKind, x, y, ttl int) *Effect {
	e := &Effect{Kind: kind, X: x, Y: y, TTL: ttl}
	w.effects = append(w.effects, e)
	return e
}

func (w *World) updateDriver(in Input) {
	d, t := w.driver, w.taxi
	if d.Destroyed {
		return
	}
	d.tickCooldown(w.cfg.Damage.CooldownWindow, w.cfg.Damage.KnockbackFrames)

	if t.DriverAboard {
		d.X, d.Y = t.X, t.Y
		d.Invincible = d.invincible()
		return
	}

	d.walk(in)
	d.Invincible = d.invincible()
	if d.applyCoin(t.Trip) {
		w.log.Debugw("coin applied", "frame", w.frame, "holder", "driver", "priority", t.Trip.Passenger.Plan.Priority)
	}
	if d.canBoard(t) {
		t.DriverAboard = true
		d.X, d.Y = t.X, t.Y
		w.log.Debugw("driver boarded", "frame", w.frame, "x", t.X, "y", t.Y)
	}
}

func (w *World) updateVehicles() {
	for _, v := range w.vehicles {
		w.updateRoadVehicle(v)
	}
	for i := len(w.vehicles) - 1; i >= 0; i-- {
		v := w.vehicles[i]
		if v.prunable(w.cfg.WindowHeight, w.cfg.DespawnMargin) {
			w.vehicles = slices.Delete(w.vehicles, i, i+1)
			w.log.Debugw("vehicle removed", "frame", w.frame, "id", v.ID, "kind", v.Kind, "destroyed", v.Destroyed)
		}
	}
}

// updateRoadVehicle 碰撞期间停止自身移动，冷却结束时重新随机速度
func (w *World) updateRoadVehicle(v *Vehicle) {
	if v.tickCooldown(w.cfg.Damage.CooldownWindow, w.cfg.Damage.KnockbackFrames) && !v.Destroyed {
		v.SpeedY = w.rollSpeed()
	}
	v.Y += w.scroll()
	if !v.Collided && !v.Destroyed {
		v.Y -= v.SpeedY
	}

	if !v.Destroyed {
		w.collideVehicle(v)
		w.maybeShoot(v)
	}
	w.updateFireballs(v)
}

// collideVehicle 依次与下车的司机、行程乘客、出租车、其他车辆结算
func (w *World) collideVehicle(v *Vehicle) {
	d := w.driver
	if !w.taxi.DriverAboard && !d.Destroyed {
		w.resolve(&v.Actor, &d.Actor)
	}
	if tr := w.taxi.Trip; tr != nil && !tr.Passenger.Destroyed {
		w.resolve(&v.Actor, &tr.Passenger.Actor)
	}
	if !w.taxi.Destroyed {
		w.resolve(&v.Actor, &w.taxi.Actor)
	}
	for _, o := range w.vehicles {
		if v.Destroyed {
			return
		}
		if o.ID == v.ID || o.Destroyed {
			continue
		}
		w.resolve(&v.Actor, &o.Actor)
	}
}

func (w *World) updateFireballs(v *Vehicle) {
	for i := len(v.fireballs) - 1; i >= 0; i-- {
		fb := v.fireballs[i]
		if !fb.Hit {
			fb.advance()
			w.fireballHits(fb)
		}
		if fb.Hit || fb.offScreen() {
			v.fireballs = slices.Delete(v.fireballs, i, i+1)
		}
	}
}

// fireballHits 火球本帧与所有目标结算，命中任一目标即标记
func (w *World) fireballHits(fb *Projectile) {
	d := w.driver
	if !w.taxi.DriverAboard && !d.Destroyed && w.resolve(&fb.Actor, &d.Actor) {
		fb.Hit = true
	}
	if tr := w.taxi.Trip; tr != nil && !tr.Passenger.Destroyed && w.resolve(&fb.Actor, &tr.Passenger.Actor) {
		fb.Hit = true
	}
	if !w.taxi.Destroyed && w.resolve(&fb.Actor, &w.taxi.Actor) {
		fb.Hit = true
	}
	for _, o := range w.vehicles {
		if o.ID == fb.Shooter || o.Destroyed {
			continue
		}
		if w.resolve(&fb.Actor, &o.Actor) {
			fb.Hit = true
		}
	}
}

// resolve 结算一对重叠并处理受伤后果
func (w *World) resolve(a, b *Actor) bool {
	ha, hb, ok := Resolve(a, b, w.cfg.Damage)
	if !ok {
		return false
	}
	w.afterHit(a, ha)
	w.afterHit(b, hb)
	return true
}

func (w *World) afterHit(a *Actor, h Hit) {
	if !h.Damaged {
		return
	}
	w.bus.Emit(Event{Type: EventActorDamaged, Frame: w.frame, Actor: a.ID, Kind: a.Kind, X: a.X, Y: a.Y, Value: h.Amount})

	switch {
	case a.Kind.IsPerson():
		if h.Destroyed {
			w.addEffect(EffectBlood, a.X, a.Y, w.cfg.BloodTTL)
		}
	case a.Kind.IsVehicle():
		if h.Destroyed {
			fire := w.addEffect(EffectFire, a.X, a.Y, w.cfg.FireTTL)
			if v := w.vehicleByID(a.ID); v != nil {
				v.wreck = fire
			}
		} else if h.Amount > 0 {
			w.addEffect(EffectSmoke, a.X, a.Y, w.cfg.SmokeTTL)
		}
	}

	if !h.Destroyed {
		return
	}
	w.log.Infow("actor destroyed", "frame", w.frame, "id", a.ID, "kind", a.Kind, "x", a.X, "y", a.Y)
	w.bus.Emit(Event{Type: EventActorDestroyed, Frame: w.frame, Actor: a.ID, Kind: a.Kind, X: a.X, Y: a.Y})
	if a.Kind == KindTaxi {
		w.ejectFromTaxi()
	}
}

func (w *World) vehicleByID(id ID) *Vehicle {
	if w.taxi.ID == id {
		return w.taxi
	}
	for _, v := range w.vehicles {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// ejectFromTaxi 出租车被摧毁的同一帧弹出司机与车上的乘客
func (w *World) ejectFromTaxi() {
	t, d := w.taxi, w.driver
	t.MovingX, t.MovingY = false, false
	if !t.DriverAboard {
		return
	}
	t.DriverAboard = false
	d.X -= w.cfg.DriverEjectX
	if tr := t.Trip; tr != nil && tr.Passenger.InTaxi {
		tr.Passenger.X -= w.cfg.PassengerEjectX
	}
}

func (w *World) updatePickups() {
	s := w.scroll()
	t, d := w.taxi, w.driver
	for _, p := range w.pickups {
		p.advance(s)
		// 已被一方拾取的道具另一方仍可在之后的帧拾取
		collected := false
		if !t.Destroyed && !t.holds(p) && Overlaps(&p.Actor, &t.Actor) {
			t.collect(p)
			collected = true
		}
		if !d.Destroyed && !d.holds(p) && Overlaps(&p.Actor, &d.Actor) {
			d.collect(p)
			collected = true
		}
		if collected {
			p.Collected = true
			w.log.Debugw("pickup collected", "frame", w.frame, "kind", p.Kind, "id", p.ID)
			w.bus.Emit(Event{Type: EventPickupCollected, Frame: w.frame, Actor: p.ID, Kind: p.Kind, X: p.X, Y: p.Y})
		}
	}
	t.Invincible = t.invincible()
	d.Invincible = d.invincible()
}

func (w *World) checkEnd() bool {
	earnings := w.Earnings()
	won := earnings >= w.cfg.Target
	lost := (w.cfg.MaxFrames > 0 && w.frame >= w.cfg.MaxFrames) ||
		w.driver.Health.IsDead() ||
		w.anyPassengerDead() ||
		w.taxi.OffScreen
	if !won && !lost {
		return false
	}
	if won {
		w.outcome = OutcomeWon
	} else {
		w.outcome = OutcomeLost
	}
	w.finish(earnings)
	return true
}

func (w *World) anyPassengerDead() bool {
	for _, p := range w.passengers {
		if p.Health.IsDead() {
			return true
		}
	}
	return false
}

// finish 锁定结果并记录成绩，写入失败只记日志
func (w *World) finish(earnings float64) {
	w.log.Infow("round finished",
		"player", w.playerName,
		"outcome", w.outcome,
		"frame", w.frame,
		"earnings", earnings,
	)
	if w.recorder != nil {
		if err := w.recorder.Record(w.playerName, earnings); err != nil {
			w.log.Errorw("record score failed", "player", w.playerName, "err", err)
		}
	}
	w.bus.Emit(Event{Type: EventRoundFinished, Frame: w.frame, Value: earnings})
}

// Earnings 当前累计收入
func (w *World) Earnings() float64 { return w.taxi.Earnings() }

func (w *World) Outcome() Outcome { return w.outcome }

func (w *World) Finished() bool { return w.outcome != OutcomeRunning }

func (w *World) Frame() int { return w.frame }

func (w *World) Weather() string { return w.weather }

func (w *World) Scrolling() bool { return w.scrolling }

func (w *World) Bus() *EventBus { return w.bus }

func (w *World) Config() Config { return w.cfg }

func (w *World) Taxi() *Vehicle { return w.taxi }

func (w *World) Driver() *Driver { return w.driver }

func (w *World) Passengers() []*Passenger { return w.passengers }

func (w *World) Vehicles() []*Vehicle { return w.vehicles }

func (w *World) Pickups() []*Pickup { return w.pickups }

func (w *World) Effects() []*Effect { return w.effects }

func (w *World) Wrecks() []*Wreck { return w.wrecks }
