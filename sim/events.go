package sim

type EventType int

const (
	EventTripStarted EventType = iota
	EventTripCompleted
	EventActorDamaged
	EventActorDestroyed
	EventTaxiRespawned
	EventPickupCollected
	EventRoundFinished
)

// Event 模拟过程中的事件，Value 按事件类型携带车费、伤害值等
type Event struct {
	Type  EventType
	Frame int
	Actor ID
	Kind  Kind
	X, Y  int
	Value float64
}

type EventHandler func(Event)

// EventBus 同步事件总线，在 Tick 所在协程内回调
type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[EventType][]EventHandler)}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

func (eb *EventBus) Emit(e Event) {
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
}
