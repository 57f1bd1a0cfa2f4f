package sim

// VehicleSpec 车辆参数
type VehicleSpec struct {
	SpeedX int
	SpeedY int
	Radius float64
	Health float64
	Attack float64
}

// PersonSpec 司机/乘客参数
type PersonSpec struct {
	Radius     float64
	Health     float64
	Attack     float64
	WalkSpeedX int
	WalkSpeedY int
}

// PickupSpec 道具参数
type PickupSpec struct {
	Radius    float64
	MaxFrames int
}

// FareRates 车费费率
type FareRates struct {
	PerY        float64
	Priority    map[int]float64 // 优先级 1..5 的附加费
	PenaltyPerY float64
}

// PriorityRate 优先级附加费，未配置的档位为 0
func (r FareRates) PriorityRate(priority int) float64 {
	return r.Priority[priority]
}

// Config 一局游戏的只读参数，构造 World 后不再修改
type Config struct {
	WindowWidth  int
	WindowHeight int

	Taxi      VehicleSpec
	Car       VehicleSpec
	EnemyCar  VehicleSpec
	Driver    PersonSpec
	Passenger PersonSpec

	CarSpeedMin int
	CarSpeedMax int
	LaneCenters []int // 车流生成车道
	CarSpawnY   []int // 车流生成的 y（屏幕上方或下方）

	RespawnLanes []int // 出租车重生的 x
	RespawnMinY  int
	RespawnMaxY  int
	RespawnDelay int // 出租车摧毁后重生前的帧数

	DriverGetInRadius      float64
	DriverEjectX           int
	PassengerEjectX        int
	PassengerFollowOffsetX int
	TaxiDetectRadius       float64

	FireballRadius float64
	FireballAttack float64
	FireballSpeedY int

	Coin            PickupSpec
	InvinciblePower PickupSpec
	FlagRadius      float64

	FireTTL  int
	SmokeTTL int
	BloodTTL int

	Damage DamageRules
	Fare   FareRates

	CarSpawnProbability      float64
	EnemySpawnProbability    float64
	FireballSpawnProbability float64

	MaxFrames     int
	Target        float64
	DespawnMargin int
}

// DefaultConfig 与默认配置文件一致的参数
func DefaultConfig() Config {
	return Config{
		WindowWidth:  1024,
		WindowHeight: 768,

		Taxi:      VehicleSpec{SpeedX: 1, SpeedY: 5, Radius: 30, Health: 1, Attack: 1},
		Car:       VehicleSpec{Radius: 40, Health: 0.5, Attack: 0.5},
		EnemyCar:  VehicleSpec{Radius: 40, Health: 1, Attack: 1},
		Driver:    PersonSpec{Radius: 20, Health: 1, WalkSpeedX: 1, WalkSpeedY: 1},
		Passenger: PersonSpec{Radius: 20, Health: 1, WalkSpeedX: 1, WalkSpeedY: 1},

		CarSpeedMin: 2,
		CarSpeedMax: 5,
		LaneCenters: []int{360, 480, 620},
		CarSpawnY:   []int{-50, 768},

		RespawnLanes: []int{360, 620},
		RespawnMinY:  200,
		RespawnMaxY:  400,
		RespawnDelay: 200,

		DriverGetInRadius:      10,
		DriverEjectX:           50,
		PassengerEjectX:        100,
		PassengerFollowOffsetX: 50,
		TaxiDetectRadius:       100,

		FireballRadius: 20,
		FireballAttack: 0.5,
		FireballSpeedY: 10,

		Coin:            PickupSpec{Radius: 20, MaxFrames: 500},
		InvinciblePower: PickupSpec{Radius: 30, MaxFrames: 1000},
		FlagRadius:      80,

		FireTTL:  20,
		SmokeTTL: 20,
		BloodTTL: 20,

		Damage: DamageRules{CooldownWindow: 200, KnockbackFrames: 10},
		Fare: FareRates{
			PerY:        0.1,
			Priority:    map[int]float64{1: 30, 2: 20, 3: 10, 4: 5, 5: 2},
			PenaltyPerY: 0.05,
		},

		CarSpawnProbability:      1.0 / 200,
		EnemySpawnProbability:    1.0 / 400,
		FireballSpawnProbability: 1.0 / 400,

		MaxFrames:     5000,
		Target:        500,
		DespawnMargin: 300,
	}
}
