// Package config 读取 JSON 配置文件（viper），所有键都有默认值，环境变量 SHADOWTAXI_* 可覆盖。
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"shadowtaxi/sim"
)

// EnvPrefix 环境变量前缀，例如 SHADOWTAXI_SERVER_ADDR
const EnvPrefix = "SHADOWTAXI"

// ErrInvalid 配置值不合法
var ErrInvalid = errors.New("invalid config")

// ServerConfig HTTP/WebSocket 服务参数
type ServerConfig struct {
	Addr           string `json:"addr" mapstructure:"addr"`
	TicksPerSecond int    `json:"ticksPerSecond" mapstructure:"ticksPerSecond"`
	RoomID         string `json:"roomId" mapstructure:"roomId"`
	PlayerName     string `json:"playerName" mapstructure:"playerName"`
	SendBuffer     int    `json:"sendBuffer" mapstructure:"sendBuffer"`
	InputBuffer    int    `json:"inputBuffer" mapstructure:"inputBuffer"`

	// 每个玩家每 Tick 最多处理的按键事件数
	MaxInputsPerTick int `json:"maxInputsPerTick" mapstructure:"maxInputsPerTick"`
}

// LogConfig 滚动日志参数
type LogConfig struct {
	File       string `json:"file" mapstructure:"file"`
	Level      string `json:"level" mapstructure:"level"`
	MaxSize    int    `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
	MaxAge     int    `json:"maxAge" mapstructure:"maxAge"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// ScoreConfig 成绩存储参数
type ScoreConfig struct {
	Type       string `json:"type" mapstructure:"type"` // file 或 sqlite
	File       string `json:"file" mapstructure:"file"`
	SQLitePath string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

// LevelConfig 关卡脚本路径
type LevelConfig struct {
	ObjectsFile string `json:"objectsFile" mapstructure:"objectsFile"`
	WeatherFile string `json:"weatherFile" mapstructure:"weatherFile"`
}

func setDefaults() {
	d := sim.DefaultConfig()

	viper.SetDefault("window.width", d.WindowWidth)
	viper.SetDefault("window.height", d.WindowHeight)

	viper.SetDefault("roadLaneCenter1", d.LaneCenters[0])
	viper.SetDefault("roadLaneCenter2", d.LaneCenters[1])
	viper.SetDefault("roadLaneCenter3", d.LaneCenters[2])

	viper.SetDefault("gameObjects.taxi.speedX", d.Taxi.SpeedX)
	viper.SetDefault("gameObjects.taxi.speedY", d.Taxi.SpeedY)
	viper.SetDefault("gameObjects.taxi.radius", d.Taxi.Radius)
	viper.SetDefault("gameObjects.taxi.health", d.Taxi.Health)
	viper.SetDefault("gameObjects.taxi.damage", d.Taxi.Attack)
	viper.SetDefault("gameObjects.taxi.respawnX", d.RespawnLanes)
	viper.SetDefault("gameObjects.taxi.respawnMinY", d.RespawnMinY)
	viper.SetDefault("gameObjects.taxi.respawnMaxY", d.RespawnMaxY)
	viper.SetDefault("gameObjects.taxi.respawnDelay", d.RespawnDelay)

	viper.SetDefault("gameObjects.otherCar.radius", d.Car.Radius)
	viper.SetDefault("gameObjects.otherCar.health", d.Car.Health)
	viper.SetDefault("gameObjects.otherCar.damage", d.Car.Attack)
	viper.SetDefault("gameObjects.otherCar.minSpeedY", d.CarSpeedMin)
	viper.SetDefault("gameObjects.otherCar.maxSpeedY", d.CarSpeedMax)
	viper.SetDefault("gameObjects.otherCar.spawnY", d.CarSpawnY)

	viper.SetDefault("gameObjects.enemyCar.radius", d.EnemyCar.Radius)
	viper.SetDefault("gameObjects.enemyCar.health", d.EnemyCar.Health)
	viper.SetDefault("gameObjects.enemyCar.damage", d.EnemyCar.Attack)

	viper.SetDefault("gameObjects.fireball.radius", d.FireballRadius)
	viper.SetDefault("gameObjects.fireball.damage", d.FireballAttack)
	viper.SetDefault("gameObjects.fireball.shootSpeedY", d.FireballSpeedY)

	viper.SetDefault("gameObjects.driver.radius", d.Driver.Radius)
	viper.SetDefault("gameObjects.driver.health", d.Driver.Health)
	viper.SetDefault("gameObjects.driver.walkSpeedX", d.Driver.WalkSpeedX)
	viper.SetDefault("gameObjects.driver.walkSpeedY", d.Driver.WalkSpeedY)
	viper.SetDefault("gameObjects.driver.taxiGetInRadius", d.DriverGetInRadius)
	viper.SetDefault("gameObjects.driver.ejectX", d.DriverEjectX)

	viper.SetDefault("gameObjects.passenger.radius", d.Passenger.Radius)
	viper.SetDefault("gameObjects.passenger.health", d.Passenger.Health)
	viper.SetDefault("gameObjects.passenger.walkSpeedX", d.Passenger.WalkSpeedX)
	viper.SetDefault("gameObjects.passenger.walkSpeedY", d.Passenger.WalkSpeedY)
	viper.SetDefault("gameObjects.passenger.taxiDetectRadius", d.TaxiDetectRadius)
	viper.SetDefault("gameObjects.passenger.ejectX", d.PassengerEjectX)
	viper.SetDefault("gameObjects.passenger.followOffsetX", d.PassengerFollowOffsetX)

	viper.SetDefault("gameObjects.coin.radius", d.Coin.Radius)
	viper.SetDefault("gameObjects.coin.maxFrames", d.Coin.MaxFrames)
	viper.SetDefault("gameObjects.invinciblePower.radius", d.InvinciblePower.Radius)
	viper.SetDefault("gameObjects.invinciblePower.maxFrames", d.InvinciblePower.MaxFrames)
	viper.SetDefault("gameObjects.tripEndFlag.radius", d.FlagRadius)

	viper.SetDefault("gameObjects.fire.ttl", d.FireTTL)
	viper.SetDefault("gameObjects.smoke.ttl", d.SmokeTTL)
	viper.SetDefault("gameObjects.blood.ttl", d.BloodTTL)

	viper.SetDefault("collision.cooldownFrames", d.Damage.CooldownWindow)
	viper.SetDefault("collision.knockbackFrames", d.Damage.KnockbackFrames)

	viper.SetDefault("trip.rate.perY", d.Fare.PerY)
	for p := 1; p <= 5; p++ {
		viper.SetDefault(fmt.Sprintf("trip.rate.priority%d", p), d.Fare.Priority[p])
	}
	viper.SetDefault("trip.penalty.perY", d.Fare.PenaltyPerY)

	viper.SetDefault("spawn.car.probability", d.CarSpawnProbability)
	viper.SetDefault("spawn.enemyCar.probability", d.EnemySpawnProbability)
	viper.SetDefault("spawn.fireball.probability", d.FireballSpawnProbability)

	viper.SetDefault("gamePlay.maxFrames", d.MaxFrames)
	viper.SetDefault("gamePlay.target", d.Target)
	viper.SetDefault("gamePlay.despawnMargin", d.DespawnMargin)
	viper.SetDefault("gamePlay.objectsFile", "res/gameObjects.csv")
	viper.SetDefault("gamePlay.weatherFile", "res/gameWeather.csv")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.ticksPerSecond", 60)
	viper.SetDefault("server.roomId", "lobby")
	viper.SetDefault("server.playerName", "player")
	viper.SetDefault("server.sendBuffer", 64)
	viper.SetDefault("server.inputBuffer", 256)
	viper.SetDefault("server.maxInputsPerTick", 16)

	viper.SetDefault("log.file", "logs/shadowtaxi.log")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.maxSize", 10)
	viper.SetDefault("log.maxBackups", 3)
	viper.SetDefault("log.maxAge", 7)
	viper.SetDefault("log.compress", true)

	viper.SetDefault("score.type", "file")
	viper.SetDefault("score.file", "res/scores.csv")
	viper.SetDefault("score.sqlitePath", "res/scores.db")
}

// Load 设置默认值并读取配置文件；path 为空时只使用默认值与环境变量
func Load(path string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Game 解析模拟核心的只读参数
func Game() (sim.Config, error) {
	cfg := sim.Config{
		WindowWidth:  GetInt("window.width"),
		WindowHeight: GetInt("window.height"),

		Taxi: sim.VehicleSpec{
			SpeedX: GetInt("gameObjects.taxi.speedX"),
			SpeedY: GetInt("gameObjects.taxi.speedY"),
			Radius: GetFloat("gameObjects.taxi.radius"),
			Health: GetFloat("gameObjects.taxi.health"),
			Attack: GetFloat("gameObjects.taxi.damage"),
		},
		Car: sim.VehicleSpec{
			Radius: GetFloat("gameObjects.otherCar.radius"),
			Health: GetFloat("gameObjects.otherCar.health"),
			Attack: GetFloat("gameObjects.otherCar.damage"),
		},
		EnemyCar: sim.VehicleSpec{
			Radius: GetFloat("gameObjects.enemyCar.radius"),
			Health: GetFloat("gameObjects.enemyCar.health"),
			Attack: GetFloat("gameObjects.enemyCar.damage"),
		},
		Driver: sim.PersonSpec{
			Radius:     GetFloat("gameObjects.driver.radius"),
			Health:     GetFloat("gameObjects.driver.health"),
			WalkSpeedX: GetInt("gameObjects.driver.walkSpeedX"),
			WalkSpeedY: GetInt("gameObjects.driver.walkSpeedY"),
		},
		Passenger: sim.PersonSpec{
			Radius:     GetFloat("gameObjects.passenger.radius"),
			Health:     GetFloat("gameObjects.passenger.health"),
			WalkSpeedX: GetInt("gameObjects.passenger.walkSpeedX"),
			WalkSpeedY: GetInt("gameObjects.passenger.walkSpeedY"),
		},

		CarSpeedMin: GetInt("gameObjects.otherCar.minSpeedY"),
		CarSpeedMax: GetInt("gameObjects.otherCar.maxSpeedY"),
		LaneCenters: []int{
			GetInt("roadLaneCenter1"),
			GetInt("roadLaneCenter2"),
			GetInt("roadLaneCenter3"),
		},
		CarSpawnY: viper.GetIntSlice("gameObjects.otherCar.spawnY"),

		RespawnLanes: viper.GetIntSlice("gameObjects.taxi.respawnX"),
		RespawnMinY:  GetInt("gameObjects.taxi.respawnMinY"),
		RespawnMaxY:  GetInt("gameObjects.taxi.respawnMaxY"),
		RespawnDelay: GetInt("gameObjects.taxi.respawnDelay"),

		DriverGetInRadius:      GetFloat("gameObjects.driver.taxiGetInRadius"),
		DriverEjectX:           GetInt("gameObjects.driver.ejectX"),
		PassengerEjectX:        GetInt("gameObjects.passenger.ejectX"),
		PassengerFollowOffsetX: GetInt("gameObjects.passenger.followOffsetX"),
		TaxiDetectRadius:       GetFloat("gameObjects.passenger.taxiDetectRadius"),

		FireballRadius: GetFloat("gameObjects.fireball.radius"),
		FireballAttack: GetFloat("gameObjects.fireball.damage"),
		FireballSpeedY: GetInt("gameObjects.fireball.shootSpeedY"),

		Coin: sim.PickupSpec{
			Radius:    GetFloat("gameObjects.coin.radius"),
			MaxFrames: GetInt("gameObjects.coin.maxFrames"),
		},
		InvinciblePower: sim.PickupSpec{
			Radius:    GetFloat("gameObjects.invinciblePower.radius"),
			MaxFrames: GetInt("gameObjects.invinciblePower.maxFrames"),
		},
		FlagRadius: GetFloat("gameObjects.tripEndFlag.radius"),

		FireTTL:  GetInt("gameObjects.fire.ttl"),
		SmokeTTL: GetInt("gameObjects.smoke.ttl"),
		BloodTTL: GetInt("gameObjects.blood.ttl"),

		Damage: sim.DamageRules{
			CooldownWindow:  GetInt("collision.cooldownFrames"),
			KnockbackFrames: GetInt("collision.knockbackFrames"),
		},
		Fare: sim.FareRates{
			PerY:        GetFloat("trip.rate.perY"),
			Priority:    make(map[int]float64, 5),
			PenaltyPerY: GetFloat("trip.penalty.perY"),
		},

		CarSpawnProbability:      GetFloat("spawn.car.probability"),
		EnemySpawnProbability:    GetFloat("spawn.enemyCar.probability"),
		FireballSpawnProbability: GetFloat("spawn.fireball.probability"),

		MaxFrames:     GetInt("gamePlay.maxFrames"),
		Target:        GetFloat("gamePlay.target"),
		DespawnMargin: GetInt("gamePlay.despawnMargin"),
	}
	for p := 1; p <= 5; p++ {
		cfg.Fare.Priority[p] = GetFloat(fmt.Sprintf("trip.rate.priority%d", p))
	}

	if err := validate(cfg); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

func validate(cfg sim.Config) error {
	switch {
	case cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, cfg.WindowWidth, cfg.WindowHeight)
	case cfg.Damage.CooldownWindow <= 0:
		return fmt.Errorf("%w: collision.cooldownFrames must be positive", ErrInvalid)
	case cfg.Damage.KnockbackFrames < 0 || cfg.Damage.KnockbackFrames > cfg.Damage.CooldownWindow:
		return fmt.Errorf("%w: collision.knockbackFrames out of range", ErrInvalid)
	case cfg.CarSpeedMin > cfg.CarSpeedMax:
		return fmt.Errorf("%w: otherCar speed range %d..%d", ErrInvalid, cfg.CarSpeedMin, cfg.CarSpeedMax)
	case cfg.RespawnMinY > cfg.RespawnMaxY:
		return fmt.Errorf("%w: taxi respawn range %d..%d", ErrInvalid, cfg.RespawnMinY, cfg.RespawnMaxY)
	case len(cfg.RespawnLanes) == 0:
		return fmt.Errorf("%w: gameObjects.taxi.respawnX is empty", ErrInvalid)
	}
	for _, p := range []float64{cfg.CarSpawnProbability, cfg.EnemySpawnProbability, cfg.FireballSpawnProbability} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: spawn probability %v", ErrInvalid, p)
		}
	}
	return nil
}

// Server 服务参数
func Server() ServerConfig {
	return ServerConfig{
		Addr:           GetString("server.addr"),
		TicksPerSecond: GetInt("server.ticksPerSecond"),
		RoomID:         GetString("server.roomId"),
		PlayerName:     GetString("server.playerName"),
		SendBuffer:     GetInt("server.sendBuffer"),
		InputBuffer:    GetInt("server.inputBuffer"),

		MaxInputsPerTick: GetInt("server.maxInputsPerTick"),
	}
}

// Log 日志参数
func Log() LogConfig {
	return LogConfig{
		File:       GetString("log.file"),
		Level:      GetString("log.level"),
		MaxSize:    GetInt("log.maxSize"),
		MaxBackups: GetInt("log.maxBackups"),
		MaxAge:     GetInt("log.maxAge"),
		Compress:   GetBool("log.compress"),
	}
}

// Score 成绩存储参数
func Score() ScoreConfig {
	return ScoreConfig{
		Type:       GetString("score.type"),
		File:       GetString("score.file"),
		SQLitePath: GetString("score.sqlitePath"),
	}
}

// Level 关卡脚本路径
func Level() LevelConfig {
	return LevelConfig{
		ObjectsFile: GetString("gamePlay.objectsFile"),
		WeatherFile: GetString("gamePlay.weatherFile"),
	}
}

// All 已解析的全部配置，用于 /admin/config
func All() map[string]any {
	return viper.AllSettings()
}
