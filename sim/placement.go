package sim

// PlacementKind 关卡脚本中的物体类型
type PlacementKind uint8

const (
	PlaceTaxi PlacementKind = iota + 1
	PlacePassenger
	PlaceCoin
	PlaceInvinciblePower
)

func (k PlacementKind) String() string {
	switch k {
	case PlaceTaxi:
		return "TAXI"
	case PlacePassenger:
		return "PASSENGER"
	case PlaceCoin:
		return "COIN"
	case PlaceInvinciblePower:
		return "INVINCIBLE_POWER"
	default:
		return "UNKNOWN"
	}
}

// Placement 一条初始放置记录；Priority/EndX/DistanceY 仅对乘客有效
type Placement struct {
	Kind      PlacementKind
	X, Y      int
	Priority  int
	EndX      int
	DistanceY int
}

// DefaultWeather 没有匹配时间段时的天气
const DefaultWeather = "SUNNY"

// WeatherSpan 天气时间段，闭区间 [Start, End]
type WeatherSpan struct {
	Condition string
	Start     int
	End       int
}

// WeatherAt 按顺序取第一个覆盖该帧的时间段
func WeatherAt(spans []WeatherSpan, frame int) string {
	for _, s := range spans {
		if frame >= s.Start && frame <= s.End {
			return s.Condition
		}
	}
	return DefaultWeather
}
