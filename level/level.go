// Package level 解析关卡脚本：物体放置文件与天气时间线，均为逗号分隔的文本。
package level

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"shadowtaxi/sim"
)

// ErrMalformed 行格式错误
var ErrMalformed = errors.New("malformed level line")

var placementKinds = map[string]sim.PlacementKind{
	"TAXI":             sim.PlaceTaxi,
	"PASSENGER":        sim.PlacePassenger,
	"COIN":             sim.PlaceCoin,
	"INVINCIBLE_POWER": sim.PlaceInvinciblePower,
}

// Level 一个关卡的全部初始数据
type Level struct {
	Placements []sim.Placement
	Weather    []sim.WeatherSpan
}

// Load 读取物体文件与天气文件；天气路径为空时使用默认天气
func Load(objectsPath, weatherPath string) (*Level, error) {
	f, err := os.Open(objectsPath)
	if err != nil {
		return nil, fmt.Errorf("open objects file: %w", err)
	}
	defer f.Close()

	placements, err := ParseObjects(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", objectsPath, err)
	}

	lv := &Level{Placements: placements}
	if weatherPath == "" {
		return lv, nil
	}

	wf, err := os.Open(weatherPath)
	if err != nil {
		return nil, fmt.Errorf("open weather file: %w", err)
	}
	defer wf.Close()

	lv.Weather, err = ParseWeather(wf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", weatherPath, err)
	}
	return lv, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return cr
}

// ParseObjects 每行 TYPE,x,y[,priority,endX,distanceY]
func ParseObjects(r io.Reader) ([]sim.Placement, error) {
	cr := newReader(r)
	var out []sim.Placement
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}

		kind, ok := placementKinds[strings.TrimSpace(rec[0])]
		if !ok {
			return nil, fmt.Errorf("%w: line %d: unknown type %q", ErrMalformed, line, rec[0])
		}
		want := 3
		if kind == sim.PlacePassenger {
			want = 6
		}
		if len(rec) < want {
			return nil, fmt.Errorf("%w: line %d: %s needs %d fields, got %d", ErrMalformed, line, rec[0], want, len(rec))
		}
		nums, err := atoiAll(rec[1:want])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}

		p := sim.Placement{Kind: kind, X: nums[0], Y: nums[1]}
		if kind == sim.PlacePassenger {
			p.Priority, p.EndX, p.DistanceY = nums[2], nums[3], nums[4]
			if p.Priority < 1 || p.Priority > 5 {
				return nil, fmt.Errorf("%w: line %d: priority %d out of 1..5", ErrMalformed, line, p.Priority)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseWeather 每行 CONDITION,startFrame,endFrame
func ParseWeather(r io.Reader) ([]sim.WeatherSpan, error) {
	cr := newReader(r)
	var out []sim.WeatherSpan
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: line %d: weather needs 3 fields, got %d", ErrMalformed, line, len(rec))
		}
		nums, err := atoiAll(rec[1:3])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		out = append(out, sim.WeatherSpan{
			Condition: strings.TrimSpace(rec[0]),
			Start:     nums[0],
			End:       nums[1],
		})
	}
	return out, nil
}

func blank(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
