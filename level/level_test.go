package level

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowtaxi/sim"
)

const objects = `TAXI,480,500
PASSENGER,360,300,3,620,400
COIN,620,100
INVINCIBLE_POWER,360,-200
`

func TestParseObjects(t *testing.T) {
	got, err := ParseObjects(strings.NewReader(objects))
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, sim.Placement{Kind: sim.PlaceTaxi, X: 480, Y: 500}, got[0])
	assert.Equal(t, sim.Placement{Kind: sim.PlacePassenger, X: 360, Y: 300, Priority: 3, EndX: 620, DistanceY: 400}, got[1])
	assert.Equal(t, sim.PlaceCoin, got[2].Kind)
	assert.Equal(t, -200, got[3].Y)
}

func TestParseObjects_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown type", "TRUCK,1,2\n"},
		{"short passenger", "PASSENGER,1,2,3\n"},
		{"not a number", "COIN,a,2\n"},
		{"priority range", "PASSENGER,1,2,9,3,4\n"},
		{"short taxi", "TAXI,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseObjects(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestParseObjects_SkipsCommentsAndBlankLines(t *testing.T) {
	got, err := ParseObjects(strings.NewReader("# level 1\n\nTAXI,1,2\n"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParseWeather(t *testing.T) {
	got, err := ParseWeather(strings.NewReader("SUNNY,1,200\nRAINING,201,400\n"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sim.WeatherSpan{Condition: "RAINING", Start: 201, End: 400}, got[1])
	assert.Equal(t, "RAINING", sim.WeatherAt(got, 300))

	_, err = ParseWeather(strings.NewReader("RAINING,1\n"))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "gameObjects.csv")
	weatherPath := filepath.Join(dir, "gameWeather.csv")
	require.NoError(t, os.WriteFile(objPath, []byte(objects), 0644))
	require.NoError(t, os.WriteFile(weatherPath, []byte("RAINING,1,10\n"), 0644))

	lv, err := Load(objPath, weatherPath)
	require.NoError(t, err)
	assert.Len(t, lv.Placements, 4)
	assert.Len(t, lv.Weather, 1)

	lv, err = Load(objPath, "")
	require.NoError(t, err)
	assert.Empty(t, lv.Weather)

	_, err = Load(filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)
}

func TestLoad_BundledLevel(t *testing.T) {
	lv, err := Load(filepath.Join("..", "res", "gameObjects.csv"), filepath.Join("..", "res", "gameWeather.csv"))
	require.NoError(t, err)

	require.NotEmpty(t, lv.Placements)
	assert.Equal(t, sim.PlaceTaxi, lv.Placements[0].Kind)
	assert.Equal(t, "RAINY", sim.WeatherAt(lv.Weather, 1500))
	assert.Equal(t, sim.DefaultWeather, sim.WeatherAt(lv.Weather, 6000))
}
