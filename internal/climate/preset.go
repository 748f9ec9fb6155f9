// Package climate derives temperature, moisture, biome, and soil fields
// from the finished elevation and water grids.
package climate

import "github.com/go-gl/mathgl/mgl64"

// Preset holds the map-wide climate parameters supplied by the caller.
type Preset struct {
	Name            string
	BaseTemperature float64    // Sea-level temperature, °C
	BaseMoisture    float64    // Ambient moisture before terrain effects, [0,1]
	MaxElevationM   float64    // Real-world meters represented by elevation 1.0
	Wind            mgl64.Vec2 // Prevailing wind direction (unit vector)
}

// TemperatePreset is the default mild, moderately wet climate.
func TemperatePreset() Preset {
	return Preset{
		Name:            "temperate",
		BaseTemperature: 14,
		BaseMoisture:    0.45,
		MaxElevationM:   1800,
		Wind:            mgl64.Vec2{1, 0},
	}
}

// AridPreset is hot and dry; maps lean toward desert and savanna.
func AridPreset() Preset {
	return Preset{
		Name:            "arid",
		BaseTemperature: 26,
		BaseMoisture:    0.18,
		MaxElevationM:   1500,
		Wind:            mgl64.Vec2{0.7071067811865476, 0.7071067811865476},
	}
}

// ColdPreset is subarctic; maps lean toward taiga and tundra.
func ColdPreset() Preset {
	return Preset{
		Name:            "cold",
		BaseTemperature: 2,
		BaseMoisture:    0.40,
		MaxElevationM:   2200,
		Wind:            mgl64.Vec2{0, 1},
	}
}
