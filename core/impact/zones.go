package impact

import (
	"math"

	"github.com/kilianp07/gridpulse/core/model"
)

// MaxSurgePct caps the compounded surge of a zone hit by several events.
const MaxSurgePct = 280

// zoneLoadPct is the projected post-event surge over baseline per zone, for
// the first two, next two and remaining zones of a venue.
var zoneLoadPct = map[string][3]int{
	"78705": {190, 140, 90},
	"78751": {160, 120, 80},
	"78752": {140, 100, 70},
	"78756": {150, 110, 75},
	"78703": {130, 90, 60},
	"78702": {120, 85, 55},
	"78704": {110, 80, 55},
	"78701": {125, 85, 55},
	"78721": {100, 70, 45},
	"78744": {90, 65, 40},
	"78748": {80, 60, 35},
	"78617": {70, 50, 30},
}

var defaultZoneLoad = [3]int{100, 70, 45}

// Intensity buckets a surge percentage.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
	IntensitySevere   Intensity = "severe"
)

// ZoneSurge is the projected load increase in one postal zone.
type ZoneSurge struct {
	Zone      string    `json:"zone"`
	LoadPct   int       `json:"load_pct"`
	Batteries int       `json:"batteries"`
	Intensity Intensity `json:"intensity"`
}

func intensityFor(pct int) Intensity {
	switch {
	case pct > 160:
		return IntensitySevere
	case pct > 120:
		return IntensityHigh
	case pct > 80:
		return IntensityModerate
	default:
		return IntensityLow
	}
}

// ZoneLoad projects the surge per affected zone in first-seen order. A zone
// reached by a second event compounds by 60% of the new surge, capped at
// MaxSurgePct. Zones without deployed clusters report an even share of the
// event allocation.
func ZoneLoad(events []model.Event) []ZoneSurge {
	var out []ZoneSurge
	index := map[string]int{}
	for _, e := range events {
		zones := e.Venue.Zones
		for i, z := range zones {
			steps, ok := zoneLoadPct[z]
			if !ok {
				steps = defaultZoneLoad
			}
			var pct int
			switch {
			case i < 2:
				pct = steps[0]
			case i < 4:
				pct = steps[1]
			default:
				pct = steps[2]
			}
			if at, ok := index[z]; ok {
				cur := &out[at]
				cur.LoadPct = min(MaxSurgePct, cur.LoadPct+int(math.Round(float64(pct)*0.6)))
				cur.Intensity = intensityFor(cur.LoadPct)
				continue
			}
			units := model.ZoneUnits(z)
			if units == 0 {
				units = int(math.Round(float64(BatteriesNeeded(e)) / float64(len(zones))))
			}
			index[z] = len(out)
			out = append(out, ZoneSurge{Zone: z, LoadPct: pct, Batteries: units, Intensity: intensityFor(pct)})
		}
	}
	return out
}
