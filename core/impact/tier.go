package impact

import "math"

// Tier is an ERCOT operating condition band.
type Tier struct {
	Label       string  `json:"label"`
	Max         float64 `json:"-"`
	Description string  `json:"description"`
}

var tiers = []Tier{
	{Label: "Normal", Max: 50, Description: "Normal grid operations"},
	{Label: "Elevated", Max: 150, Description: "Above-average demand, watch for spikes"},
	{Label: "Critical", Max: 500, Description: "High demand spike, dispatch advised"},
	{Label: "Emergency", Max: math.Inf(1), Description: "Emergency pricing, maximize dispatch"},
}

// TierFor returns the first band whose exclusive upper bound exceeds price.
// NaN is reported as Normal.
func TierFor(price float64) Tier {
	if math.IsNaN(price) {
		return tiers[0]
	}
	for _, t := range tiers {
		if price < t.Max {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// Tiers lists the bands in ascending order.
func Tiers() []Tier { return append([]Tier(nil), tiers...) }
