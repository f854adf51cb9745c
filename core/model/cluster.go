package model

import "math"

// FleetSize is the total number of deployed batteries.
const FleetSize = 4200

// Cluster is a neighbourhood group of batteries anchored in one postal zone.
// Activation is dispatch state and is not stored here.
type Cluster struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Zone  string  `json:"zone"`
	Count int     `json:"count"`
}

// RadiusMeters approximates the covered neighbourhood: 60 units span 200m,
// 140 units span 900m.
func (c Cluster) RadiusMeters() int {
	return int(math.Round(200 + float64(c.Count-60)*(900-200)/(140-60)))
}

var clusters = []Cluster{
	{"bc01", 30.2960, -97.7720, "78703", 122},
	{"bc02", 30.2880, -97.7810, "78703", 115},
	{"bc03", 30.2820, -97.7680, "78703", 129},
	{"bc04", 30.3180, -97.7390, "78705", 118},
	{"bc05", 30.3250, -97.7440, "78705", 117},
	{"bc06", 30.3120, -97.7350, "78705", 124},
	{"bc07", 30.3310, -97.7480, "78756", 131},
	{"bc08", 30.3390, -97.7550, "78756", 119},
	{"bc09", 30.3420, -97.7420, "78756", 113},
	{"bc10", 30.3220, -97.7260, "78751", 126},
	{"bc11", 30.3150, -97.7180, "78751", 117},
	{"bc12", 30.3350, -97.7080, "78752", 122},
	{"bc13", 30.3440, -97.6990, "78752", 114},
	{"bc14", 30.3480, -97.7150, "78752", 120},
	{"bc15", 30.2440, -97.7560, "78704", 125},
	{"bc16", 30.2360, -97.7660, "78704", 119},
	{"bc17", 30.2360, -97.7480, "78704", 112},
	{"bc18", 30.2580, -97.7110, "78702", 120},
	{"bc19", 30.2670, -97.7030, "78702", 128},
	{"bc20", 30.2720, -97.7180, "78702", 116},
	{"bc21", 30.2790, -97.6930, "78721", 117},
	{"bc22", 30.2660, -97.6850, "78721", 113},
	{"bc23", 30.2200, -97.7700, "78745", 122},
	{"bc24", 30.2090, -97.7820, "78745", 118},
	{"bc25", 30.2060, -97.7590, "78745", 126},
	{"bc26", 30.1860, -97.8080, "78748", 110},
	{"bc27", 30.1750, -97.8190, "78748", 115},
	{"bc28", 30.1680, -97.7990, "78748", 117},
	{"bc29", 30.2260, -97.8410, "78749", 124},
	{"bc30", 30.2150, -97.8530, "78749", 119},
	{"bc31", 30.3870, -97.7910, "78750", 130},
	{"bc32", 30.3760, -97.8050, "78750", 121},
	{"bc33", 30.3560, -97.7410, "78757", 127},
	{"bc34", 30.3650, -97.7520, "78757", 114},
	{"bc35", 30.3610, -97.7310, "78757", 120},
}

// Clusters returns a copy of the catalog in its fixed order.
func Clusters() []Cluster {
	return append([]Cluster(nil), clusters...)
}

// ClustersInZones returns, in catalog order, every cluster whose home zone is
// one of zones.
func ClustersInZones(zones []string) []Cluster {
	set := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		set[z] = struct{}{}
	}
	var out []Cluster
	for _, c := range clusters {
		if _, ok := set[c.Zone]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ZoneUnits sums the batteries deployed in a zone.
func ZoneUnits(zone string) int {
	n := 0
	for _, c := range clusters {
		if c.Zone == zone {
			n += c.Count
		}
	}
	return n
}
