package model

import "sort"

// Venue is a facility with a fixed geographic anchor and the postal zones
// whose load is affected when an event there lets out.
type Venue struct {
	Name  string   `json:"name"`
	Lat   float64  `json:"lat"`
	Lng   float64  `json:"lng"`
	Zones []string `json:"zones"`
}

var venues = map[string]Venue{
	"Moody Center":                             {"Moody Center", 30.2874, -97.7359, []string{"78705", "78751", "78752", "78756"}},
	"DKR-Texas Memorial Stadium":               {"DKR-Texas Memorial Stadium", 30.2837, -97.7326, []string{"78705", "78751", "78752", "78756"}},
	"UFCU Disch-Falk Field":                    {"UFCU Disch-Falk Field", 30.2829, -97.7283, []string{"78705", "78751", "78752"}},
	"Texas Tennis Center":                      {"Texas Tennis Center", 30.2893, -97.7316, []string{"78705", "78751"}},
	"Weller Tennis Center":                     {"Weller Tennis Center", 30.2878, -97.7292, []string{"78705", "78751"}},
	"Lee and Joe Jamail Texas Swimming Center": {"Lee and Joe Jamail Texas Swimming Center", 30.2866, -97.7352, []string{"78705", "78751"}},
	"Red & Charline McCombs Field":             {"Red & Charline McCombs Field", 30.2798, -97.7223, []string{"78702", "78705", "78751"}},
	"Wright-Whitaker Sports Complex":           {"Wright-Whitaker Sports Complex", 30.2503, -97.7191, []string{"78702", "78744"}},
	"Mike A. Myers Stadium and Soccer Field":   {"Mike A. Myers Stadium and Soccer Field", 30.2814, -97.7306, []string{"78705", "78751", "78752"}},
}

// LookupVenue returns the catalog entry for a facility name.
func LookupVenue(name string) (Venue, bool) {
	v, ok := venues[name]
	if !ok {
		return Venue{}, false
	}
	v.Zones = append([]string(nil), v.Zones...)
	return v, true
}

// Venues lists the catalog sorted by name.
func Venues() []Venue {
	out := make([]Venue, 0, len(venues))
	for name := range venues {
		v, _ := LookupVenue(name)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
