package model

// MapKind identifies one of the three choropleth maps.
type MapKind string

const (
	MapPopulation MapKind = "population" // Map A: population in 1980
	MapChange     MapKind = "change"     // Map B: population change 1980–2010
	MapGini       MapKind = "gini"       // Map C: latest Gini index
)

// AllMapKinds returns the maps in display order.
func AllMapKinds() []MapKind {
	return []MapKind{MapPopulation, MapChange, MapGini}
}

// ParseMapKind validates a map name.
func ParseMapKind(s string) (MapKind, bool) {
	for _, k := range AllMapKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Container returns the page container class for the map.
func (k MapKind) Container() string {
	switch k {
	case MapPopulation:
		return "fig1"
	case MapChange:
		return "fig2"
	case MapGini:
		return "fig3"
	default:
		return ""
	}
}
