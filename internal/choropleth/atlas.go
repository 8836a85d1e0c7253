// Package choropleth joins towns with derived values and colors the three
// linked maps.
package choropleth

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/gini"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/scale"
)

// Palette holds the configurable colors.
type Palette struct {
	PopLow   string
	PopHigh  string
	Fallback string
}

// DefaultPalette is the red population ramp with a light gray fallback.
func DefaultPalette() Palette {
	return Palette{PopLow: "#fee5d9", PopHigh: "#de2d26", Fallback: "#cccccc"}
}

// Fill is one town's value and color on one map.
type Fill struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Value    float64 `json:"value" yaml:"value"`
	HasValue bool    `json:"has_value" yaml:"has_value"`
	Color    string  `json:"color" yaml:"color"`
}

// Map is one colored choropleth. Fills follow town load order.
type Map struct {
	Kind  model.MapKind
	Scale scale.Scale
	Fills []Fill

	byID map[string]int
}

// Fill returns the fill for a town id.
func (m *Map) Fill(id string) (Fill, bool) {
	i, ok := m.byID[id]
	if !ok {
		return Fill{}, false
	}
	return m.Fills[i], true
}

// Stats summarizes the join.
type Stats struct {
	Towns         int `json:"towns" yaml:"towns"`
	WithPop1980   int `json:"with_pop_1980" yaml:"with_pop_1980"`
	WithChange    int `json:"with_change" yaml:"with_change"`
	GiniMatched   int `json:"gini_matched" yaml:"gini_matched"`
	GiniUnmatched int `json:"gini_unmatched" yaml:"gini_unmatched"`
	Counties      int `json:"counties" yaml:"counties"`
}

// Atlas is the joined, colored data behind all three maps. It is read-only
// after Build and safe to share between goroutines.
type Atlas struct {
	Towns   []model.Town
	Changes []model.Change
	Gini    *gini.Groups
	Palette Palette
	Stats   Stats

	maps   map[model.MapKind]*Map
	townIx map[string]int
}

// Build derives the change entries and the three colored maps.
func Build(towns []model.Town, groups *gini.Groups, pal Palette) (*Atlas, error) {
	if groups == nil {
		return nil, eris.New("choropleth: nil gini groups")
	}
	if _, err := scale.ParseHex(pal.Fallback); err != nil {
		return nil, eris.Wrap(err, "choropleth: fallback color")
	}
	low, err := scale.ParseHex(pal.PopLow)
	if err != nil {
		return nil, eris.Wrap(err, "choropleth: population low color")
	}
	high, err := scale.ParseHex(pal.PopHigh)
	if err != nil {
		return nil, eris.Wrap(err, "choropleth: population high color")
	}
	rdbu, err := scale.RdBu()
	if err != nil {
		return nil, err
	}

	a := &Atlas{
		Towns:   towns,
		Gini:    groups,
		Palette: pal,
		maps:    make(map[model.MapKind]*Map, 3),
		townIx:  make(map[string]int, len(towns)),
	}
	for i, t := range towns {
		a.townIx[t.ID] = i
	}

	pops := make([]float64, 0, len(towns))
	changeValues := make([]float64, 0, len(towns))
	for _, t := range towns {
		if t.Pop1980.Valid {
			pops = append(pops, float64(t.Pop1980.N))
		}
		if c, ok := t.Change(); ok {
			a.Changes = append(a.Changes, model.Change{ID: t.ID, Change: c})
			changeValues = append(changeValues, float64(c))
		}
	}

	a.maps[model.MapPopulation] = a.colorize(model.MapPopulation,
		scale.NewLinear(pops, scale.RGB(low, high)),
		func(t model.Town) (float64, bool) {
			return float64(t.Pop1980.N), t.Pop1980.Valid
		})

	a.maps[model.MapChange] = a.colorize(model.MapChange,
		scale.NewDiverging(changeValues, rdbu),
		func(t model.Town) (float64, bool) {
			c, ok := t.Change()
			return float64(c), ok
		})

	a.maps[model.MapGini] = a.colorize(model.MapGini,
		scale.NewSequential(groups.LatestValues(), scale.Plasma()),
		func(t model.Town) (float64, bool) {
			return groups.Latest(t.ID)
		})

	a.Stats = Stats{
		Towns:       len(towns),
		WithPop1980: len(pops),
		WithChange:  len(a.Changes),
		Counties:    groups.Len(),
	}
	for _, f := range a.maps[model.MapGini].Fills {
		if f.HasValue {
			a.Stats.GiniMatched++
		} else {
			a.Stats.GiniUnmatched++
		}
	}

	zap.L().Debug("choropleth: built atlas",
		zap.Int("towns", a.Stats.Towns),
		zap.Int("changes", a.Stats.WithChange),
		zap.Int("gini_matched", a.Stats.GiniMatched),
		zap.Int("gini_unmatched", a.Stats.GiniUnmatched),
	)

	return a, nil
}

func (a *Atlas) colorize(kind model.MapKind, s scale.Scale, value func(model.Town) (float64, bool)) *Map {
	m := &Map{
		Kind:  kind,
		Scale: s,
		Fills: make([]Fill, len(a.Towns)),
		byID:  make(map[string]int, len(a.Towns)),
	}
	for i, t := range a.Towns {
		f := Fill{ID: t.ID, Name: t.Name, Color: a.Palette.Fallback}
		if v, ok := value(t); ok {
			f.Value, f.HasValue = v, true
			f.Color = s.Color(v)
		}
		m.Fills[i] = f
		m.byID[t.ID] = i
	}
	return m
}

// Map returns the colored map of the given kind.
func (a *Atlas) Map(kind model.MapKind) (*Map, bool) {
	m, ok := a.maps[kind]
	return m, ok
}

// Town looks a town up by id.
func (a *Atlas) Town(id string) (model.Town, bool) {
	i, ok := a.townIx[id]
	if !ok {
		return model.Town{}, false
	}
	return a.Towns[i], true
}

// MaxAbsChange is the half-width of the change map's symmetric domain.
func (a *Atlas) MaxAbsChange() float64 {
	if d, ok := a.maps[model.MapChange].Scale.(*scale.Diverging); ok {
		return d.Max
	}
	return 0
}
