package interact

import (
	"fmt"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/model"
)

// Tooltip placement and fades.
var (
	linkedOffset = Point{X: 10, Y: -28}
	giniOffset   = Point{X: 15, Y: -60}
)

const (
	linkedOpacity = 0.9
	giniOpacity   = 0.95
	fadeInMillis  = 200
	fadeOutMillis = 400
)

// ErrUnknownShape is returned for events on ids that are not drawn.
var ErrUnknownShape = eris.New("interact: unknown shape")

// Handler reacts to one event kind on one map.
type Handler func(ev Event) Outcome

type handlerKey struct {
	m    model.MapKind
	kind EventKind
}

// Sets is the shape set of every map, passed to Bind explicitly.
type Sets struct {
	Population *ShapeSet
	Change     *ShapeSet
	Gini       *ShapeSet
}

// NewSets builds Normal shape sets for every town in the atlas.
func NewSets(a *choropleth.Atlas) Sets {
	ids := make([]string, len(a.Towns))
	for i, t := range a.Towns {
		ids[i] = t.ID
	}
	return Sets{
		Population: NewShapeSet(model.MapPopulation, ids),
		Change:     NewShapeSet(model.MapChange, ids),
		Gini:       NewShapeSet(model.MapGini, ids),
	}
}

func (s Sets) get(kind model.MapKind) *ShapeSet {
	switch kind {
	case model.MapPopulation:
		return s.Population
	case model.MapChange:
		return s.Change
	case model.MapGini:
		return s.Gini
	}
	return nil
}

// Binder dispatches events to the handlers registered for them. A Binder
// holds one viewer's shape states and is not safe for concurrent use.
type Binder struct {
	atlas    *choropleth.Atlas
	sets     Sets
	handlers map[handlerKey]Handler
	printer  *message.Printer
}

// Bind wires the default handlers: population and change maps highlight
// each other, the Gini map highlights alone and shows its trend tooltip
// and click summary.
func Bind(a *choropleth.Atlas, sets Sets) *Binder {
	b := &Binder{
		atlas:    a,
		sets:     sets,
		handlers: make(map[handlerKey]Handler),
		printer:  message.NewPrinter(language.English),
	}

	b.On(model.MapPopulation, Enter, b.linkedEnter(sets.Population, sets.Change, b.populationText))
	b.On(model.MapPopulation, Exit, linkedExit(sets.Population, sets.Change))
	b.On(model.MapChange, Enter, b.linkedEnter(sets.Change, sets.Population, b.changeText))
	b.On(model.MapChange, Exit, linkedExit(sets.Change, sets.Population))
	b.On(model.MapGini, Enter, b.giniEnter(sets.Gini))
	b.On(model.MapGini, Exit, b.giniExit(sets.Gini))
	b.On(model.MapGini, Click, b.giniClick)

	return b
}

// On registers h for kind events on map m, replacing any previous handler.
func (b *Binder) On(m model.MapKind, kind EventKind, h Handler) {
	b.handlers[handlerKey{m, kind}] = h
}

// Sets returns the bound shape sets.
func (b *Binder) Sets() Sets { return b.sets }

// Dispatch validates ev and runs its handler. Events with no registered
// handler are no-ops.
func (b *Binder) Dispatch(ev Event) (Outcome, error) {
	if err := ev.Validate(); err != nil {
		return Outcome{}, err
	}
	set := b.sets.get(ev.Map)
	if set == nil {
		return Outcome{}, eris.Errorf("interact: no shapes bound for map %q", ev.Map)
	}
	if _, ok := set.Get(ev.ShapeID); !ok {
		return Outcome{}, eris.Wrapf(ErrUnknownShape, "map %s id %s", ev.Map, ev.ShapeID)
	}

	h, ok := b.handlers[handlerKey{ev.Map, ev.Kind}]
	if !ok {
		return Outcome{}, nil
	}
	return h(ev), nil
}

// linkedEnter highlights the hovered shape and the same id on the other map.
func (b *Binder) linkedEnter(own, other *ShapeSet, text func(model.Town) []string) Handler {
	return func(ev Event) Outcome {
		var out Outcome
		if c, ok := own.set(ev.ShapeID, Highlighted); ok {
			out.Changes = append(out.Changes, c)
		}
		if c, ok := other.set(ev.ShapeID, Highlighted); ok {
			out.Changes = append(out.Changes, c)
		}

		town, _ := b.atlas.Town(ev.ShapeID)
		out.Tooltip = &Tooltip{
			Visible:    true,
			Opacity:    linkedOpacity,
			FadeMillis: fadeInMillis,
			Position:   offset(ev.Pointer, linkedOffset),
			Title:      town.Name,
			Lines:      text(town),
		}
		return out
	}
}

func linkedExit(own, other *ShapeSet) Handler {
	return func(ev Event) Outcome {
		var out Outcome
		if c, ok := own.set(ev.ShapeID, Normal); ok {
			out.Changes = append(out.Changes, c)
		}
		if c, ok := other.set(ev.ShapeID, Normal); ok {
			out.Changes = append(out.Changes, c)
		}
		out.Tooltip = hiddenTooltip()
		return out
	}
}

func (b *Binder) giniEnter(own *ShapeSet) Handler {
	return func(ev Event) Outcome {
		series, ok := b.atlas.Gini.Series(ev.ShapeID)
		if !ok {
			return Outcome{}
		}
		latest, _ := b.atlas.Gini.LatestRecord(ev.ShapeID)
		town, _ := b.atlas.Town(ev.ShapeID)

		var out Outcome
		if c, ok := own.set(ev.ShapeID, Highlighted); ok {
			out.Changes = append(out.Changes, c)
		}
		out.Tooltip = &Tooltip{
			Visible:    true,
			Opacity:    giniOpacity,
			FadeMillis: fadeInMillis,
			Position:   offset(ev.Pointer, giniOffset),
			Title:      series.AreaName(),
			Lines: []string{
				b.giniLine(latest),
				"Population 1980: " + b.count(town.Pop1980),
				"Population 2010: " + b.count(town.Pop2010),
			},
			Sparkline: NewSparkline(series),
		}
		return out
	}
}

func (b *Binder) giniExit(own *ShapeSet) Handler {
	return func(ev Event) Outcome {
		if _, ok := b.atlas.Gini.Series(ev.ShapeID); !ok {
			return Outcome{}
		}
		var out Outcome
		if c, ok := own.set(ev.ShapeID, Normal); ok {
			out.Changes = append(out.Changes, c)
		}
		out.Tooltip = hiddenTooltip()
		return out
	}
}

func (b *Binder) giniClick(ev Event) Outcome {
	series, ok := b.atlas.Gini.Series(ev.ShapeID)
	if !ok {
		return Outcome{}
	}
	latest, _ := b.atlas.Gini.LatestRecord(ev.ShapeID)
	town, _ := b.atlas.Town(ev.ShapeID)

	return Outcome{Modal: &Modal{
		Title: series.AreaName(),
		Lines: []string{
			"Population 1980: " + b.count(town.Pop1980),
			"Population 2010: " + b.count(town.Pop2010),
			b.giniLine(latest),
		},
	}}
}

func (b *Binder) populationText(t model.Town) []string {
	return []string{"Population 1980: " + b.count(t.Pop1980)}
}

func (b *Binder) changeText(t model.Town) []string {
	c, ok := t.Change()
	if !ok {
		return []string{"Population change: N/A"}
	}
	return []string{"Population change: " + b.printer.Sprintf("%d", c)}
}

// giniLine labels the value with the year it was measured, which is
// earlier than the latest year for counties that fell back.
func (b *Binder) giniLine(rec model.GiniRecord) string {
	return fmt.Sprintf("Gini Index (%d): %.3f", rec.Year, rec.Gini)
}

func (b *Binder) count(c model.Count) string {
	if !c.Valid {
		return "N/A"
	}
	return b.printer.Sprintf("%d", c.N)
}

func hiddenTooltip() *Tooltip {
	return &Tooltip{Visible: false, Opacity: 0, FadeMillis: fadeOutMillis}
}

func offset(p, d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}
