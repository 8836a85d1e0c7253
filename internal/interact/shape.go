// Package interact runs the hover and click state machine for the three
// linked maps.
package interact

import (
	"github.com/sells-group/choropleth-cli/internal/model"
)

// State is a shape's highlight state.
type State string

const (
	Normal      State = "normal"
	Highlighted State = "highlighted"
)

// Stroke is the outline a state renders with.
type Stroke struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// NormalStroke is the resting outline on every map.
var NormalStroke = Stroke{Color: "#333", Width: 1}

// HighlightStroke returns the highlighted outline for a map: orange on the
// linked population maps, black on the Gini map.
func HighlightStroke(kind model.MapKind) Stroke {
	if kind == model.MapGini {
		return Stroke{Color: "black", Width: 3}
	}
	return Stroke{Color: "orange", Width: 3}
}

// Shape is one town's drawn shape on one map.
type Shape struct {
	Map   model.MapKind
	ID    string
	State State
}

// Stroke returns the outline for the shape's current state.
func (s *Shape) Stroke() Stroke {
	if s.State == Highlighted {
		return HighlightStroke(s.Map)
	}
	return NormalStroke
}

// ShapeSet holds every shape drawn on one map.
type ShapeSet struct {
	kind   model.MapKind
	order  []string
	shapes map[string]*Shape
}

// NewShapeSet creates a set of Normal shapes for the given town ids.
func NewShapeSet(kind model.MapKind, ids []string) *ShapeSet {
	s := &ShapeSet{
		kind:   kind,
		order:  make([]string, 0, len(ids)),
		shapes: make(map[string]*Shape, len(ids)),
	}
	for _, id := range ids {
		if _, dup := s.shapes[id]; dup {
			continue
		}
		s.order = append(s.order, id)
		s.shapes[id] = &Shape{Map: kind, ID: id, State: Normal}
	}
	return s
}

// Kind returns the map the set belongs to.
func (s *ShapeSet) Kind() model.MapKind { return s.kind }

// Get returns the shape with the given id.
func (s *ShapeSet) Get(id string) (*Shape, bool) {
	sh, ok := s.shapes[id]
	return sh, ok
}

// Len returns the number of shapes.
func (s *ShapeSet) Len() int { return len(s.order) }

// Highlighted returns the ids of highlighted shapes in draw order.
func (s *ShapeSet) Highlighted() []string {
	var ids []string
	for _, id := range s.order {
		if s.shapes[id].State == Highlighted {
			ids = append(ids, id)
		}
	}
	return ids
}

// set moves a shape to state and reports the change. ok is false when the
// id is not in the set.
func (s *ShapeSet) set(id string, state State) (ShapeChange, bool) {
	sh, ok := s.shapes[id]
	if !ok {
		return ShapeChange{}, false
	}
	sh.State = state
	return ShapeChange{Map: s.kind, ID: id, State: state, Stroke: sh.Stroke()}, true
}
