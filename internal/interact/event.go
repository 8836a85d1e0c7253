package interact

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// EventKind is a pointer event on a shape.
type EventKind string

const (
	Enter EventKind = "enter"
	Exit  EventKind = "exit"
	Click EventKind = "click"
)

// ParseEventKind parses an event kind name.
func ParseEventKind(s string) (EventKind, bool) {
	switch k := EventKind(s); k {
	case Enter, Exit, Click:
		return k, true
	}
	return "", false
}

// Point is a page position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is one pointer event on a shape.
type Event struct {
	Map     model.MapKind `json:"map"`
	Kind    EventKind     `json:"kind"`
	ShapeID string        `json:"shape_id"`
	Pointer Point         `json:"pointer"`
}

// Validate checks the event names a known map and kind.
func (e Event) Validate() error {
	if _, ok := model.ParseMapKind(string(e.Map)); !ok {
		return eris.Errorf("interact: unknown map %q", e.Map)
	}
	if _, ok := ParseEventKind(string(e.Kind)); !ok {
		return eris.Errorf("interact: unknown event kind %q", e.Kind)
	}
	if e.ShapeID == "" {
		return eris.New("interact: shape id is required")
	}
	return nil
}

// ShapeChange reports a shape whose state an event changed.
type ShapeChange struct {
	Map    model.MapKind `json:"map"`
	ID     string        `json:"id"`
	State  State         `json:"state"`
	Stroke Stroke        `json:"stroke"`
}

// Tooltip is the shared tooltip's target appearance.
type Tooltip struct {
	Visible    bool       `json:"visible"`
	Opacity    float64    `json:"opacity"`
	FadeMillis int        `json:"fade_ms"`
	Position   Point      `json:"position"`
	Title      string     `json:"title,omitempty"`
	Lines      []string   `json:"lines,omitempty"`
	Sparkline  *Sparkline `json:"sparkline,omitempty"`
}

// Modal is a blocking summary shown on click.
type Modal struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Text renders the modal as plain text, one line per field.
func (m *Modal) Text() string {
	out := m.Title
	for _, l := range m.Lines {
		out += "\n" + l
	}
	return out
}

// Outcome is everything an event changed. A zero Outcome means the event
// was a no-op.
type Outcome struct {
	Changes []ShapeChange `json:"changes,omitempty"`
	Tooltip *Tooltip      `json:"tooltip,omitempty"`
	Modal   *Modal        `json:"modal,omitempty"`
}

// Empty reports whether the outcome changed nothing.
func (o Outcome) Empty() bool {
	return len(o.Changes) == 0 && o.Tooltip == nil && o.Modal == nil
}
