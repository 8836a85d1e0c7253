package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// WriteSVG draws one map: a path per town filled with its color and
// tagged with data-id so linked highlights can find it.
func WriteSVG(w io.Writer, s *Scene, kind model.MapKind) error {
	m, ok := s.Atlas.Map(kind)
	if !ok {
		return eris.Errorf("render: unknown map %q", kind)
	}

	width := int(math.Round(s.Projection.Width))
	height := int(math.Round(s.Projection.Height))

	canvas := svg.New(w)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))
	canvas.Group(fmt.Sprintf(`class="map map-%s"`, kind), `data-map="`+string(kind)+`"`)
	for _, f := range m.Fills {
		d := s.Paths[f.ID]
		if d == "" {
			continue
		}
		canvas.Path(d,
			`class="town"`,
			`data-id="`+html.EscapeString(f.ID)+`"`,
			`data-name="`+html.EscapeString(f.Name)+`"`,
			`fill="`+f.Color+`"`,
			`stroke="#333"`,
			`stroke-width="1"`,
		)
	}
	canvas.Gend()
	canvas.End()
	return nil
}

// SVG renders one map to bytes.
func SVG(s *Scene, kind model.MapKind) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, kind); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
