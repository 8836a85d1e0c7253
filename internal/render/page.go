package render

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/model"
)

//go:embed assets/page.html.tmpl
var pageSource string

//go:embed assets/app.js
var appScript string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

var captions = map[model.MapKind]string{
	model.MapPopulation: "Population, 1980",
	model.MapChange:     "Population change, 1980 to 2010",
	model.MapGini:       "Gini index, latest year",
}

type pageData struct {
	Title       string
	Maps        []pageMap
	Interactive bool
	Script      template.JS
}

type pageMap struct {
	Kind      model.MapKind
	Container string
	Caption   string
	SVG       template.HTML
}

// WritePage renders the three maps inline into one HTML page with the
// shared tooltip element. Interactive pages include the script that sends
// pointer events to the session API.
func WritePage(w io.Writer, s *Scene, interactive bool) error {
	data := pageData{
		Title:       "Massachusetts towns: population and inequality",
		Interactive: interactive,
		Script:      template.JS(appScript),
	}
	for _, kind := range model.AllMapKinds() {
		b, err := SVG(s, kind)
		if err != nil {
			return err
		}
		data.Maps = append(data.Maps, pageMap{
			Kind:      kind,
			Container: kind.Container(),
			Caption:   captions[kind],
			SVG:       template.HTML(inlineSVG(b)),
		})
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return eris.Wrap(err, "render: execute page template")
	}
	return nil
}

// inlineSVG drops the XML prolog so the document can sit inside HTML.
func inlineSVG(b []byte) []byte {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		return b[i:]
	}
	return b
}
