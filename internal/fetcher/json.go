package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONObject decodes one JSON document from r into a T. Anything
// after the document other than whitespace is an error, which catches
// concatenated or truncated downloads.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	dec := json.NewDecoder(r)
	var obj T
	if err := dec.Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	if dec.More() {
		return nil, eris.New("json: trailing data after object")
	}
	return &obj, nil
}
