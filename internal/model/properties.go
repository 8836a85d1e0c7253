package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// TownColumns names the boundary properties that carry town attributes.
type TownColumns struct {
	Name    string
	Pop1980 string
	Pop2010 string
}

// DefaultTownColumns matches the MassGIS town survey attribute names.
func DefaultTownColumns() TownColumns {
	return TownColumns{Name: "TOWN", Pop1980: "POP1980", Pop2010: "POP2010"}
}

// TownFromProperties builds a Town from a feature's id, property bag and
// geometry.
func TownFromProperties(id string, props map[string]any, cols TownColumns, g *geom.MultiPolygon) Town {
	return Town{
		ID:       id,
		Name:     propString(props[cols.Name]),
		Pop1980:  ParseCount(props[cols.Pop1980]),
		Pop2010:  ParseCount(props[cols.Pop2010]),
		Geometry: g,
	}
}

// ParseCount converts a decoded property value to a Count. JSON numbers,
// numeric strings and Go integers are accepted; anything else is missing.
func ParseCount(v any) Count {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Count{}
		}
		return NewCount(int64(math.Round(n)))
	case int:
		return NewCount(int64(n))
	case int64:
		return NewCount(n)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return Count{}
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewCount(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ParseCount(f)
		}
		return Count{}
	default:
		return Count{}
	}
}

func propString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return fmt.Sprint(s)
	}
}
