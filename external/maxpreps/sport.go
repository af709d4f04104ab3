package maxpreps

import (
	"fmt"
	"strings"
)

// CompoundSport resolves a compound sport name ("volleyball-girls") into the
// base sport, the display gender, and the scoreboard URL path segment.
//
// The path mapping is intentionally asymmetric: boys variants carry an extra
// "/boys" segment while girls variants use the bare sport path. That is how
// the provider routes its scoreboards, so the table stays as-is even though
// it looks lopsided.
type CompoundSport struct {
	Name   string
	Sport  string
	Gender string
	Path   string
}

var compoundSports = map[string]CompoundSport{
	"football":         {Name: "football", Sport: "football", Gender: "Male", Path: "football"},
	"volleyball":       {Name: "volleyball", Sport: "volleyball", Gender: "Female", Path: "volleyball"},
	"volleyball-girls": {Name: "volleyball-girls", Sport: "volleyball", Gender: "Female", Path: "volleyball"},
	"volleyball-boys":  {Name: "volleyball-boys", Sport: "volleyball", Gender: "Male", Path: "volleyball/boys"},
	"basketball-girls": {Name: "basketball-girls", Sport: "basketball", Gender: "Female", Path: "basketball"},
	"basketball-boys":  {Name: "basketball-boys", Sport: "basketball", Gender: "Male", Path: "basketball/boys"},
}

// ParseCompoundSport resolves a sport name from the known table, deriving
// unknown compounds from their -girls/-boys suffix.
func ParseCompoundSport(raw string) (CompoundSport, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return CompoundSport{}, fmt.Errorf("sport is required")
	}
	if known, ok := compoundSports[name]; ok {
		return known, nil
	}

	base := name
	gender := "Male"
	path := base
	switch {
	case strings.HasSuffix(name, "-girls"):
		base = strings.TrimSuffix(name, "-girls")
		gender = "Female"
		path = base
	case strings.HasSuffix(name, "-boys"):
		base = strings.TrimSuffix(name, "-boys")
		path = base + "/boys"
	}
	if base == "" {
		return CompoundSport{}, fmt.Errorf("invalid sport %q", raw)
	}

	return CompoundSport{Name: name, Sport: base, Gender: gender, Path: path}, nil
}
