package font

import (
	"fmt"
	"strconv"
	"strings"
)

// Weight represents a numeric font weight.
type Weight int

const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemibold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

var weightNames = map[Weight]string{
	WeightThin:       "thin",
	WeightExtraLight: "extra_light",
	WeightLight:      "light",
	WeightNormal:     "normal",
	WeightMedium:     "medium",
	WeightSemibold:   "semibold",
	WeightBold:       "bold",
	WeightExtraBold:  "extra_bold",
	WeightBlack:      "black",
}

// String returns a human-readable representation of the font weight.
func (w Weight) String() string {
	if name, ok := weightNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Weight(%d)", int(w))
}

// Valid reports whether w is in the range 1..1000.
func (w Weight) Valid() bool {
	return w >= 1 && w <= 1000
}

// ParseWeight parses a weight name ("bold", "extra-light") or number ("700").
// An empty string is WeightNormal.
func ParseWeight(s string) (Weight, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return WeightNormal, nil
	}
	s = strings.ReplaceAll(s, "-", "_")
	for w, name := range weightNames {
		if name == s {
			return w, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Weight(n).Valid() {
		return 0, fmt.Errorf("font: invalid weight %q", s)
	}
	return Weight(n), nil
}

// Style represents normal, italic or oblique text.
type Style int

const (
	StyleNormal Style = iota
	StyleItalic
	StyleOblique
)

// String returns a human-readable representation of the font style.
func (s Style) String() string {
	switch s {
	case StyleNormal:
		return "normal"
	case StyleItalic:
		return "italic"
	case StyleOblique:
		return "oblique"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle parses a style name. An empty string is StyleNormal.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return StyleNormal, nil
	case "italic":
		return StyleItalic, nil
	case "oblique":
		return StyleOblique, nil
	default:
		return 0, fmt.Errorf("font: invalid style %q", s)
	}
}
