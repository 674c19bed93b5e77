package grading

import (
	"math"
	"strconv"
	"strings"
)

// numericStrategy accepts a response that fails the wrapped strategy when
// both sides lead with a number and the numbers agree within tol. Examples:
//
//	key "30", response "30.0"         // equal
//	key "95 minutes", response "95"   // leading numbers equal
//	key "3.14", response "3.1416"     // with tol >= 0.0016
type numericStrategy struct {
	inner Strategy
	tol   float64
}

func (s numericStrategy) Match(response, key string) bool {
	if s.inner.Match(response, key) {
		return true
	}
	rv, rOK := parseFloatLoose(response)
	kv, kOK := parseFloatLoose(key)
	if !rOK || !kOK {
		return false
	}
	return math.Abs(rv-kv) <= s.tol
}

// parseFloatLoose reads the whole string, or failing that its first field,
// as a number. Thousands separators are ignored.
func parseFloatLoose(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
