package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/parser"
)

var (
	// a range such as "20-30 mins" counts its lower bound
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*(?:-|–|to)\s*\d+(?:\.\d+)?)?\s*hour`)
	minutesPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*(?:-|–|to)\s*\d+(?:\.\d+)?)?\s*(?:minute|min)s?`)
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseMinutes reads a free-text duration such as "1.5 hours" or
// "about 20-30 mins". Hour and minute mentions are summed and rounded to whole
// minutes; when neither is present the first bare number is taken as minutes.
// ok is false when the text holds no digits.
func ParseMinutes(s string) (int, bool) {
	low := strings.ToLower(s)

	total := 0.0
	for _, m := range hoursPattern.FindAllStringSubmatch(low, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			total += n * 60
		}
	}
	for _, m := range minutesPattern.FindAllStringSubmatch(low, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			total += n
		}
	}
	if total > 0 {
		return int(math.Round(total)), true
	}

	first := numberPattern.FindString(low)
	if first == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(n)), true
}

// MinutesFromValue accepts either a JSON number or a duration string
func MinutesFromValue(v any) (int, bool) {
	if n, ok := parser.Int(v); ok {
		return n, true
	}
	if s, ok := parser.String(v); ok {
		return ParseMinutes(s)
	}
	return 0, false
}
