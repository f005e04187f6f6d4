package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/voyago/travel-planner-backend/internal/search/types"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?$`)

// parseISODuration converts an ISO 8601 duration like "PT7H30M" to minutes.
// Returns 0 for anything it cannot parse, which downstream ranking treats
// as unknown.
func parseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes
}

// parseAmount converts a provider's string-typed price to a float
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparsable price %q", types.ErrMissingRequiredField, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative price %q", types.ErrMissingRequiredField, s)
	}
	return v, nil
}

// orUnknown substitutes the sentinel for an absent optional field
func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.Unknown
	}
	return s
}
