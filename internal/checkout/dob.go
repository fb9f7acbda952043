package checkout

import (
	"fmt"
	"strings"

	"github.com/vedaro/shopdesk/internal/shared"
)

// FormatDOB progressively masks digit input as DD, DD/MM, DD/MM/YYYY.
// Non-digits are stripped and input beyond eight digits is truncated.
func FormatDOB(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 8 {
				break
			}
		}
	}
	d := digits.String()
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 4:
		return d[:2] + "/" + d[2:]
	default:
		return d[:2] + "/" + d[2:4] + "/" + d[4:]
	}
}

// DOBToISO rearranges a fully masked DD/MM/YYYY date into ISO YYYY-MM-DD for
// submission. Anything shorter or longer than the full mask is a validation
// failure; an empty date is not (DOB is optional).
func DOBToISO(masked string) (string, error) {
	if masked == "" {
		return "", nil
	}
	if len(masked) != 10 || masked[2] != '/' || masked[5] != '/' {
		return "", fmt.Errorf("%w: date of birth must be DD/MM/YYYY", shared.ErrValidation)
	}
	day, month, year := masked[0:2], masked[3:5], masked[6:10]
	for _, part := range []string{day, month, year} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return "", fmt.Errorf("%w: date of birth must be DD/MM/YYYY", shared.ErrValidation)
			}
		}
	}
	return year + "-" + month + "-" + day, nil
}

// DOBFromISO re-displays a stored ISO date in the mask format. Used when a
// resolved customer pre-fills the draft.
func DOBFromISO(iso string) string {
	if len(iso) != 10 || iso[4] != '-' || iso[7] != '-' {
		return ""
	}
	return iso[8:10] + "/" + iso[5:7] + "/" + iso[0:4]
}
