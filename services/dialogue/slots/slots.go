// Package slots holds the pure slot extractors the dialogue engine runs
// against each user utterance. Extractors have no side effects: raw text in,
// typed value plus a validity/confidence signal out.
package slots

import (
	"regexp"
	"strconv"
	"strings"

	"charterhub/models"
)

var (
	isoDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	smallNumRe = regexp.MustCompile(`\b\d{1,2}(st|nd|rd|th)?\b`)
	intRe      = regexp.MustCompile(`\d+`)

	numericRangeRe = regexp.MustCompile(`\d\s*(-|to|thru)\s*\d`)
	dayCountRe     = regexp.MustCompile(`\d+\s*days?\b`)

	oneWayRe = regexp.MustCompile(`(?i)one[\s-]?way|single[\s-]?way|one\s+direction`)
	returnRe = regexp.MustCompile(`(?i)round\s*trip|same\s*day|returning|return|\bback\b`)

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s]+$`)
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "oct", "nov", "dec",
}

// DateResult is the outcome of parsing a date answer.
type DateResult struct {
	Raw        string
	Resolved   string // "YYYY-MM-DD" when confidence is high, else empty
	Confidence models.Confidence
	// MultiDay flags answers that describe a span rather than a single
	// day; the engine must confirm before accepting the date.
	MultiDay bool
}

// Date parses a date answer. Exact YYYY-MM-DD input resolves with high
// confidence; a month name plus a 1-2 digit day yields medium confidence
// with resolution deferred; anything else is low confidence.
func Date(text string) DateResult {
	trimmed := strings.TrimSpace(text)
	if isoDateRe.MatchString(trimmed) {
		return DateResult{Raw: trimmed, Resolved: trimmed, Confidence: models.ConfidenceHigh}
	}

	res := DateResult{Raw: trimmed, Confidence: models.ConfidenceLow, MultiDay: multiDay(trimmed)}

	lower := strings.ToLower(trimmed)
	hasMonth := false
	for _, m := range monthNames {
		if containsWord(lower, m) {
			hasMonth = true
			break
		}
	}
	if hasMonth && smallNumRe.MatchString(lower) {
		res.Confidence = models.ConfidenceMedium
	}
	return res
}

// multiDay reports whether the text looks like a multi-day span: numeric
// ranges ("3-5", "3 to 5", "3 thru 5"), "N day(s)", or overnight wording.
func multiDay(text string) bool {
	lower := strings.ToLower(text)
	if numericRangeRe.MatchString(lower) || dayCountRe.MatchString(lower) {
		return true
	}
	return strings.Contains(lower, "overnight") ||
		strings.Contains(lower, "multi-day") ||
		strings.Contains(lower, "multiple days")
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isAlpha(text[start-1])
		afterOK := end == len(text) || !isAlpha(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// PassengerCount returns the first integer found in the text. Inputs with
// no digits, or a value of zero, are invalid and must be re-prompted.
func PassengerCount(text string) (int, bool) {
	match := intRe.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Location captures a pickup or destination answer verbatim. Confidence is
// always low at capture time; geocoding happens in the admin workflow.
func Location(text string) models.Location {
	trimmed := strings.TrimSpace(text)
	return models.Location{
		Raw:        trimmed,
		Name:       trimmed,
		Confidence: models.ConfidenceLow,
	}
}

// TripFormat classifies the journey shape. Unclear input must cause a
// re-prompt, never a silent default.
func TripFormat(text string) (models.TripFormat, bool) {
	switch {
	case oneWayRe.MatchString(text):
		return models.FormatOneWay, true
	case returnRe.MatchString(text):
		return models.FormatReturnSameDay, true
	default:
		return "", false
	}
}

var noRequirements = map[string]bool{
	"none": true, "no": true, "n/a": true, "na": true, "nothing": true,
}

// Requirements splits a free-text requirements answer into trimmed,
// non-empty items. Plain refusals yield an empty list.
func Requirements(text string) []string {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if noRequirements[trimmed] {
		return []string{}
	}

	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Email validates an address against a deliberately permissive shape:
// something@something.something, no spaces, single '@'.
func Email(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !emailRe.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true,
}

// Affirmative reports whether the text is a yes-style confirmation.
func Affirmative(text string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(text))]
}
