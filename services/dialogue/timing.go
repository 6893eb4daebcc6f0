package dialogue

import (
	"regexp"

	"charterhub/models"
)

var timeTokenRe = regexp.MustCompile(`(?i)\b\d{1,2}([:.]\d{2})?\s*(am|pm)?\b`)

// parseTiming keeps the raw answer and picks out up to two time-looking
// tokens: the first as pickup time, the second as return time.
func parseTiming(text string) models.Timing {
	timing := models.Timing{Raw: text}
	matches := timeTokenRe.FindAllString(text, 2)
	if len(matches) > 0 {
		timing.PickupTime = matches[0]
	}
	if len(matches) > 1 {
		timing.ReturnTime = matches[1]
	}
	return timing
}
