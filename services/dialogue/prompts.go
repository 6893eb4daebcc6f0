package dialogue

import "charterhub/models"

// prompts asked on entering each step.
var prompts = map[models.DialogueStep]string{
	models.StepTripType:       "What kind of trip are you planning? (e.g., school excursion, wedding, sports team, corporate)",
	models.StepPassengerCount: "How many passengers will be travelling?",
	models.StepDate:           "What date is the trip? A format like 2025-03-10 works best.",
	models.StepPickup:         "Where should the driver pick everyone up?",
	models.StepDestination:    "And where is the group headed?",
	models.StepTripFormat:     "Is this a one-way trip, or a return on the same day?",
	models.StepTiming:         "What time should pickup happen, and (if returning) what time is the trip back?",
	models.StepRequirements:   "Any special requirements? (wheelchair access, trailer, child seats...) Say 'none' if not.",
	models.StepEmail:          "Almost done! What's the best email address for your quotes?",
}

// clarifications returned when a slot extractor rejects the input; the
// state does not advance.
var clarifications = map[models.DialogueStep]string{
	models.StepPassengerCount: "I couldn't find a passenger count in that. How many people are travelling? Just a number is fine.",
	models.StepDate:           "I couldn't make out a date there. Could you give it like 2025-03-10, or e.g. '10 March'?",
	models.StepTripFormat:     "Sorry, I didn't catch that. Is it a one-way trip, or are you returning the same day?",
	models.StepEmail:          "That doesn't look like a valid email address. Could you double-check it?",
}

const (
	multiDayConfirmPrompt = "That sounds like it might span multiple days. We currently arrange single-day charters only — did you mean a trip on one specific day? (yes/no)"
	multiDayRetryPrompt   = "No problem. Which single date should we quote for? A format like 2025-03-10 works best."
	multiDayDeclinedReply = "We can only arrange single-day trips at the moment. If your trip fits in one day, what date would that be?"
	completionReply       = "That's everything we need! Your request is in — operators will start sending quotes shortly."
	alreadyCompleteReply  = "This conversation is already wrapped up — your request has been submitted."
	unknownStepReply      = "Sorry, I couldn't help with that."
)
