package dialogue

import (
	"context"

	"charterhub/models"
)

// StartResult is returned when a new conversation is opened.
type StartResult struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"promptText"`
}

// MessageResult is the engine's answer to one user message. Request and
// RequestID are present only on the exchange that reaches completion.
type MessageResult struct {
	Reply     string              `json:"replyText"`
	Complete  bool                `json:"isComplete"`
	Request   *models.TripRequest `json:"finishedRequest,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

// ConversationService drives the slot-filling dialogue. Caller identity is
// always an explicit parameter so the engine stays a pure function of its
// inputs.
type ConversationService interface {
	StartConversation(ctx context.Context) (*StartResult, error)
	SendMessage(ctx context.Context, sessionID, text string, caller *models.CallerIdentity) (*MessageResult, error)
}

// DraftRecorder hands a finished request off for persistence as a new
// Draft record. Implemented by the lifecycle service.
type DraftRecorder interface {
	CreateDraft(ctx context.Context, record *models.CharterRequestRecord) (*models.CharterRequestRecord, error)
}
