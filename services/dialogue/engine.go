package dialogue

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"charterhub/models"
	"charterhub/services/dialogue/slots"
)

// FullFlow walks every slot of the trip request.
var FullFlow = []models.DialogueStep{
	models.StepTripType,
	models.StepPassengerCount,
	models.StepDate,
	models.StepPickup,
	models.StepDestination,
	models.StepTripFormat,
	models.StepTiming,
	models.StepRequirements,
	models.StepEmail,
}

// ShortFlow skips from destination straight to the identity-gated email
// step; used where most callers arrive already authenticated.
var ShortFlow = []models.DialogueStep{
	models.StepTripType,
	models.StepPassengerCount,
	models.StepDate,
	models.StepPickup,
	models.StepDestination,
	models.StepEmail,
}

// FlowByName resolves the configured flow name; unknown names fall back to
// the full flow.
func FlowByName(name string) []models.DialogueStep {
	if name == "short" {
		return ShortFlow
	}
	return FullFlow
}

// DefaultConversationService implements ConversationService over a
// SessionStore and a DraftRecorder.
type DefaultConversationService struct {
	Store    SessionStore
	Recorder DraftRecorder
	Flow     []models.DialogueStep
	TTL      time.Duration
	Source   string
	Logger   *zap.Logger

	// Per-session locks: messages within one session are processed
	// strictly in arrival order; concurrent sessions are independent.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationService wires a conversation engine with the given flow.
func NewConversationService(store SessionStore, recorder DraftRecorder, flow []models.DialogueStep, ttl time.Duration, logger *zap.Logger) *DefaultConversationService {
	return &DefaultConversationService{
		Store:    store,
		Recorder: recorder,
		Flow:     flow,
		TTL:      ttl,
		Source:   "webchat",
		Logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *DefaultConversationService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// StartConversation creates a new session in its initial state and returns
// the first prompt.
func (s *DefaultConversationService) StartConversation(ctx context.Context) (*StartResult, error) {
	session := &models.DialogueSession{
		SessionID: uuid.New().String(),
		Step:      s.Flow[0],
		CreatedAt: time.Now(),
	}
	if err := s.Store.Put(ctx, session, s.TTL); err != nil {
		return nil, err
	}
	return &StartResult{
		SessionID: session.SessionID,
		Prompt:    prompts[session.Step],
	}, nil
}

// SendMessage advances the session with one user message.
func (s *DefaultConversationService) SendMessage(ctx context.Context, sessionID, text string, caller *models.CallerIdentity) (*MessageResult, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.SessionID != sessionID {
		return nil, NewInvalidSessionError(sessionID)
	}

	// Re-entering a finished conversation must not create a second record.
	if session.Completed {
		return &MessageResult{
			Reply:     alreadyCompleteReply,
			Complete:  true,
			RequestID: session.CompletedRequestID,
		}, nil
	}

	if session.AwaitingMultiDayConfirm {
		return s.handleMultiDayConfirm(ctx, session, text)
	}

	return s.handleStep(ctx, session, text, caller)
}

// handleMultiDayConfirm interprets the message as a yes/no answer to the
// multi-day question. Either answer clears the flag and re-prompts for a
// single date; the state stays on Date.
func (s *DefaultConversationService) handleMultiDayConfirm(ctx context.Context, session *models.DialogueSession, text string) (*MessageResult, error) {
	session.AwaitingMultiDayConfirm = false

	reply := multiDayDeclinedReply
	if slots.Affirmative(text) {
		reply = multiDayRetryPrompt
	}
	if err := s.Store.Put(ctx, session, s.TTL); err != nil {
		return nil, err
	}
	return &MessageResult{Reply: reply}, nil
}

func (s *DefaultConversationService) handleStep(ctx context.Context, session *models.DialogueSession, text string, caller *models.CallerIdentity) (*MessageResult, error) {
	trimmed := strings.TrimSpace(text)

	switch session.Step {
	case models.StepTripType:
		if trimmed == "" {
			return s.reprompt(ctx, session)
		}
		session.Partial.TripType = &trimmed

	case models.StepPassengerCount:
		count, ok := slots.PassengerCount(text)
		if !ok {
			return s.reprompt(ctx, session)
		}
		session.Partial.Passengers = &count

	case models.StepDate:
		result := slots.Date(text)
		if result.MultiDay {
			session.AwaitingMultiDayConfirm = true
			if err := s.Store.Put(ctx, session, s.TTL); err != nil {
				return nil, err
			}
			return &MessageResult{Reply: multiDayConfirmPrompt}, nil
		}
		if result.Confidence == models.ConfidenceLow {
			return s.reprompt(ctx, session)
		}
		session.Partial.Date = &models.TripDate{
			Raw:        result.Raw,
			Resolved:   result.Resolved,
			Confidence: result.Confidence,
		}

	case models.StepPickup:
		if trimmed == "" {
			return s.reprompt(ctx, session)
		}
		loc := slots.Location(text)
		session.Partial.Pickup = &loc

	case models.StepDestination:
		if trimmed == "" {
			return s.reprompt(ctx, session)
		}
		loc := slots.Location(text)
		session.Partial.Destination = &loc

	case models.StepTripFormat:
		format, ok := slots.TripFormat(text)
		if !ok {
			return s.reprompt(ctx, session)
		}
		session.Partial.Format = &format

	case models.StepTiming:
		if trimmed == "" {
			return s.reprompt(ctx, session)
		}
		timing := parseTiming(text)
		session.Partial.Timing = &timing

	case models.StepRequirements:
		session.Partial.Requirements = slots.Requirements(text)

	case models.StepEmail:
		email, ok := slots.Email(text)
		if !ok {
			return s.reprompt(ctx, session)
		}
		session.Partial.Email = &email

	default:
		// Unknown/out-of-range step: reply generically, mutate nothing.
		return &MessageResult{Reply: unknownStepReply}, nil
	}

	next := s.nextStep(session.Step)
	// Authenticated callers skip the email slot: the finished request
	// inherits identity from the caller, not from further chat.
	if next == models.StepEmail && caller != nil {
		next = models.StepComplete
	}
	session.Step = next

	if next == models.StepComplete {
		return s.complete(ctx, session, caller)
	}

	if err := s.Store.Put(ctx, session, s.TTL); err != nil {
		return nil, err
	}
	return &MessageResult{Reply: prompts[next]}, nil
}

// reprompt returns the clarifying question for the current step without
// advancing it. The session is re-written only to refresh its TTL.
func (s *DefaultConversationService) reprompt(ctx context.Context, session *models.DialogueSession) (*MessageResult, error) {
	reply, ok := clarifications[session.Step]
	if !ok {
		reply = prompts[session.Step]
	}
	if err := s.Store.Put(ctx, session, s.TTL); err != nil {
		return nil, err
	}
	return &MessageResult{Reply: reply}, nil
}

func (s *DefaultConversationService) nextStep(current models.DialogueStep) models.DialogueStep {
	for i, step := range s.Flow {
		if step == current {
			if i+1 < len(s.Flow) {
				return s.Flow[i+1]
			}
			return models.StepComplete
		}
	}
	return models.StepComplete
}

// complete assembles the finished request exactly once and hands it to the
// lifecycle manager as a new Draft record.
func (s *DefaultConversationService) complete(ctx context.Context, session *models.DialogueSession, caller *models.CallerIdentity) (*MessageResult, error) {
	request := session.Partial.Finalize(s.Source, time.Now())
	if caller != nil {
		request.Customer = models.Customer{
			FirstName: caller.FirstName,
			LastName:  caller.LastName,
			Phone:     caller.Phone,
			Email:     caller.Email,
		}
	}

	record := &models.CharterRequestRecord{
		SessionID: session.SessionID,
		Request:   request,
		Status:    models.StatusDraft,
	}
	if caller != nil {
		record.RequesterID = caller.UserID
	}
	if session.Partial.Email != nil {
		record.CapturedEmail = *session.Partial.Email
	}

	created, err := s.Recorder.CreateDraft(ctx, record)
	if err != nil {
		// The user still sees completion; the loss is surfaced to
		// operators for manual recovery, not retried here.
		s.Logger.Error("failed to persist finished request, manual recovery required",
			zap.String("sessionId", session.SessionID),
			zap.Error(err),
		)
	} else {
		session.CompletedRequestID = created.ID
	}

	session.Completed = true
	session.Step = models.StepComplete
	if err := s.Store.Put(ctx, session, s.TTL); err != nil {
		return nil, err
	}

	return &MessageResult{
		Reply:     completionReply,
		Complete:  true,
		Request:   &request,
		RequestID: session.CompletedRequestID,
	}, nil
}
