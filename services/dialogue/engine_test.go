package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"charterhub/models"
)

// fakeRecorder captures CreateDraft calls in place of the lifecycle service.
type fakeRecorder struct {
	mu      sync.Mutex
	records []*models.CharterRequestRecord
	fail    bool
}

func (r *fakeRecorder) CreateDraft(ctx context.Context, record *models.CharterRequestRecord) (*models.CharterRequestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, context.DeadlineExceeded
	}
	record.ID = "req-" + record.SessionID
	r.records = append(r.records, record)
	return record, nil
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func newTestEngine(t *testing.T, flow []models.DialogueStep, recorder *fakeRecorder) *DefaultConversationService {
	t.Helper()
	return NewConversationService(NewMemorySessionStore(), recorder, flow, time.Hour, zap.NewNop())
}

func send(t *testing.T, engine *DefaultConversationService, sessionID, text string, caller *models.CallerIdentity) *MessageResult {
	t.Helper()
	result, err := engine.SendMessage(context.Background(), sessionID, text, caller)
	if err != nil {
		t.Fatalf("SendMessage(%q) failed: %v", text, err)
	}
	return result
}

func TestStartConversation(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})

	start, err := engine.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("StartConversation failed: %v", err)
	}
	if start.SessionID == "" {
		t.Error("expected a fresh session id")
	}
	if !strings.Contains(strings.ToLower(start.Prompt), "trip") {
		t.Errorf("expected a trip-type prompt, got %q", start.Prompt)
	}
}

func TestHappyPathAdvancesSteps(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID

	send(t, engine, id, "School excursion", nil)

	// PassengerCount step: a bare number advances to Date.
	result := send(t, engine, id, "12", nil)
	if !strings.Contains(strings.ToLower(result.Reply), "date") {
		t.Errorf("expected a date prompt after passenger count, got %q", result.Reply)
	}

	// An exact ISO date advances to Pickup with high confidence.
	result = send(t, engine, id, "2025-03-10", nil)
	if !strings.Contains(strings.ToLower(result.Reply), "pick") {
		t.Errorf("expected a pickup prompt after date, got %q", result.Reply)
	}

	session, err := engine.Store.Get(ctx, id)
	if err != nil || session == nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if session.Partial.Date == nil || session.Partial.Date.Confidence != models.ConfidenceHigh {
		t.Errorf("expected high-confidence date in session, got %+v", session.Partial.Date)
	}
	if session.Partial.Date.Resolved != "2025-03-10" {
		t.Errorf("resolved date = %q, want 2025-03-10", session.Partial.Date.Resolved)
	}
}

func TestInvalidInputDoesNotAdvance(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	send(t, engine, id, "Wedding transfer", nil)

	// Non-numeric passenger answers re-prompt without advancing.
	result := send(t, engine, id, "a few of us", nil)
	if result.Complete {
		t.Error("isComplete should be false on a re-prompt")
	}
	session, _ := engine.Store.Get(ctx, id)
	if session.Step != models.StepPassengerCount {
		t.Errorf("step = %q, want passenger_count (no advance)", session.Step)
	}
	if session.Partial.Passengers != nil {
		t.Error("no slot should be written on invalid input")
	}
}

func TestTripFormatUnclearReasks(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	for _, msg := range []string{"School trip", "20", "2025-06-01", "Brisbane", "Gold Coast"} {
		send(t, engine, id, msg, nil)
	}

	result := send(t, engine, id, "hmm not sure", nil)
	if !strings.Contains(strings.ToLower(result.Reply), "one-way") {
		t.Errorf("expected the trip-format question again, got %q", result.Reply)
	}
	session, _ := engine.Store.Get(ctx, id)
	if session.Step != models.StepTripFormat {
		t.Errorf("step = %q, want trip_format", session.Step)
	}
}

func TestMultiDayConfirmationLoop(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	send(t, engine, id, "Sports team", nil)
	send(t, engine, id, "15", nil)

	// A span answer sets the confirmation flag and re-asks.
	result := send(t, engine, id, "3 to 5 days", nil)
	if !strings.Contains(strings.ToLower(result.Reply), "single-day") && !strings.Contains(strings.ToLower(result.Reply), "one specific day") {
		t.Errorf("expected the multi-day confirmation question, got %q", result.Reply)
	}
	session, _ := engine.Store.Get(ctx, id)
	if !session.AwaitingMultiDayConfirm {
		t.Fatal("expected AwaitingMultiDayConfirm to be set")
	}
	if session.Step != models.StepDate {
		t.Errorf("step = %q, want date (no advance)", session.Step)
	}

	// "no" clears the flag, explains, and stays on Date.
	result = send(t, engine, id, "no", nil)
	session, _ = engine.Store.Get(ctx, id)
	if session.AwaitingMultiDayConfirm {
		t.Error("flag should be cleared after a negative answer")
	}
	if session.Step != models.StepDate {
		t.Errorf("step = %q, want date", session.Step)
	}
	if !strings.Contains(strings.ToLower(result.Reply), "single-day") {
		t.Errorf("expected the single-day explanation, got %q", result.Reply)
	}

	// An affirmative answer after another span also just retries the date.
	send(t, engine, id, "overnight", nil)
	result = send(t, engine, id, "yes", nil)
	session, _ = engine.Store.Get(ctx, id)
	if session.AwaitingMultiDayConfirm || session.Step != models.StepDate {
		t.Errorf("expected a cleared flag on the date step, got flag=%v step=%q", session.AwaitingMultiDayConfirm, session.Step)
	}
	if !strings.Contains(strings.ToLower(result.Reply), "date") {
		t.Errorf("expected a date re-prompt, got %q", result.Reply)
	}

	// A clean date then proceeds.
	send(t, engine, id, "2025-07-04", nil)
	session, _ = engine.Store.Get(ctx, id)
	if session.Step != models.StepPickup {
		t.Errorf("step = %q, want pickup after a clean date", session.Step)
	}
}

func TestInvalidEmailReasks(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	for _, msg := range []string{"Corporate outing", "30", "2025-09-20", "Sydney CBD", "Hunter Valley", "return same day", "8am out, back by 6pm", "none"} {
		send(t, engine, id, msg, nil)
	}

	result := send(t, engine, id, "notaproperemail", nil)
	if result.Complete {
		t.Error("isComplete should be false on an invalid email")
	}
	if !strings.Contains(strings.ToLower(result.Reply), "email") {
		t.Errorf("expected an email re-ask, got %q", result.Reply)
	}
	session, _ := engine.Store.Get(ctx, id)
	if session.Step != models.StepEmail {
		t.Errorf("step = %q, want email", session.Step)
	}
}

func TestFullHappyPathCompletes(t *testing.T) {
	recorder := &fakeRecorder{}
	engine := newTestEngine(t, FullFlow, recorder)
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	messages := []string{
		"School excursion",
		"12",
		"2025-03-10",
		"Brisbane CBD",
		"Gold Coast",
		"return same day",
		"8am pickup, back by 4pm",
		"wheelchair access, trailer",
		"jane@example.com",
	}

	var last *MessageResult
	for _, msg := range messages {
		last = send(t, engine, id, msg, nil)
	}

	if !last.Complete {
		t.Fatal("expected isComplete after the final message")
	}
	if last.Request == nil {
		t.Fatal("expected finishedRequest on the completing call")
	}

	req := last.Request
	if req.Meta.Source != "webchat" {
		t.Errorf("meta.source = %q, want webchat", req.Meta.Source)
	}
	if req.Trip.Type == "" || req.Trip.Passengers != 12 {
		t.Errorf("trip fields not populated: %+v", req.Trip)
	}
	if req.Trip.Date.Resolved != "2025-03-10" {
		t.Errorf("resolved date = %q", req.Trip.Date.Resolved)
	}
	if req.Trip.Pickup.Name == "" || req.Trip.Destination.Name == "" {
		t.Error("locations not populated")
	}
	if req.Trip.Format != models.FormatReturnSameDay {
		t.Errorf("format = %q, want return_same_day", req.Trip.Format)
	}
	if req.Trip.Requirements == nil || len(req.Trip.Requirements) != 2 {
		t.Errorf("requirements = %v", req.Trip.Requirements)
	}
	if req.Customer.Email != "jane@example.com" {
		t.Errorf("customer email = %q", req.Customer.Email)
	}

	if recorder.count() != 1 {
		t.Fatalf("expected exactly one draft record, got %d", recorder.count())
	}
	record := recorder.records[0]
	if record.Status != models.StatusDraft {
		t.Errorf("record status = %q, want Draft", record.Status)
	}
	if record.SessionID != id {
		t.Errorf("record session id = %q, want %q", record.SessionID, id)
	}
	if record.CapturedEmail != "jane@example.com" {
		t.Errorf("captured email = %q", record.CapturedEmail)
	}
}

func TestCompletionIsIdempotent(t *testing.T) {
	recorder := &fakeRecorder{}
	engine := newTestEngine(t, ShortFlow, recorder)
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	for _, msg := range []string{"Winery tour", "9", "2025-05-02", "Adelaide", "Barossa Valley"} {
		send(t, engine, id, msg, nil)
	}

	first := send(t, engine, id, "sam@example.com", nil)
	if !first.Complete {
		t.Fatal("expected completion")
	}

	// A duplicate of the terminal message must not create a second record.
	second := send(t, engine, id, "sam@example.com", nil)
	if !second.Complete {
		t.Error("repeat call should still report completion")
	}
	if second.RequestID != first.RequestID {
		t.Errorf("repeat call returned request id %q, want %q", second.RequestID, first.RequestID)
	}
	if recorder.count() != 1 {
		t.Fatalf("expected one record after duplicate message, got %d", recorder.count())
	}
}

func TestAuthenticatedCallerSkipsEmail(t *testing.T) {
	recorder := &fakeRecorder{}
	engine := newTestEngine(t, ShortFlow, recorder)
	ctx := context.Background()
	caller := &models.CallerIdentity{
		UserID:    "user-1",
		Email:     "pat@example.com",
		FirstName: "Pat",
		LastName:  "Reilly",
	}

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	for _, msg := range []string{"Team away game", "22", "2025-08-16", "Melbourne", "Geelong"} {
		send(t, engine, id, msg, caller)
	}

	session, _ := engine.Store.Get(ctx, id)
	if !session.Completed {
		t.Fatal("expected completion right after destination for an authenticated caller")
	}
	if recorder.count() != 1 {
		t.Fatalf("expected one record, got %d", recorder.count())
	}
	record := recorder.records[0]
	if record.RequesterID != "user-1" {
		t.Errorf("requester id = %q, want user-1", record.RequesterID)
	}
	if record.Request.Customer.Email != "pat@example.com" {
		t.Errorf("customer email = %q, want inherited from identity", record.Request.Customer.Email)
	}
}

func TestUnknownSessionIsFatal(t *testing.T) {
	engine := newTestEngine(t, FullFlow, &fakeRecorder{})

	_, err := engine.SendMessage(context.Background(), "no-such-session", "hello", nil)
	if err == nil {
		t.Fatal("expected an invalid-session error")
	}
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("expected *SessionError, got %T", err)
	}
}

func TestPersistenceFailureStillCompletes(t *testing.T) {
	recorder := &fakeRecorder{fail: true}
	engine := newTestEngine(t, ShortFlow, recorder)
	ctx := context.Background()

	start, _ := engine.StartConversation(ctx)
	id := start.SessionID
	for _, msg := range []string{"Day trip", "5", "2025-04-01", "Perth", "Fremantle"} {
		send(t, engine, id, msg, nil)
	}

	result := send(t, engine, id, "lee@example.com", nil)
	if !result.Complete {
		t.Error("the user should still see completion when persistence fails")
	}
	if result.RequestID != "" {
		t.Errorf("request id should be empty on persistence failure, got %q", result.RequestID)
	}
}
