package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	operatorRepo "charterhub/database/repository/operator"
	quoteRepo "charterhub/database/repository/quote"
	requestRepo "charterhub/database/repository/request"
	"charterhub/models"
	"charterhub/services/notification"
)

type memRequestRepo struct {
	mu      sync.Mutex
	records map[string]*models.CharterRequestRecord
	nextID  int
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{records: make(map[string]*models.CharterRequestRecord)}
}

func (r *memRequestRepo) Create(ctx context.Context, record *models.CharterRequestRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == "" {
		r.nextID++
		record.ID = fmt.Sprintf("req-%d", r.nextID)
	}
	record.CreatedAt = time.Now()
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *memRequestRepo) GetByID(ctx context.Context, id string) (*models.CharterRequestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *memRequestRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CharterRequestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.SessionID == sessionID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, requestRepo.ErrNotFound
}

func (r *memRequestRepo) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.CharterRequestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CharterRequestRecord
	for _, record := range r.records {
		if record.Status == status {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memRequestRepo) UpdateStatus(ctx context.Context, id string, to models.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return requestRepo.ErrNotFound
	}
	record.Status = to
	record.UpdatedAt = time.Now()
	return nil
}

func (r *memRequestRepo) TransitionIf(ctx context.Context, id string, from, to models.RequestStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.Status != from {
		return false, nil
	}
	record.Status = to
	record.UpdatedAt = time.Now()
	return true, nil
}

func (r *memRequestRepo) SetQuoteDeadline(ctx context.Context, id string, deadline time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return requestRepo.ErrNotFound
	}
	record.QuoteDeadline = &deadline
	return nil
}

func (r *memRequestRepo) MarkDeadlineNotified(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok || record.DeadlineNotified {
		return false, nil
	}
	record.DeadlineNotified = true
	return true, nil
}

var _ requestRepo.CharterRequestRepository = (*memRequestRepo)(nil)

type memQuoteRepo struct {
	mu     sync.Mutex
	quotes []models.Quote
}

func (r *memQuoteRepo) Create(ctx context.Context, quote *models.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quote.ID == "" {
		quote.ID = fmt.Sprintf("quote-%d", len(r.quotes)+1)
	}
	quote.CreatedAt = time.Now()
	r.quotes = append(r.quotes, *quote)
	return nil
}

func (r *memQuoteRepo) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.quotes {
		if r.quotes[i].ID == id {
			copied := r.quotes[i]
			return &copied, nil
		}
	}
	return nil, quoteRepo.ErrNotFound
}

func (r *memQuoteRepo) ListByRequestID(ctx context.Context, requestID string) ([]models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Quote
	for _, q := range r.quotes {
		if q.RequestID == requestID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memQuoteRepo) CountByRequestID(ctx context.Context, requestID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, q := range r.quotes {
		if q.RequestID == requestID {
			count++
		}
	}
	return count, nil
}

func (r *memQuoteRepo) UpdateStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.quotes {
		if r.quotes[i].ID == id {
			r.quotes[i].Status = status
			return nil
		}
	}
	return quoteRepo.ErrNotFound
}

var _ quoteRepo.QuoteRepository = (*memQuoteRepo)(nil)

type memOperatorRepo struct {
	operators []models.Operator
}

func (r *memOperatorRepo) Create(ctx context.Context, op *models.Operator) error {
	r.operators = append(r.operators, *op)
	return nil
}

func (r *memOperatorRepo) GetByID(ctx context.Context, id string) (*models.Operator, error) {
	for _, op := range r.operators {
		if op.ID == id {
			copied := op
			return &copied, nil
		}
	}
	return nil, operatorRepo.ErrNotFound
}

func (r *memOperatorRepo) ListActive(ctx context.Context) ([]models.Operator, error) {
	var out []models.Operator
	for _, op := range r.operators {
		if op.Active {
			out = append(out, op)
		}
	}
	return out, nil
}

var _ operatorRepo.OperatorRepository = (*memOperatorRepo)(nil)

type captureDispatcher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (d *captureDispatcher) Dispatch(ctx context.Context, event notification.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) named(name string) []notification.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []notification.Event
	for _, e := range d.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService() (*DefaultLifecycleService, *memRequestRepo, *memQuoteRepo, *captureDispatcher) {
	requests := newMemRequestRepo()
	quotes := &memQuoteRepo{}
	dispatcher := &captureDispatcher{}
	svc := &DefaultLifecycleService{
		Repo:          requests,
		Quotes:        quotes,
		Operators:     &memOperatorRepo{},
		Dispatcher:    dispatcher,
		QuoteLinkBase: "https://quotes.example.com/r",
		DeadlineHours: 48,
		Logger:        zap.NewNop(),
	}
	return svc, requests, quotes, dispatcher
}

func ptrFloat(v float64) *float64 { return &v }

func geocodedRecord(sessionID string) *models.CharterRequestRecord {
	return &models.CharterRequestRecord{
		SessionID: sessionID,
		Status:    models.StatusDraft,
		Request: models.TripRequest{
			Trip: models.Trip{
				Type:       "school excursion",
				Passengers: 12,
				Pickup: models.Location{
					Name: "Brisbane CBD",
					Lat:  ptrFloat(-27.47),
					Lng:  ptrFloat(153.02),
				},
				Destination: models.Location{
					Name: "Gold Coast",
					Lat:  ptrFloat(-28.00),
					Lng:  ptrFloat(153.43),
				},
			},
		},
	}
}

func TestNextCoversDeclaredTransitions(t *testing.T) {
	cases := []struct {
		from  models.RequestStatus
		event TransitionEvent
		to    models.RequestStatus
	}{
		{models.StatusDraft, EventBeginReview, models.StatusUnderReview},
		{models.StatusDraft, EventPublish, models.StatusPublished},
		{models.StatusDraft, EventWithdraw, models.StatusCancelled},
		{models.StatusUnderReview, EventPublish, models.StatusPublished},
		{models.StatusUnderReview, EventWithdraw, models.StatusCancelled},
		{models.StatusPublished, EventFirstQuote, models.StatusQuotesReceived},
		{models.StatusPublished, EventWithdraw, models.StatusCancelled},
		{models.StatusQuotesReceived, EventAccept, models.StatusAccepted},
		{models.StatusQuotesReceived, EventWithdraw, models.StatusCancelled},
		{models.StatusAccepted, EventComplete, models.StatusCompleted},
		{models.StatusAccepted, EventWithdraw, models.StatusCancelled},
	}
	for _, tc := range cases {
		to, err := Next(tc.from, tc.event)
		if err != nil {
			t.Errorf("Next(%s, %s) unexpected error: %v", tc.from, tc.event, err)
			continue
		}
		if to != tc.to {
			t.Errorf("Next(%s, %s) = %s, want %s", tc.from, tc.event, to, tc.to)
		}
	}
}

func TestNextRejectsUndeclaredTransitions(t *testing.T) {
	cases := []struct {
		from  models.RequestStatus
		event TransitionEvent
	}{
		{models.StatusDraft, EventAccept},
		{models.StatusDraft, EventComplete},
		{models.StatusPublished, EventPublish},
		{models.StatusQuotesReceived, EventPublish},
		{models.StatusCompleted, EventWithdraw},
		{models.StatusCompleted, EventPublish},
		{models.StatusCancelled, EventWithdraw},
		{models.StatusCancelled, EventPublish},
	}
	for _, tc := range cases {
		if _, err := Next(tc.from, tc.event); err == nil {
			t.Errorf("Next(%s, %s) should have been rejected", tc.from, tc.event)
		}
	}
}

func TestTransitionErrorMessages(t *testing.T) {
	_, err := Next(models.StatusCompleted, EventWithdraw)
	var lifecycleErr *LifecycleError
	if !errors.As(err, &lifecycleErr) {
		t.Fatalf("expected *LifecycleError, got %T", err)
	}
	if lifecycleErr.Message != "already completed" {
		t.Errorf("message = %q, want \"already completed\"", lifecycleErr.Message)
	}

	_, err = Next(models.StatusCancelled, EventWithdraw)
	if !errors.As(err, &lifecycleErr) {
		t.Fatalf("expected *LifecycleError, got %T", err)
	}
	if lifecycleErr.Message != "already cancelled" {
		t.Errorf("message = %q, want \"already cancelled\"", lifecycleErr.Message)
	}
}

func TestCreateDraftIsIdempotentPerSession(t *testing.T) {
	svc, _, _, dispatcher := newTestService()
	ctx := context.Background()

	first, err := svc.CreateDraft(ctx, geocodedRecord("sess-1"))
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if first.Status != models.StatusDraft {
		t.Errorf("status = %q, want Draft", first.Status)
	}

	second, err := svc.CreateDraft(ctx, geocodedRecord("sess-1"))
	if err != nil {
		t.Fatalf("repeat CreateDraft failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat returned id %q, want %q", second.ID, first.ID)
	}
	if got := dispatcher.named(notification.EventRequestSubmitted); len(got) != 1 {
		t.Errorf("RequestSubmitted fired %d times, want 1", len(got))
	}
}

func TestPublishRequiresBothCoordinates(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name        string
		strip       func(*models.CharterRequestRecord)
		wantMessage string
	}{
		{
			name:        "pickup missing",
			strip:       func(r *models.CharterRequestRecord) { r.Request.Trip.Pickup.Lat = nil },
			wantMessage: "cannot publish: pickup missing coordinates",
		},
		{
			name:        "destination missing",
			strip:       func(r *models.CharterRequestRecord) { r.Request.Trip.Destination.Lng = nil },
			wantMessage: "cannot publish: destination missing coordinates",
		},
		{
			name: "both missing",
			strip: func(r *models.CharterRequestRecord) {
				r.Request.Trip.Pickup.Lat = nil
				r.Request.Trip.Destination.Lat = nil
			},
			wantMessage: "cannot publish: pickup and destination missing coordinates",
		},
	}

	for i, tc := range cases {
		record := geocodedRecord(fmt.Sprintf("sess-pub-%d", i))
		tc.strip(record)
		created, err := svc.CreateDraft(ctx, record)
		if err != nil {
			t.Fatalf("%s: CreateDraft failed: %v", tc.name, err)
		}

		err = svc.Publish(ctx, created.ID, nil)
		var lifecycleErr *LifecycleError
		if !errors.As(err, &lifecycleErr) {
			t.Fatalf("%s: expected *LifecycleError, got %v", tc.name, err)
		}
		if lifecycleErr.Code != "missingCoordinates" {
			t.Errorf("%s: code = %q", tc.name, lifecycleErr.Code)
		}
		if lifecycleErr.Message != tc.wantMessage {
			t.Errorf("%s: message = %q, want %q", tc.name, lifecycleErr.Message, tc.wantMessage)
		}

		got, _ := svc.Get(ctx, created.ID)
		if got.Status != models.StatusDraft {
			t.Errorf("%s: status moved to %q on a rejected publish", tc.name, got.Status)
		}
	}
}

func TestPublishSetsDeadlineAndNotifies(t *testing.T) {
	svc, requests, _, dispatcher := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateDraft(ctx, geocodedRecord("sess-pub"))
	before := time.Now()
	if err := svc.Publish(ctx, created.ID, nil); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	record, _ := requests.GetByID(ctx, created.ID)
	if record.Status != models.StatusPublished {
		t.Errorf("status = %q, want Published", record.Status)
	}
	if record.QuoteDeadline == nil {
		t.Fatal("quote deadline not set")
	}
	want := before.Add(48 * time.Hour)
	if diff := record.QuoteDeadline.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("deadline = %v, want about %v", record.QuoteDeadline, want)
	}
	if got := dispatcher.named(notification.EventRequestPublished); len(got) != 1 {
		t.Errorf("RequestPublished fired %d times, want 1", len(got))
	}
}

func TestPublishHonoursExplicitDeadline(t *testing.T) {
	svc, requests, _, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateDraft(ctx, geocodedRecord("sess-dl"))
	explicit := time.Now().Add(6 * time.Hour).Truncate(time.Second)
	if err := svc.Publish(ctx, created.ID, &explicit); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	record, _ := requests.GetByID(ctx, created.ID)
	if record.QuoteDeadline == nil || !record.QuoteDeadline.Equal(explicit) {
		t.Errorf("deadline = %v, want %v", record.QuoteDeadline, explicit)
	}
}

func TestFullLifecycle(t *testing.T) {
	svc, requests, _, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateDraft(ctx, geocodedRecord("sess-full"))
	id := created.ID

	if err := svc.BeginReview(ctx, id); err != nil {
		t.Fatalf("BeginReview failed: %v", err)
	}
	if err := svc.Publish(ctx, id, nil); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// A quote arrives; the intake path performs this conditional flip.
	won, err := requests.TransitionIf(ctx, id, models.StatusPublished, models.StatusQuotesReceived)
	if err != nil || !won {
		t.Fatalf("first-quote transition failed: won=%v err=%v", won, err)
	}

	if err := svc.Accept(ctx, id); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if err := svc.Complete(ctx, id); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	record, _ := requests.GetByID(ctx, id)
	if record.Status != models.StatusCompleted {
		t.Errorf("status = %q, want Completed", record.Status)
	}

	// No further transitions from Completed.
	if err := svc.Withdraw(ctx, id); err == nil {
		t.Error("Withdraw after Complete should be rejected")
	}
	if err := svc.Complete(ctx, id); err == nil {
		t.Error("repeat Complete should be rejected")
	}
}

func TestWithdrawFromEveryNonTerminalStatus(t *testing.T) {
	ctx := context.Background()
	setups := []struct {
		name  string
		reach func(svc *DefaultLifecycleService, repo *memRequestRepo, id string)
	}{
		{"draft", func(svc *DefaultLifecycleService, repo *memRequestRepo, id string) {}},
		{"under review", func(svc *DefaultLifecycleService, repo *memRequestRepo, id string) {
			svc.BeginReview(ctx, id)
		}},
		{"published", func(svc *DefaultLifecycleService, repo *memRequestRepo, id string) {
			svc.Publish(ctx, id, nil)
		}},
		{"quotes received", func(svc *DefaultLifecycleService, repo *memRequestRepo, id string) {
			svc.Publish(ctx, id, nil)
			repo.TransitionIf(ctx, id, models.StatusPublished, models.StatusQuotesReceived)
		}},
		{"accepted", func(svc *DefaultLifecycleService, repo *memRequestRepo, id string) {
			svc.Publish(ctx, id, nil)
			repo.TransitionIf(ctx, id, models.StatusPublished, models.StatusQuotesReceived)
			svc.Accept(ctx, id)
		}},
	}

	for _, tc := range setups {
		svc, requests, _, _ := newTestService()
		created, _ := svc.CreateDraft(ctx, geocodedRecord("sess-"+tc.name))
		tc.reach(svc, requests, created.ID)

		if err := svc.Withdraw(ctx, created.ID); err != nil {
			t.Errorf("%s: Withdraw failed: %v", tc.name, err)
			continue
		}
		record, _ := requests.GetByID(ctx, created.ID)
		if record.Status != models.StatusCancelled {
			t.Errorf("%s: status = %q, want Cancelled", tc.name, record.Status)
		}

		// A second withdraw on the cancelled record is rejected.
		if err := svc.Withdraw(ctx, created.ID); err == nil {
			t.Errorf("%s: repeat Withdraw should be rejected", tc.name)
		}
	}
}

func TestHoursRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		deadline *time.Time
		want     int
	}{
		{"nil deadline", nil, 0},
		{"exactly now", &now, 0},
		{"passed", timePtr(now.Add(-3 * time.Hour)), 0},
		{"thirty minutes", timePtr(now.Add(30 * time.Minute)), 1},
		{"one hour exact", timePtr(now.Add(time.Hour)), 1},
		{"ninety minutes", timePtr(now.Add(90 * time.Minute)), 2},
		{"two days", timePtr(now.Add(48 * time.Hour)), 48},
	}
	for _, tc := range cases {
		if got := HoursRemaining(tc.deadline, now); got != tc.want {
			t.Errorf("%s: HoursRemaining = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDeadlinePassed(t *testing.T) {
	now := time.Now()
	if DeadlinePassed(nil, now) {
		t.Error("nil deadline must never read as passed")
	}
	future := now.Add(time.Hour)
	if DeadlinePassed(&future, now) {
		t.Error("future deadline should not read as passed")
	}
	past := now.Add(-time.Minute)
	if !DeadlinePassed(&past, now) {
		t.Error("past deadline should read as passed")
	}
}

func TestDeadlineObservedExactlyOnce(t *testing.T) {
	svc, requests, quotes, dispatcher := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateDraft(ctx, geocodedRecord("sess-deadline"))
	past := time.Now().Add(-time.Hour)
	if err := svc.Publish(ctx, created.ID, &past); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	quotes.Create(ctx, &models.Quote{RequestID: created.ID, OperatorID: "op-1", PriceMinor: 120000, Currency: "AUD", Status: models.QuoteSubmitted})

	// Every read after the deadline observes it, but only the first fires.
	for i := 0; i < 3; i++ {
		if _, err := svc.Get(ctx, created.ID); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}
	if err := svc.ObserveDeadline(ctx, created.ID); err != nil {
		t.Fatalf("ObserveDeadline failed: %v", err)
	}

	fired := dispatcher.named(notification.EventQuoteDeadlineReached)
	if len(fired) != 1 {
		t.Fatalf("QuoteDeadlineReached fired %d times, want 1", len(fired))
	}
	if fired[0].TotalCount != 1 {
		t.Errorf("deadline event quote count = %d, want 1", fired[0].TotalCount)
	}

	record, _ := requests.GetByID(ctx, created.ID)
	if record.Status != models.StatusPublished {
		t.Errorf("deadline observation changed status to %q", record.Status)
	}
}

func TestDeadlineNotObservedEarly(t *testing.T) {
	svc, _, _, dispatcher := newTestService()
	ctx := context.Background()

	created, _ := svc.CreateDraft(ctx, geocodedRecord("sess-early"))
	future := time.Now().Add(2 * time.Hour)
	if err := svc.Publish(ctx, created.ID, &future); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fired := dispatcher.named(notification.EventQuoteDeadlineReached); len(fired) != 0 {
		t.Errorf("QuoteDeadlineReached fired %d times before the deadline", len(fired))
	}
}

func timePtr(t time.Time) *time.Time { return &t }
