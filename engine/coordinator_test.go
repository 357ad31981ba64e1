// ABOUTME: Tests for the activity mutation coordinator
// ABOUTME: Uses an in-memory store fake to cover every mutation flow
package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/touchbase/models"
)

// fakeStore is an in-memory Store used by coordinator tests.
type fakeStore struct {
	contacts   map[uuid.UUID]*models.Contact
	activities map[uuid.UUID]*models.Activity
	cfg        *models.CadenceConfig

	failRollupWrite bool
	failList        bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contacts:   make(map[uuid.UUID]*models.Contact),
		activities: make(map[uuid.UUID]*models.Activity),
		cfg:        models.DefaultCadenceConfig("local"),
	}
}

func (s *fakeStore) addContact(c models.Contact) *models.Contact {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.OwnerID == "" {
		c.OwnerID = "local"
	}
	s.contacts[c.ID] = &c
	return &c
}

func (s *fakeStore) GetContact(_ context.Context, _ string, contactID uuid.UUID) (*models.Contact, error) {
	c, ok := s.contacts[contactID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) UpdateContactStatus(_ context.Context, _ string, contactID uuid.UUID, status string) error {
	c, ok := s.contacts[contactID]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	return nil
}

func (s *fakeStore) UpdateContactRollup(_ context.Context, _ string, contactID uuid.UUID, patch models.ContactRollupPatch) (*models.Contact, error) {
	if s.failRollupWrite {
		return nil, errors.New("disk full")
	}
	c, ok := s.contacts[contactID]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.TotalTouchpoints != nil {
		c.TotalTouchpoints = *patch.TotalTouchpoints
	}
	if patch.LastContactDate.Set {
		c.LastContactDate = patch.LastContactDate.Time
	}
	if patch.NextFollowUp.Set {
		c.NextFollowUp = patch.NextFollowUp.Time
	}
	if patch.RevenueAmount != nil {
		c.RevenueAmount = *patch.RevenueAmount
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) ListActivities(_ context.Context, _ string, contactID uuid.UUID) ([]models.Activity, error) {
	if s.failList {
		return nil, errors.New("disk full")
	}
	var out []models.Activity
	for _, a := range s.activities {
		if a.ContactID == contactID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) GetActivity(_ context.Context, _ string, activityID uuid.UUID) (*models.Activity, error) {
	a, ok := s.activities[activityID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) InsertActivity(_ context.Context, activity *models.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	copied := *activity
	s.activities[activity.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateActivity(_ context.Context, activity *models.Activity) error {
	if _, ok := s.activities[activity.ID]; !ok {
		return ErrNotFound
	}
	copied := *activity
	s.activities[activity.ID] = &copied
	return nil
}

func (s *fakeStore) DeleteActivity(_ context.Context, _ string, activityID uuid.UUID) error {
	delete(s.activities, activityID)
	return nil
}

func (s *fakeStore) GetCadenceConfig(_ context.Context, _ string) (*models.CadenceConfig, error) {
	return s.cfg, nil
}

// recordingSink captures side effect deliveries.
type recordingSink struct {
	logged  []uuid.UUID
	removed []uuid.UUID
	fail    bool
}

func (r *recordingSink) ActivityLogged(_ context.Context, _ *models.Contact, activity *models.Activity) error {
	if r.fail {
		return errors.New("sink down")
	}
	r.logged = append(r.logged, activity.ID)
	return nil
}

func (r *recordingSink) ActivityRemoved(_ context.Context, _ *models.Contact, activity *models.Activity) error {
	if r.fail {
		return errors.New("sink down")
	}
	r.removed = append(r.removed, activity.ID)
	return nil
}

func testCoordinator(store *fakeStore, sinks ...EffectSink) *Coordinator {
	co := NewCoordinator(store, nil, sinks...)
	co.now = func() time.Time { return day(2025, time.June, 1) }
	return co
}

func TestLogActivityFreshColdContact(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)

	completed := day(2025, time.January, 1)
	updated, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID:   contact.ID,
		Type:        models.ActivityEmail,
		Title:       "Intro email",
		CompletedAt: &completed,
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	if updated.TotalTouchpoints != 1 {
		t.Errorf("Expected 1 touchpoint, got %d", updated.TotalTouchpoints)
	}
	if updated.LastContactDate == nil || !updated.LastContactDate.Equal(completed) {
		t.Errorf("Expected last contact Jan 1, got %v", updated.LastContactDate)
	}
	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(day(2025, time.January, 15)) {
		t.Errorf("Cold cadence is 2 weeks, expected Jan 15, got %v", updated.NextFollowUp)
	}
}

func TestLogActivityPreservesExistingFollowUp(t *testing.T) {
	store := newFakeStore()
	scheduled := day(2025, time.January, 15)
	contact := store.addContact(models.Contact{
		Name:         "Ada",
		Status:       models.StatusCold,
		NextFollowUp: &scheduled,
	})
	co := testCoordinator(store)

	completed := day(2025, time.January, 10)
	updated, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID:   contact.ID,
		Type:        models.ActivityCall,
		Title:       "Check-in call",
		CompletedAt: &completed,
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(scheduled) {
		t.Errorf("Existing schedule must be preserved, got %v", updated.NextFollowUp)
	}
}

func TestLogActivityExplicitFollowUpWins(t *testing.T) {
	store := newFakeStore()
	scheduled := day(2025, time.January, 15)
	contact := store.addContact(models.Contact{
		Name:         "Ada",
		Status:       models.StatusCold,
		NextFollowUp: &scheduled,
	})
	co := testCoordinator(store)

	explicit := day(2025, time.March, 1)
	updated, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityMeeting,
		Title:     "Roadmap review",
		FollowUp:  models.PatchTime(explicit),
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(explicit) {
		t.Errorf("Explicit follow-up must win, got %v", updated.NextFollowUp)
	}
}

func TestLogActivityUsesClockWhenNotCompleted(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusHot})
	co := testCoordinator(store)

	updated, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityText,
		Title:     "Quick ping",
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	// hot cadence is 2 days off the clock, not off createdAt
	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(day(2025, time.June, 3)) {
		t.Errorf("Expected June 3, got %v", updated.NextFollowUp)
	}
}

func TestLogActivityDemoContactSkipsFollowUpAndEffects(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{
		Name:   "Sample Sally",
		Email:  "sally@demo.touchbase.app",
		Status: models.StatusCold,
		IsDemo: true,
	})
	sink := &recordingSink{}
	co := testCoordinator(store, sink)

	updated, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityEmail,
		Title:     "Demo touch",
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	if updated.NextFollowUp != nil {
		t.Errorf("Demo contact must not get an auto follow-up, got %v", updated.NextFollowUp)
	}
	if updated.TotalTouchpoints != 1 {
		t.Errorf("Demo contact rollups still update, got %d touchpoints", updated.TotalTouchpoints)
	}
	if len(sink.logged) != 0 {
		t.Errorf("Demo contact must not fire side effects, got %d", len(sink.logged))
	}
}

func TestLogActivityValidation(t *testing.T) {
	store := newFakeStore()
	co := testCoordinator(store)
	ctx := context.Background()

	var verr *ValidationError
	_, err := co.LogActivity(ctx, "local", ActivityInput{Type: models.ActivityEmail})
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for missing contact id, got %v", err)
	}

	_, err = co.LogActivity(ctx, "local", ActivityInput{ContactID: uuid.New(), Type: "carrier_pigeon"})
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for unknown type, got %v", err)
	}

	_, err = co.LogActivity(ctx, "local", ActivityInput{ContactID: uuid.New(), Type: models.ActivityEmail})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown contact, got %v", err)
	}
}

func TestLogActivityResponseOnlyForTrackingTypes(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)

	_, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID:        contact.ID,
		Type:             models.ActivityMeeting,
		Title:            "Sync",
		ResponseReceived: true,
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	for _, a := range store.activities {
		if a.ResponseReceived {
			t.Error("Meetings do not track responses; flag should be dropped")
		}
	}
}

func TestEditActivityPreservesFollowUp(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)
	ctx := context.Background()

	completed := day(2025, time.January, 1)
	if _, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID:   contact.ID,
		Type:        models.ActivityEmail,
		Title:       "Intro",
		CompletedAt: &completed,
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	var activityID uuid.UUID
	for id := range store.activities {
		activityID = id
	}

	newTitle := "Intro (edited)"
	updated, err := co.EditActivity(ctx, "local", activityID, ActivityUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("EditActivity failed: %v", err)
	}

	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(day(2025, time.January, 15)) {
		t.Errorf("Edit must not move the follow-up date, got %v", updated.NextFollowUp)
	}
	if store.activities[activityID].Title != newTitle {
		t.Errorf("Title not updated, got %q", store.activities[activityID].Title)
	}
}

func TestEditActivityMovedCompletionShiftsLastContact(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)
	ctx := context.Background()

	completed := day(2025, time.January, 1)
	if _, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID:   contact.ID,
		Type:        models.ActivityEmail,
		Title:       "Intro",
		CompletedAt: &completed,
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	var activityID uuid.UUID
	for id := range store.activities {
		activityID = id
	}

	moved := day(2025, time.February, 10)
	updated, err := co.EditActivity(ctx, "local", activityID, ActivityUpdate{
		CompletedAt: models.PatchTime(moved),
	})
	if err != nil {
		t.Fatalf("EditActivity failed: %v", err)
	}

	if updated.LastContactDate == nil || !updated.LastContactDate.Equal(moved) {
		t.Errorf("Last contact should follow the moved completion, got %v", updated.LastContactDate)
	}
}

func TestEditActivityExplicitClearFollowUp(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)
	ctx := context.Background()

	if _, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityEmail,
		Title:     "Intro",
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	var activityID uuid.UUID
	for id := range store.activities {
		activityID = id
	}

	updated, err := co.EditActivity(ctx, "local", activityID, ActivityUpdate{
		FollowUp: models.ClearTime(),
	})
	if err != nil {
		t.Fatalf("EditActivity failed: %v", err)
	}

	if updated.NextFollowUp != nil {
		t.Errorf("Explicit clear should null the follow-up, got %v", updated.NextFollowUp)
	}
}

func TestEditActivityUnknownID(t *testing.T) {
	store := newFakeStore()
	co := testCoordinator(store)

	_, err := co.EditActivity(context.Background(), "local", uuid.New(), ActivityUpdate{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemoveActivityLastOneZeroesRollup(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	sink := &recordingSink{}
	co := testCoordinator(store, sink)
	ctx := context.Background()

	if _, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityEmail,
		Title:     "Intro",
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	var activityID uuid.UUID
	for id := range store.activities {
		activityID = id
	}

	updated, err := co.RemoveActivity(ctx, "local", activityID)
	if err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}

	if updated.TotalTouchpoints != 0 {
		t.Errorf("Expected 0 touchpoints, got %d", updated.TotalTouchpoints)
	}
	if updated.LastContactDate != nil {
		t.Errorf("Expected nil last contact, got %v", updated.LastContactDate)
	}
	if updated.NextFollowUp != nil {
		t.Errorf("Expected cleared follow-up with no remaining activities, got %v", updated.NextFollowUp)
	}
	if len(sink.removed) != 1 {
		t.Errorf("Expected one removal effect, got %d", len(sink.removed))
	}
}

func TestRemoveActivityRederivesFollowUpFromRemaining(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)
	ctx := context.Background()

	first := day(2025, time.January, 1)
	if _, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID: contact.ID, Type: models.ActivityEmail, Title: "First", CompletedAt: &first,
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	var firstID uuid.UUID
	for id := range store.activities {
		firstID = id
	}

	second := day(2025, time.February, 1)
	if _, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID: contact.ID, Type: models.ActivityCall, Title: "Second", CompletedAt: &second,
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	var secondID uuid.UUID
	for id := range store.activities {
		if id != firstID {
			secondID = id
		}
	}

	updated, err := co.RemoveActivity(ctx, "local", secondID)
	if err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}

	if updated.LastContactDate == nil || !updated.LastContactDate.Equal(first) {
		t.Errorf("Last contact should fall back to Jan 1, got %v", updated.LastContactDate)
	}
	// cold cadence re-anchored on the surviving Jan 1 touchpoint
	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(day(2025, time.January, 15)) {
		t.Errorf("Follow-up should be re-derived from the new anchor, got %v", updated.NextFollowUp)
	}
}

func TestRemoveActivityUnknownIDIsIdempotent(t *testing.T) {
	store := newFakeStore()
	co := testCoordinator(store)

	contact, err := co.RemoveActivity(context.Background(), "local", uuid.New())
	if err != nil {
		t.Fatalf("Removing an unknown activity should succeed, got %v", err)
	}
	if contact != nil {
		t.Errorf("Expected nil contact for unknown activity, got %v", contact)
	}
}

func TestPartialFailureAndRepair(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)
	ctx := context.Background()

	store.failRollupWrite = true
	_, err := co.LogActivity(ctx, "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityEmail,
		Title:     "Intro",
	})

	var pf *PartialFailureError
	if !errors.As(err, &pf) {
		t.Fatalf("Expected PartialFailureError, got %v", err)
	}
	if pf.ContactID != contact.ID {
		t.Errorf("Partial failure should carry the contact id, got %s", pf.ContactID)
	}
	if len(store.activities) != 1 {
		t.Fatalf("Activity write must survive the rollup failure, have %d", len(store.activities))
	}

	// the activity exists but the counter is stale
	if store.contacts[contact.ID].TotalTouchpoints != 0 {
		t.Fatalf("Counter should be stale before repair")
	}

	store.failRollupWrite = false
	repaired, err := co.RepairRollup(ctx, "local", contact.ID)
	if err != nil {
		t.Fatalf("RepairRollup failed: %v", err)
	}
	if repaired.TotalTouchpoints != 1 {
		t.Errorf("Repair should recount to 1, got %d", repaired.TotalTouchpoints)
	}
}

func TestRepairRollupLeavesFollowUpAlone(t *testing.T) {
	store := newFakeStore()
	scheduled := day(2025, time.April, 1)
	contact := store.addContact(models.Contact{
		Name:         "Ada",
		Status:       models.StatusCold,
		NextFollowUp: &scheduled,
	})
	co := testCoordinator(store)

	repaired, err := co.RepairRollup(context.Background(), "local", contact.ID)
	if err != nil {
		t.Fatalf("RepairRollup failed: %v", err)
	}
	if repaired.NextFollowUp == nil || !repaired.NextFollowUp.Equal(scheduled) {
		t.Errorf("Repair must not touch the follow-up date, got %v", repaired.NextFollowUp)
	}
}

func TestChangeStatus(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)
	ctx := context.Background()

	updated, err := co.ChangeStatus(ctx, "local", contact.ID, models.StatusWarm)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	if updated.Status != models.StatusWarm {
		t.Errorf("Expected warm, got %s", updated.Status)
	}
	if updated.TotalTouchpoints != 1 {
		t.Errorf("Status change should log an activity, got %d touchpoints", updated.TotalTouchpoints)
	}

	var logged *models.Activity
	for _, a := range store.activities {
		logged = a
	}
	if logged == nil || logged.Type != models.ActivityStatusChange {
		t.Fatalf("Expected a status_change activity, got %+v", logged)
	}
}

func TestChangeStatusNoOp(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusWarm})
	co := testCoordinator(store)

	updated, err := co.ChangeStatus(context.Background(), "local", contact.ID, models.StatusWarm)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if len(store.activities) != 0 {
		t.Errorf("Same-status change must not log an activity, got %d", len(store.activities))
	}
	if updated.TotalTouchpoints != 0 {
		t.Errorf("No-op change must not bump touchpoints, got %d", updated.TotalTouchpoints)
	}
}

func TestChangeStatusRejectsUnknown(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	co := testCoordinator(store)

	var verr *ValidationError
	_, err := co.ChangeStatus(context.Background(), "local", contact.ID, "lukewarm")
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}

func TestRecordRevenue(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusWon})
	co := testCoordinator(store)
	ctx := context.Background()

	if _, err := co.RecordRevenue(ctx, "local", contact.ID, 150000, nil); err != nil {
		t.Fatalf("RecordRevenue failed: %v", err)
	}
	updated, err := co.RecordRevenue(ctx, "local", contact.ID, 50000, nil)
	if err != nil {
		t.Fatalf("RecordRevenue failed: %v", err)
	}

	if updated.RevenueAmount != 200000 {
		t.Errorf("Expected 200000 cents lifetime revenue, got %d", updated.RevenueAmount)
	}
	if updated.TotalTouchpoints != 2 {
		t.Errorf("Revenue events are touchpoints, got %d", updated.TotalTouchpoints)
	}
}

func TestRecordRevenueRejectsNegative(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada"})
	co := testCoordinator(store)

	var verr *ValidationError
	_, err := co.RecordRevenue(context.Background(), "local", contact.ID, -5, nil)
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for negative amount, got %v", err)
	}
}

func TestDeleteRestoresRevenue(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusWon})
	co := testCoordinator(store)
	ctx := context.Background()

	if _, err := co.RecordRevenue(ctx, "local", contact.ID, 150000, nil); err != nil {
		t.Fatalf("RecordRevenue failed: %v", err)
	}

	var activityID uuid.UUID
	for id := range store.activities {
		activityID = id
	}

	updated, err := co.RemoveActivity(ctx, "local", activityID)
	if err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}
	if updated.RevenueAmount != 0 {
		t.Errorf("Deleting the revenue event should zero the total, got %d", updated.RevenueAmount)
	}
}

func TestSinkFailureDoesNotFailMutation(t *testing.T) {
	store := newFakeStore()
	contact := store.addContact(models.Contact{Name: "Ada", Status: models.StatusCold})
	sink := &recordingSink{fail: true}
	co := testCoordinator(store, sink)

	if _, err := co.LogActivity(context.Background(), "local", ActivityInput{
		ContactID: contact.ID,
		Type:      models.ActivityEmail,
		Title:     "Intro",
	}); err != nil {
		t.Errorf("Sink failure must not fail the mutation, got %v", err)
	}
}
