// ABOUTME: Activity mutation coordinator for create, edit, and delete flows
// ABOUTME: Keeps contact rollups and follow-up dates consistent with the activity set
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harperreed/touchbase/models"
)

// Coordinator orchestrates activity mutations: it validates the intent,
// performs the activity write, recomputes the contact's derived fields
// from the full activity set, writes the contact patch, and fires
// best-effort side effects. The activity set is re-fetched immediately
// before every rollup recompute; cached counts are never reused.
type Coordinator struct {
	store Store
	sinks []EffectSink
	log   *zap.Logger
	now   func() time.Time
}

func NewCoordinator(store Store, logger *zap.Logger, sinks ...EffectSink) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store: store,
		sinks: sinks,
		log:   logger,
		now:   time.Now,
	}
}

// ActivityInput is the create-mutation intent. FollowUp carries the
// caller's explicit scheduledFor instant; it belongs to the mutation,
// not to the activity record.
type ActivityInput struct {
	ContactID        uuid.UUID
	Type             models.ActivityType
	Title            string
	Description      string
	ResponseReceived bool
	Amount           int64
	CompletedAt      *time.Time
	FollowUp         models.TimePatch
}

// ActivityUpdate is the edit-mutation intent. Nil pointers leave the
// activity field alone. FollowUp touches the contact's follow-up date
// only when Set, including an explicit clear.
type ActivityUpdate struct {
	Type             *models.ActivityType
	Title            *string
	Description      *string
	ResponseReceived *bool
	Amount           *int64
	CompletedAt      models.TimePatch
	FollowUp         models.TimePatch
}

// LogActivity creates an activity and updates the parent contact's
// rollup and follow-up state. The returned contact reflects the
// post-mutation state for immediate UI refresh.
func (c *Coordinator) LogActivity(ctx context.Context, ownerID string, in ActivityInput) (*models.Contact, error) {
	if in.ContactID == uuid.Nil {
		return nil, &ValidationError{Field: "contact_id", Reason: "required"}
	}
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown activity type %q", in.Type)}
	}

	contact, err := c.store.GetContact(ctx, ownerID, in.ContactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("contact %s: %w", in.ContactID, ErrNotFound)
		}
		return nil, &TransientError{Op: "get contact", Err: err}
	}

	activity := &models.Activity{
		OwnerID:          ownerID,
		ContactID:        in.ContactID,
		Type:             in.Type,
		Title:            in.Title,
		Description:      in.Description,
		ResponseReceived: in.ResponseReceived && in.Type.TracksResponse(),
		Amount:           in.Amount,
		CompletedAt:      in.CompletedAt,
	}
	if err := c.store.InsertActivity(ctx, activity); err != nil {
		return nil, &TransientError{Op: "insert activity", Err: err}
	}

	patch, err := c.rollupPatch(ctx, ownerID, in.ContactID)
	if err != nil {
		return nil, c.partial(ownerID, activity.ID, in.ContactID, err)
	}

	// Follow-up priority: explicit caller instant wins; an existing
	// schedule is never silently overwritten by a new touchpoint; only a
	// blank schedule gets an auto-computed date.
	switch {
	case in.FollowUp.Set && in.FollowUp.Time != nil:
		patch.NextFollowUp = in.FollowUp
	case contact.NextFollowUp != nil:
		// preserved
	case IsDemoContact(contact):
		// demo contacts never receive auto-computed follow-ups
	default:
		cfg, err := c.store.GetCadenceConfig(ctx, ownerID)
		if err != nil {
			return nil, c.partial(ownerID, activity.ID, in.ContactID, err)
		}
		reference := activity.EffectiveTime()
		if in.CompletedAt == nil {
			reference = c.now()
		}
		if next := ResolveNextFollowUp(contact, cfg, reference); next != nil {
			patch.NextFollowUp = models.PatchTime(*next)
		}
	}

	updated, err := c.store.UpdateContactRollup(ctx, ownerID, in.ContactID, patch)
	if err != nil {
		return nil, c.partial(ownerID, activity.ID, in.ContactID, err)
	}

	c.fire(ctx, updated, activity, false)
	return updated, nil
}

// EditActivity updates an existing activity and recomputes the contact's
// rollup from the unchanged-cardinality set. The contact's follow-up
// date is touched only when the mutation explicitly supplies one: an
// edit to a past interaction must not silently reschedule the future.
func (c *Coordinator) EditActivity(ctx context.Context, ownerID string, activityID uuid.UUID, up ActivityUpdate) (*models.Contact, error) {
	if up.Type != nil && !up.Type.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown activity type %q", *up.Type)}
	}

	activity, err := c.store.GetActivity(ctx, ownerID, activityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("activity %s: %w", activityID, ErrNotFound)
		}
		return nil, &TransientError{Op: "get activity", Err: err}
	}

	if up.Type != nil {
		activity.Type = *up.Type
	}
	if up.Title != nil {
		activity.Title = *up.Title
	}
	if up.Description != nil {
		activity.Description = *up.Description
	}
	if up.ResponseReceived != nil {
		activity.ResponseReceived = *up.ResponseReceived
	}
	if up.Amount != nil {
		activity.Amount = *up.Amount
	}
	if up.CompletedAt.Set {
		activity.CompletedAt = up.CompletedAt.Time
	}
	if !activity.Type.TracksResponse() {
		activity.ResponseReceived = false
	}

	if err := c.store.UpdateActivity(ctx, activity); err != nil {
		return nil, &TransientError{Op: "update activity", Err: err}
	}

	patch, err := c.rollupPatch(ctx, ownerID, activity.ContactID)
	if err != nil {
		return nil, c.partial(ownerID, activityID, activity.ContactID, err)
	}
	if up.FollowUp.Set {
		patch.NextFollowUp = up.FollowUp
	}

	updated, err := c.store.UpdateContactRollup(ctx, ownerID, activity.ContactID, patch)
	if err != nil {
		return nil, c.partial(ownerID, activityID, activity.ContactID, err)
	}
	return updated, nil
}

// RemoveActivity deletes an activity and recomputes the contact's rollup
// over the remaining set. Deleting an unknown id succeeds with no
// contact to report. The follow-up date is re-derived anchored on the
// new last-contact instant, because the old schedule was anchored to an
// interaction that no longer exists.
func (c *Coordinator) RemoveActivity(ctx context.Context, ownerID string, activityID uuid.UUID) (*models.Contact, error) {
	activity, err := c.store.GetActivity(ctx, ownerID, activityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil // already deleted
		}
		return nil, &TransientError{Op: "get activity", Err: err}
	}

	contact, err := c.store.GetContact(ctx, ownerID, activity.ContactID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, &TransientError{Op: "get contact", Err: err}
	}

	if err := c.store.DeleteActivity(ctx, ownerID, activityID); err != nil {
		return nil, &TransientError{Op: "delete activity", Err: err}
	}
	if contact == nil {
		return nil, nil // orphan record, nothing to roll up
	}

	patch, err := c.rollupPatch(ctx, ownerID, activity.ContactID)
	if err != nil {
		return nil, c.partial(ownerID, activityID, activity.ContactID, err)
	}

	patch.NextFollowUp = models.ClearTime()
	if !IsDemoContact(contact) && patch.LastContactDate.Time != nil {
		cfg, err := c.store.GetCadenceConfig(ctx, ownerID)
		if err != nil {
			return nil, c.partial(ownerID, activityID, activity.ContactID, err)
		}
		if next := ResolveNextFollowUp(contact, cfg, *patch.LastContactDate.Time); next != nil {
			patch.NextFollowUp = models.PatchTime(*next)
		}
	}

	updated, err := c.store.UpdateContactRollup(ctx, ownerID, activity.ContactID, patch)
	if err != nil {
		return nil, c.partial(ownerID, activityID, activity.ContactID, err)
	}

	c.fire(ctx, updated, activity, true)
	return updated, nil
}

// RepairRollup is the repair path for PartialFailureError: it recomputes
// the derived counters from the current activity set and rewrites them,
// leaving the follow-up date alone.
func (c *Coordinator) RepairRollup(ctx context.Context, ownerID string, contactID uuid.UUID) (*models.Contact, error) {
	if _, err := c.store.GetContact(ctx, ownerID, contactID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return nil, &TransientError{Op: "get contact", Err: err}
	}

	patch, err := c.rollupPatch(ctx, ownerID, contactID)
	if err != nil {
		return nil, &TransientError{Op: "list activities", Err: err}
	}

	updated, err := c.store.UpdateContactRollup(ctx, ownerID, contactID, patch)
	if err != nil {
		return nil, &TransientError{Op: "update contact", Err: err}
	}
	return updated, nil
}

// ChangeStatus moves a contact to a new lifecycle status and records the
// transition as a system-generated status_change activity through the
// normal create flow, so rollups stay consistent.
func (c *Coordinator) ChangeStatus(ctx context.Context, ownerID string, contactID uuid.UUID, status string) (*models.Contact, error) {
	if !models.ValidStatus(status) {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	contact, err := c.store.GetContact(ctx, ownerID, contactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return nil, &TransientError{Op: "get contact", Err: err}
	}
	if contact.Status == status {
		return contact, nil
	}

	if err := c.store.UpdateContactStatus(ctx, ownerID, contactID, status); err != nil {
		return nil, &TransientError{Op: "update status", Err: err}
	}

	completed := c.now()
	return c.LogActivity(ctx, ownerID, ActivityInput{
		ContactID:   contactID,
		Type:        models.ActivityStatusChange,
		Title:       fmt.Sprintf("Status changed from %s to %s", contact.Status, status),
		CompletedAt: &completed,
	})
}

// RecordRevenue records a revenue event against a contact. Lifetime
// revenue is re-derived from the full activity set like every other
// rollup field.
func (c *Coordinator) RecordRevenue(ctx context.Context, ownerID string, contactID uuid.UUID, amountCents int64, completedAt *time.Time) (*models.Contact, error) {
	if amountCents < 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if completedAt == nil {
		now := c.now()
		completedAt = &now
	}
	return c.LogActivity(ctx, ownerID, ActivityInput{
		ContactID:   contactID,
		Type:        models.ActivityRevenue,
		Title:       "Revenue recorded",
		Amount:      amountCents,
		CompletedAt: completedAt,
	})
}

// Activity loads a single activity for the outward surfaces, which need
// the type to enforce edit and delete restrictions.
func (c *Coordinator) Activity(ctx context.Context, ownerID string, activityID uuid.UUID) (*models.Activity, error) {
	return c.store.GetActivity(ctx, ownerID, activityID)
}

// rollupPatch re-fetches the contact's activity set and derives the
// counter portion of the patch. Follow-up handling stays with the
// individual mutation flows.
func (c *Coordinator) rollupPatch(ctx context.Context, ownerID string, contactID uuid.UUID) (models.ContactRollupPatch, error) {
	activities, err := c.store.ListActivities(ctx, ownerID, contactID)
	if err != nil {
		return models.ContactRollupPatch{}, err
	}

	rollup := RecomputeRollup(activities)
	revenue := RecomputeRevenue(activities)

	return models.ContactRollupPatch{
		TotalTouchpoints: &rollup.TotalTouchpoints,
		LastContactDate:  models.TimePatch{Set: true, Time: rollup.LastContactDate},
		RevenueAmount:    &revenue,
	}, nil
}

func (c *Coordinator) partial(ownerID string, activityID, contactID uuid.UUID, err error) error {
	pf := &PartialFailureError{OwnerID: ownerID, ActivityID: activityID, ContactID: contactID, Err: err}
	c.log.Warn("contact rollup write failed after activity write",
		zap.String("owner", ownerID),
		zap.String("activity", activityID.String()),
		zap.String("contact", contactID.String()),
		zap.Error(err))
	return pf
}

// fire delivers side effects synchronously and best-effort. Demo
// contacts are excluded so sandbox data cannot pollute rewards or
// notifications.
func (c *Coordinator) fire(ctx context.Context, contact *models.Contact, activity *models.Activity, removed bool) {
	if IsDemoContact(contact) {
		return
	}
	for _, sink := range c.sinks {
		var err error
		if removed {
			err = sink.ActivityRemoved(ctx, contact, activity)
		} else {
			err = sink.ActivityLogged(ctx, contact, activity)
		}
		if err != nil {
			c.log.Warn("side effect failed",
				zap.String("contact", contact.ID.String()),
				zap.String("activity", activity.ID.String()),
				zap.Error(err))
		}
	}
}
