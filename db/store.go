// ABOUTME: SQLite adapter satisfying the engine's persistence port
// ABOUTME: Maps missing rows onto the engine's not-found sentinel
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

// Store adapts the package's sql functions to engine.Store.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

func (s *Store) GetContact(_ context.Context, ownerID string, contactID uuid.UUID) (*models.Contact, error) {
	contact, err := GetContact(s.db, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, engine.ErrNotFound
	}
	return contact, nil
}

func (s *Store) UpdateContactStatus(_ context.Context, ownerID string, contactID uuid.UUID, status string) error {
	return UpdateContactStatus(s.db, ownerID, contactID, status)
}

func (s *Store) UpdateContactRollup(_ context.Context, ownerID string, contactID uuid.UUID, patch models.ContactRollupPatch) (*models.Contact, error) {
	contact, err := UpdateContactRollup(s.db, ownerID, contactID, patch)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, fmt.Errorf("contact %s: %w", contactID, engine.ErrNotFound)
	}
	return contact, nil
}

func (s *Store) ListActivities(_ context.Context, ownerID string, contactID uuid.UUID) ([]models.Activity, error) {
	return ListActivitiesForContact(s.db, ownerID, contactID)
}

func (s *Store) GetActivity(_ context.Context, ownerID string, activityID uuid.UUID) (*models.Activity, error) {
	activity, err := GetActivity(s.db, ownerID, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, engine.ErrNotFound
	}
	return activity, nil
}

func (s *Store) InsertActivity(_ context.Context, activity *models.Activity) error {
	return InsertActivity(s.db, activity)
}

func (s *Store) UpdateActivity(_ context.Context, activity *models.Activity) error {
	return UpdateActivity(s.db, activity)
}

func (s *Store) DeleteActivity(_ context.Context, ownerID string, activityID uuid.UUID) error {
	return DeleteActivity(s.db, ownerID, activityID)
}

func (s *Store) GetCadenceConfig(_ context.Context, ownerID string) (*models.CadenceConfig, error) {
	return GetCadenceConfig(s.db, ownerID)
}
