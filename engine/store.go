// ABOUTME: Persistence port consumed by the mutation coordinator
// ABOUTME: Implemented by the sqlite store and by test fakes
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/harperreed/touchbase/models"
)

// Store is the persistence collaborator the coordinator writes through.
// All reads and writes are scoped to a single owner. Implementations
// return ErrNotFound for missing contacts or activities.
type Store interface {
	GetContact(ctx context.Context, ownerID string, contactID uuid.UUID) (*models.Contact, error)
	UpdateContactStatus(ctx context.Context, ownerID string, contactID uuid.UUID, status string) error

	// UpdateContactRollup applies a typed patch to the contact's derived
	// fields and returns the updated contact.
	UpdateContactRollup(ctx context.Context, ownerID string, contactID uuid.UUID, patch models.ContactRollupPatch) (*models.Contact, error)

	ListActivities(ctx context.Context, ownerID string, contactID uuid.UUID) ([]models.Activity, error)
	GetActivity(ctx context.Context, ownerID string, activityID uuid.UUID) (*models.Activity, error)

	// InsertActivity assigns the activity's id and createdAt when absent.
	InsertActivity(ctx context.Context, activity *models.Activity) error
	UpdateActivity(ctx context.Context, activity *models.Activity) error

	// DeleteActivity is idempotent: deleting an absent id is not an error.
	DeleteActivity(ctx context.Context, ownerID string, activityID uuid.UUID) error

	// GetCadenceConfig creates and returns the owner's default config on
	// first access.
	GetCadenceConfig(ctx context.Context, ownerID string) (*models.CadenceConfig, error)
}
