// ABOUTME: Tests for the engine store adapter
// ABOUTME: Covers the nil-to-ErrNotFound mapping
package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

func TestStoreMapsMissingToErrNotFound(t *testing.T) {
	database := setupTestDB(t)
	store := NewStore(database)
	ctx := context.Background()

	if _, err := store.GetContact(ctx, "local", uuid.New()); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing contact, got %v", err)
	}
	if _, err := store.GetActivity(ctx, "local", uuid.New()); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing activity, got %v", err)
	}
	if _, err := store.UpdateContactRollup(ctx, "local", uuid.New(), models.ContactRollupPatch{}); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing rollup target, got %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	store := NewStore(database)
	ctx := context.Background()

	contact := &models.Contact{OwnerID: "local", Name: "Jane", Status: models.StatusCold}
	if err := CreateContact(database, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}

	activity := &models.Activity{
		OwnerID:   "local",
		ContactID: contact.ID,
		Type:      models.ActivityEmail,
		Title:     "Intro",
	}
	if err := store.InsertActivity(ctx, activity); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}

	activities, err := store.ListActivities(ctx, "local", contact.ID)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(activities))
	}

	cfg, err := store.GetCadenceConfig(ctx, "local")
	if err != nil {
		t.Fatalf("GetCadenceConfig failed: %v", err)
	}
	if !cfg.AutoFollowupEnabled {
		t.Error("Expected default cadence config through the adapter")
	}
}
