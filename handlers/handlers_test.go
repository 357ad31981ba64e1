// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Drives the typed tool surface end to end against a temp database
package handlers

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

func setupCoordinator(t *testing.T, database *sql.DB) *engine.Coordinator {
	t.Helper()
	return engine.NewCoordinator(db.NewStore(database), nil)
}

func TestAddContactHandler(t *testing.T) {
	database := setupTestDB(t)
	handler := NewContactHandlers(database, "local")

	_, output, err := handler.AddContact(context.Background(), nil, AddContactInput{
		Name:             "John Doe",
		Email:            "john@example.com",
		RelationshipType: "client",
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	if output.Name != "John Doe" {
		t.Errorf("Expected name 'John Doe', got %q", output.Name)
	}
	if output.Status != models.StatusNone {
		t.Errorf("Expected default status none, got %q", output.Status)
	}
	if output.ID == "" {
		t.Error("ID was not set")
	}
	if output.IsDemo {
		t.Error("Regular email should not flag the contact as demo")
	}
}

func TestAddContactHandlerValidation(t *testing.T) {
	database := setupTestDB(t)
	handler := NewContactHandlers(database, "local")
	ctx := context.Background()

	if _, _, err := handler.AddContact(ctx, nil, AddContactInput{}); err == nil {
		t.Error("Expected error for missing name")
	}
	if _, _, err := handler.AddContact(ctx, nil, AddContactInput{Name: "X", Status: "tepid"}); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestAddContactHandlerFlagsDemoEmail(t *testing.T) {
	database := setupTestDB(t)
	handler := NewContactHandlers(database, "local")

	_, output, err := handler.AddContact(context.Background(), nil, AddContactInput{
		Name:  "Sample Sally",
		Email: "sally@demo.touchbase.app",
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	if !output.IsDemo {
		t.Error("Demo email should flag the contact")
	}
}

func TestFindContactsHandler(t *testing.T) {
	database := setupTestDB(t)
	handler := NewContactHandlers(database, "local")
	ctx := context.Background()

	for _, name := range []string{"Jane Doe", "John Smith"} {
		if _, _, err := handler.AddContact(ctx, nil, AddContactInput{Name: name}); err != nil {
			t.Fatalf("AddContact failed: %v", err)
		}
	}

	_, output, err := handler.FindContacts(ctx, nil, FindContactsInput{Query: "jane"})
	if err != nil {
		t.Fatalf("FindContacts failed: %v", err)
	}
	if len(output.Contacts) != 1 || output.Contacts[0].Name != "Jane Doe" {
		t.Errorf("Expected one match for 'jane', got %+v", output.Contacts)
	}
}

func TestLogActivityHandler(t *testing.T) {
	database := setupTestDB(t)
	co := setupCoordinator(t, database)
	contactHandler := NewContactHandlers(database, "local")
	activityHandler := NewActivityHandlers(co, "local")
	ctx := context.Background()

	_, created, err := contactHandler.AddContact(ctx, nil, AddContactInput{
		Name:   "Jane Doe",
		Status: models.StatusCold,
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	completed := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, output, err := activityHandler.LogActivity(ctx, nil, LogActivityInput{
		ContactID:   created.ID,
		Type:        "email",
		Title:       "Intro email",
		CompletedAt: completed.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	if output.TotalTouchpoints != 1 {
		t.Errorf("Expected 1 touchpoint, got %d", output.TotalTouchpoints)
	}
	if output.NextFollowUp == nil || !strings.HasPrefix(*output.NextFollowUp, "2025-01-15") {
		t.Errorf("Expected Jan 15 follow-up, got %v", output.NextFollowUp)
	}
}

func TestLogActivityHandlerRejectsSystemTypes(t *testing.T) {
	database := setupTestDB(t)
	co := setupCoordinator(t, database)
	handler := NewActivityHandlers(co, "local")

	for _, atype := range []string{"revenue", "status_change"} {
		_, _, err := handler.LogActivity(context.Background(), nil, LogActivityInput{
			ContactID: "00000000-0000-0000-0000-000000000001",
			Type:      atype,
			Title:     "Nope",
		})
		if err == nil {
			t.Errorf("Expected rejection for system type %s", atype)
		}
	}
}

func TestRemoveActivityHandlerIdempotent(t *testing.T) {
	database := setupTestDB(t)
	co := setupCoordinator(t, database)
	handler := NewActivityHandlers(co, "local")

	_, output, err := handler.RemoveActivity(context.Background(), nil, RemoveActivityInput{
		ActivityID: "00000000-0000-0000-0000-000000000042",
	})
	if err != nil {
		t.Fatalf("RemoveActivity should succeed for unknown id, got %v", err)
	}
	if !output.Success {
		t.Error("Expected success for unknown id")
	}
	if output.Contact != nil {
		t.Error("Expected no contact for unknown id")
	}
}

func TestSetContactStatusHandler(t *testing.T) {
	database := setupTestDB(t)
	co := setupCoordinator(t, database)
	contactHandler := NewContactHandlers(database, "local")
	activityHandler := NewActivityHandlers(co, "local")
	ctx := context.Background()

	_, created, err := contactHandler.AddContact(ctx, nil, AddContactInput{
		Name:   "Jane Doe",
		Status: models.StatusCold,
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	_, output, err := activityHandler.SetContactStatus(ctx, nil, SetContactStatusInput{
		ContactID: created.ID,
		Status:    models.StatusWarm,
	})
	if err != nil {
		t.Fatalf("SetContactStatus failed: %v", err)
	}
	if output.Status != models.StatusWarm {
		t.Errorf("Expected warm, got %s", output.Status)
	}
	if output.TotalTouchpoints != 1 {
		t.Errorf("Transition should log an activity, got %d touchpoints", output.TotalTouchpoints)
	}
}

func TestRecordRevenueHandler(t *testing.T) {
	database := setupTestDB(t)
	co := setupCoordinator(t, database)
	contactHandler := NewContactHandlers(database, "local")
	activityHandler := NewActivityHandlers(co, "local")
	ctx := context.Background()

	_, created, err := contactHandler.AddContact(ctx, nil, AddContactInput{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	_, output, err := activityHandler.RecordRevenue(ctx, nil, RecordRevenueInput{
		ContactID:   created.ID,
		AmountCents: 250000,
	})
	if err != nil {
		t.Fatalf("RecordRevenue failed: %v", err)
	}
	if output.RevenueAmount != 250000 {
		t.Errorf("Expected 250000 cents, got %d", output.RevenueAmount)
	}
}

func TestCadenceHandlers(t *testing.T) {
	database := setupTestDB(t)
	handler := NewCadenceHandlers(database, "local")
	ctx := context.Background()

	_, cfg, err := handler.GetCadenceConfig(ctx, nil, GetCadenceConfigInput{})
	if err != nil {
		t.Fatalf("GetCadenceConfig failed: %v", err)
	}
	if !cfg.AutoFollowupEnabled {
		t.Error("Expected auto follow-ups enabled by default")
	}

	_, _, err = handler.SetCadenceRule(ctx, nil, SetCadenceRuleInput{
		Scope:       "status",
		Key:         models.StatusHot,
		Enabled:     true,
		OffsetValue: 1,
		OffsetUnit:  models.UnitDays,
	})
	if err != nil {
		t.Fatalf("SetCadenceRule failed: %v", err)
	}

	_, cfg, err = handler.GetCadenceConfig(ctx, nil, GetCadenceConfigInput{})
	if err != nil {
		t.Fatalf("GetCadenceConfig failed: %v", err)
	}
	hot, ok := cfg.ByStatus[models.StatusHot]
	if !ok || hot.OffsetValue != 1 || hot.OffsetUnit != models.UnitDays {
		t.Errorf("Rule not applied: %+v", hot)
	}
}

func TestSetCadenceRuleValidation(t *testing.T) {
	database := setupTestDB(t)
	handler := NewCadenceHandlers(database, "local")
	ctx := context.Background()

	if _, _, err := handler.SetCadenceRule(ctx, nil, SetCadenceRuleInput{
		Scope: "status", Key: "tepid", Enabled: true, OffsetValue: 1, OffsetUnit: models.UnitDays,
	}); err == nil {
		t.Error("Expected error for unknown status key")
	}
	if _, _, err := handler.SetCadenceRule(ctx, nil, SetCadenceRuleInput{
		Scope: "fallback", Enabled: true, OffsetValue: 0, OffsetUnit: models.UnitDays,
	}); err == nil {
		t.Error("Expected error for non-positive offset")
	}
	if _, _, err := handler.SetCadenceRule(ctx, nil, SetCadenceRuleInput{
		Scope: "fallback", Enabled: true, OffsetValue: 2, OffsetUnit: "fortnights",
	}); err == nil {
		t.Error("Expected error for unknown unit")
	}
}

func TestListDueContactsHandler(t *testing.T) {
	database := setupTestDB(t)
	co := setupCoordinator(t, database)
	contactHandler := NewContactHandlers(database, "local")
	activityHandler := NewActivityHandlers(co, "local")
	cadenceHandler := NewCadenceHandlers(database, "local")
	ctx := context.Background()

	_, created, err := contactHandler.AddContact(ctx, nil, AddContactInput{
		Name:   "Jane Doe",
		Status: models.StatusCold,
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}

	// a touchpoint far enough back puts the auto follow-up in the past
	past := time.Now().UTC().AddDate(0, -2, 0)
	if _, _, err := activityHandler.LogActivity(ctx, nil, LogActivityInput{
		ContactID:   created.ID,
		Type:        "call",
		Title:       "Old call",
		CompletedAt: past.Format(time.RFC3339),
	}); err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	_, output, err := cadenceHandler.ListDueContacts(ctx, nil, ListDueContactsInput{})
	if err != nil {
		t.Fatalf("ListDueContacts failed: %v", err)
	}
	if len(output.Contacts) != 1 {
		t.Errorf("Expected 1 due contact, got %d", len(output.Contacts))
	}
}
