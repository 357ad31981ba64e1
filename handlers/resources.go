// ABOUTME: MCP resource handlers for exposing engagement data
// ABOUTME: Provides read-only access to contacts, activities, and the due list via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/models"
)

type ResourceHandlers struct {
	db      *sql.DB
	ownerID string
}

func NewResourceHandlers(database *sql.DB, ownerID string) *ResourceHandlers {
	return &ResourceHandlers{db: database, ownerID: ownerID}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "touchbase://") {
		return nil, fmt.Errorf("invalid URI scheme: expected touchbase://")
	}

	path := strings.TrimPrefix(uri, "touchbase://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 {
			return h.readAllContacts()
		}
		return h.readContact(parts[1])

	case "due":
		return h.readDueList()

	case "cadence":
		return h.readCadence()

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllContacts() (*mcp.ReadResourceResult, error) {
	contacts, err := db.FindContacts(h.db, h.ownerID, "", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contacts: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      "touchbase://contacts",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readContact(idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := db.GetContact(h.db, h.ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if contact == nil {
		return nil, fmt.Errorf("contact not found: %s", idStr)
	}

	// Include the full activity history
	activities, err := db.ListActivitiesForContact(h.db, h.ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	contactData := struct {
		models.Contact
		Activities []models.Activity `json:"activities"`
	}{
		Contact:    *contact,
		Activities: activities,
	}

	data, err := json.MarshalIndent(contactData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      fmt.Sprintf("touchbase://contacts/%s", idStr),
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readDueList() (*mcp.ReadResourceResult, error) {
	contacts, err := db.ListDueContacts(h.db, h.ownerID, time.Now().UTC(), 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due contacts: %w", err)
	}

	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal due list: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      "touchbase://due",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readCadence() (*mcp.ReadResourceResult, error) {
	cfg, err := db.GetCadenceConfig(h.db, h.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cadence config: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cadence config: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      "touchbase://cadence",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
