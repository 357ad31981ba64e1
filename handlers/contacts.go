// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact and find_contacts tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

type ContactHandlers struct {
	db      *sql.DB
	ownerID string
}

func NewContactHandlers(database *sql.DB, ownerID string) *ContactHandlers {
	return &ContactHandlers{db: database, ownerID: ownerID}
}

type AddContactInput struct {
	Name             string `json:"name" jsonschema:"Contact name (required)"`
	Email            string `json:"email,omitempty" jsonschema:"Contact email address"`
	Status           string `json:"status,omitempty" jsonschema:"Lifecycle status (none/cold/warm/hot/won/lost_maybe_later/lost_not_fit)"`
	RelationshipType string `json:"relationship_type,omitempty" jsonschema:"Relationship type (e.g. client, prospect, friend)"`
}

type ContactOutput struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email,omitempty"`
	Status           string  `json:"status"`
	RelationshipType string  `json:"relationship_type,omitempty"`
	TotalTouchpoints int     `json:"total_touchpoints"`
	LastContactDate  *string `json:"last_contact_date,omitempty"`
	NextFollowUp     *string `json:"next_follow_up,omitempty"`
	RevenueAmount    int64   `json:"revenue_amount_cents"`
	IsDemo           bool    `json:"is_demo"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func (h *ContactHandlers) AddContact(_ context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}
	status := input.Status
	if status == "" {
		status = models.StatusNone
	}
	if !models.ValidStatus(status) {
		return nil, ContactOutput{}, fmt.Errorf("unknown status %q", status)
	}

	contact := &models.Contact{
		OwnerID:          h.ownerID,
		Name:             input.Name,
		Email:            input.Email,
		Status:           status,
		RelationshipType: input.RelationshipType,
		IsDemo:           engine.IsDemoEmail(input.Email),
	}

	if err := db.CreateContact(h.db, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (searches name and email)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(_ context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	contacts, err := db.FindContacts(h.db, h.ownerID, input.Query, limit)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i, contact := range contacts {
		result[i] = contactToOutput(&contact)
	}

	return nil, FindContactsOutput{Contacts: result}, nil
}

func contactToOutput(contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:               contact.ID.String(),
		Name:             contact.Name,
		Email:            contact.Email,
		Status:           contact.Status,
		RelationshipType: contact.RelationshipType,
		TotalTouchpoints: contact.TotalTouchpoints,
		RevenueAmount:    contact.RevenueAmount,
		IsDemo:           contact.IsDemo,
		CreatedAt:        contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        contact.UpdatedAt.Format(time.RFC3339),
	}

	if contact.LastContactDate != nil {
		lcd := contact.LastContactDate.Format(time.RFC3339)
		output.LastContactDate = &lcd
	}
	if contact.NextFollowUp != nil {
		nfu := contact.NextFollowUp.Format(time.RFC3339)
		output.NextFollowUp = &nfu
	}

	return output
}
