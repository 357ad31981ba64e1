// ABOUTME: MCP prompt handlers for reusable engagement workflow templates
// ABOUTME: Provides standardized prompts for briefings and follow-up triage
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/touchbase/db"
)

type PromptHandlers struct {
	db      *sql.DB
	ownerID string
}

func NewPromptHandlers(database *sql.DB, ownerID string) *PromptHandlers {
	return &PromptHandlers{db: database, ownerID: ownerID}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "contact-briefing":
		return h.getContactBriefingPrompt(arguments)
	case "follow-up-triage":
		return h.getFollowUpTriagePrompt(arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getContactBriefingPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	contactIDStr, ok := args["contact_id"]
	if !ok {
		return nil, fmt.Errorf("contact_id is required")
	}

	contactID, err := uuid.Parse(contactIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := db.GetContact(h.db, h.ownerID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if contact == nil {
		return nil, fmt.Errorf("contact not found: %s", contactIDStr)
	}

	activities, err := db.ListActivitiesForContact(h.db, h.ownerID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please prepare a briefing before I reach out to this contact:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", contact.Name))
	if contact.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", contact.Email))
	}
	promptText.WriteString(fmt.Sprintf("Status: %s\n", contact.Status))
	if contact.RelationshipType != "" {
		promptText.WriteString(fmt.Sprintf("Relationship: %s\n", contact.RelationshipType))
	}
	promptText.WriteString(fmt.Sprintf("Touchpoints: %d\n", contact.TotalTouchpoints))
	if contact.LastContactDate != nil {
		promptText.WriteString(fmt.Sprintf("Last Contact: %s\n", contact.LastContactDate.Format("2006-01-02")))
	}
	if contact.NextFollowUp != nil {
		promptText.WriteString(fmt.Sprintf("Next Follow-up: %s\n", contact.NextFollowUp.Format("2006-01-02")))
	}
	if contact.RevenueAmount > 0 {
		promptText.WriteString(fmt.Sprintf("Lifetime Revenue: $%.2f\n", float64(contact.RevenueAmount)/100))
	}

	if len(activities) > 0 {
		promptText.WriteString("\nRecent interactions:\n")
		start := len(activities) - 5
		if start < 0 {
			start = 0
		}
		for _, activity := range activities[start:] {
			promptText.WriteString(fmt.Sprintf("  - [%s] %s: %s\n",
				activity.EffectiveTime().Format("2006-01-02"), activity.Type, activity.Title))
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A short summary of where this relationship stands")
	promptText.WriteString("\n2. A suggested opener referencing the last interaction")
	promptText.WriteString("\n3. One concrete goal for the next touchpoint")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Briefing for contact: %s", contact.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{

					Text: promptText.String(),
				},
			},
		},
	}, nil
}

func (h *PromptHandlers) getFollowUpTriagePrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	now := time.Now().UTC()
	due, err := db.ListDueContacts(h.db, h.ownerID, now, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due contacts: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Contacts whose follow-up date has come due:\n\n")

	if len(due) == 0 {
		promptText.WriteString("Nobody is currently due.\n")
	}
	for _, contact := range due {
		overdueDays := int(now.Sub(*contact.NextFollowUp).Hours() / 24)
		promptText.WriteString(fmt.Sprintf("- %s (%s, %d days overdue, %d touchpoints)\n",
			contact.Name, contact.Status, overdueDays, contact.TotalTouchpoints))
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize who to reach out to first")
	promptText.WriteString("\n2. Suggest a personalized outreach approach for each")
	promptText.WriteString("\n3. Flag anyone who should be moved to a lost status instead")

	return &mcp.GetPromptResult{
		Description: "Follow-up triage for due contacts",
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{

					Text: promptText.String(),
				},
			},
		},
	}, nil
}
