// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_activity, edit_activity, remove_activity, and system event tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

type ActivityHandlers struct {
	co      *engine.Coordinator
	ownerID string
}

func NewActivityHandlers(co *engine.Coordinator, ownerID string) *ActivityHandlers {
	return &ActivityHandlers{co: co, ownerID: ownerID}
}

type LogActivityInput struct {
	ContactID        string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Type             string `json:"type" jsonschema:"Activity type: email, call, meeting, linkedin, social, mail, text, or introduction"`
	Title            string `json:"title" jsonschema:"Short activity title"`
	Description      string `json:"description,omitempty" jsonschema:"Longer notes about the interaction"`
	ResponseReceived bool   `json:"response_received,omitempty" jsonschema:"Whether the contact responded (ignored for meetings)"`
	CompletedAt      string `json:"completed_at,omitempty" jsonschema:"When the interaction happened (RFC3339, defaults to now)"`
	FollowUp         string `json:"follow_up,omitempty" jsonschema:"Explicit next follow-up date (RFC3339); overrides cadence rules"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, request *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ContactOutput, error) {
	contactID, err := uuid.Parse(input.ContactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid contact_id: %w", err)
	}

	activityType := models.ActivityType(input.Type)
	if !activityType.Valid() {
		return nil, ContactOutput{}, fmt.Errorf("unknown activity type %q", input.Type)
	}
	if !activityType.UserEditable() {
		return nil, ContactOutput{}, fmt.Errorf("%s activities are system-generated; use the dedicated tool", activityType)
	}

	in := engine.ActivityInput{
		ContactID:        contactID,
		Type:             activityType,
		Title:            input.Title,
		Description:      input.Description,
		ResponseReceived: input.ResponseReceived,
	}

	if input.CompletedAt != "" {
		completed, err := time.Parse(time.RFC3339, input.CompletedAt)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid completed_at format (use RFC3339): %w", err)
		}
		in.CompletedAt = &completed
	}
	if input.FollowUp != "" {
		followUp, err := time.Parse(time.RFC3339, input.FollowUp)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid follow_up format (use RFC3339): %w", err)
		}
		in.FollowUp = models.PatchTime(followUp)
	}

	contact, err := h.co.LogActivity(ctx, h.ownerID, in)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type EditActivityInput struct {
	ActivityID       string `json:"activity_id" jsonschema:"Activity ID (required)"`
	Title            string `json:"title,omitempty" jsonschema:"Updated title"`
	Description      string `json:"description,omitempty" jsonschema:"Updated description"`
	ResponseReceived *bool  `json:"response_received,omitempty" jsonschema:"Updated response flag"`
	CompletedAt      string `json:"completed_at,omitempty" jsonschema:"Updated completion time (RFC3339)"`
	FollowUp         string `json:"follow_up,omitempty" jsonschema:"Explicit next follow-up date (RFC3339)"`
	ClearFollowUp    bool   `json:"clear_follow_up,omitempty" jsonschema:"Clear the contact's next follow-up date"`
}

func (h *ActivityHandlers) EditActivity(ctx context.Context, request *mcp.CallToolRequest, input EditActivityInput) (*mcp.CallToolResult, ContactOutput, error) {
	activityID, err := uuid.Parse(input.ActivityID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid activity_id: %w", err)
	}

	activity, err := h.co.Activity(ctx, h.ownerID, activityID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to load activity: %w", err)
	}
	if !activity.Type.UserEditable() {
		return nil, ContactOutput{}, fmt.Errorf("%s activities cannot be edited", activity.Type)
	}

	var up engine.ActivityUpdate
	if input.Title != "" {
		up.Title = &input.Title
	}
	if input.Description != "" {
		up.Description = &input.Description
	}
	if input.ResponseReceived != nil {
		up.ResponseReceived = input.ResponseReceived
	}
	if input.CompletedAt != "" {
		completed, err := time.Parse(time.RFC3339, input.CompletedAt)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid completed_at format (use RFC3339): %w", err)
		}
		up.CompletedAt = models.PatchTime(completed)
	}
	switch {
	case input.ClearFollowUp:
		up.FollowUp = models.ClearTime()
	case input.FollowUp != "":
		followUp, err := time.Parse(time.RFC3339, input.FollowUp)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid follow_up format (use RFC3339): %w", err)
		}
		up.FollowUp = models.PatchTime(followUp)
	}

	contact, err := h.co.EditActivity(ctx, h.ownerID, activityID, up)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to edit activity: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type RemoveActivityInput struct {
	ActivityID string `json:"activity_id" jsonschema:"Activity ID (required)"`
}

type RemoveActivityOutput struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Contact *ContactOutput `json:"contact,omitempty"`
}

func (h *ActivityHandlers) RemoveActivity(ctx context.Context, request *mcp.CallToolRequest, input RemoveActivityInput) (*mcp.CallToolResult, RemoveActivityOutput, error) {
	activityID, err := uuid.Parse(input.ActivityID)
	if err != nil {
		return nil, RemoveActivityOutput{}, fmt.Errorf("invalid activity_id: %w", err)
	}

	activity, err := h.co.Activity(ctx, h.ownerID, activityID)
	if err == nil && !activity.Type.UserEditable() {
		return nil, RemoveActivityOutput{}, fmt.Errorf("%s activities cannot be deleted", activity.Type)
	}

	contact, err := h.co.RemoveActivity(ctx, h.ownerID, activityID)
	if err != nil {
		return nil, RemoveActivityOutput{}, fmt.Errorf("failed to remove activity: %w", err)
	}

	output := RemoveActivityOutput{
		Success: true,
		Message: fmt.Sprintf("Removed activity: %s", activityID),
	}
	if contact == nil {
		output.Message = fmt.Sprintf("Activity %s was already deleted", activityID)
	} else {
		converted := contactToOutput(contact)
		output.Contact = &converted
	}

	return nil, output, nil
}

type SetContactStatusInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID (required)"`
	Status    string `json:"status" jsonschema:"New lifecycle status"`
}

func (h *ActivityHandlers) SetContactStatus(ctx context.Context, request *mcp.CallToolRequest, input SetContactStatusInput) (*mcp.CallToolResult, ContactOutput, error) {
	contactID, err := uuid.Parse(input.ContactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := h.co.ChangeStatus(ctx, h.ownerID, contactID, input.Status)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to change status: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type RecordRevenueInput struct {
	ContactID   string `json:"contact_id" jsonschema:"Contact ID (required)"`
	AmountCents int64  `json:"amount_cents" jsonschema:"Revenue amount in cents"`
	OccurredAt  string `json:"occurred_at,omitempty" jsonschema:"When the revenue landed (RFC3339, defaults to now)"`
}

func (h *ActivityHandlers) RecordRevenue(ctx context.Context, request *mcp.CallToolRequest, input RecordRevenueInput) (*mcp.CallToolResult, ContactOutput, error) {
	contactID, err := uuid.Parse(input.ContactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid contact_id: %w", err)
	}

	var occurredAt *time.Time
	if input.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.OccurredAt)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("invalid occurred_at format (use RFC3339): %w", err)
		}
		occurredAt = &parsed
	}

	contact, err := h.co.RecordRevenue(ctx, h.ownerID, contactID, input.AmountCents, occurredAt)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to record revenue: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type RepairRollupInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID whose rollup fields should be recomputed"`
}

// RepairRollup recomputes a contact's counters from their activity set.
// Run it after a partial failure left the counters stale.
func (h *ActivityHandlers) RepairRollup(ctx context.Context, request *mcp.CallToolRequest, input RepairRollupInput) (*mcp.CallToolResult, ContactOutput, error) {
	contactID, err := uuid.Parse(input.ContactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid contact_id: %w", err)
	}

	contact, err := h.co.RepairRollup(ctx, h.ownerID, contactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to repair rollup: %w", err)
	}

	return nil, contactToOutput(contact), nil
}
