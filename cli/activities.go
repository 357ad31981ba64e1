// ABOUTME: Activity CLI commands
// ABOUTME: Log, edit, and remove interactions through the mutation coordinator
package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

// parseWhen accepts either a bare date or a full RFC3339 instant.
func parseWhen(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// LogActivityCommand logs a new interaction against a contact.
func LogActivityCommand(co *engine.Coordinator, ownerID string, args []string) error {
	fs := flag.NewFlagSet("log-activity", flag.ExitOnError)
	contactIDStr := fs.String("contact", "", "Contact ID (required)")
	activityType := fs.String("type", string(models.ActivityEmail), "Activity type")
	title := fs.String("title", "", "Activity title (required)")
	description := fs.String("description", "", "Longer notes")
	response := fs.Bool("response", false, "The contact responded")
	completedAt := fs.String("completed", "", "When it happened (YYYY-MM-DD or RFC3339, default now)")
	followUp := fs.String("follow-up", "", "Explicit next follow-up date (overrides cadence)")
	_ = fs.Parse(args)

	if *contactIDStr == "" {
		return fmt.Errorf("--contact is required")
	}
	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	contactID, err := uuid.Parse(*contactIDStr)
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	atype := models.ActivityType(*activityType)
	if !atype.Valid() {
		return fmt.Errorf("unknown activity type %q", *activityType)
	}
	if !atype.UserEditable() {
		return fmt.Errorf("%s activities are system-generated; use set-status or record-revenue", atype)
	}

	in := engine.ActivityInput{
		ContactID:        contactID,
		Type:             atype,
		Title:            *title,
		Description:      *description,
		ResponseReceived: *response,
	}

	if *completedAt != "" {
		completed, err := parseWhen(*completedAt)
		if err != nil {
			return fmt.Errorf("invalid --completed: %w", err)
		}
		in.CompletedAt = &completed
	}
	if *followUp != "" {
		next, err := parseWhen(*followUp)
		if err != nil {
			return fmt.Errorf("invalid --follow-up: %w", err)
		}
		in.FollowUp = models.PatchTime(next)
	}

	contact, err := co.LogActivity(context.Background(), ownerID, in)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	printContactSummary(contact)
	return nil
}

// EditActivityCommand edits a logged activity.
func EditActivityCommand(co *engine.Coordinator, ownerID string, args []string) error {
	fs := flag.NewFlagSet("edit-activity", flag.ExitOnError)
	title := fs.String("title", "", "Updated title")
	description := fs.String("description", "", "Updated description")
	completedAt := fs.String("completed", "", "Updated completion time")
	followUp := fs.String("follow-up", "", "Explicit next follow-up date")
	clearFollowUp := fs.Bool("clear-follow-up", false, "Clear the contact's next follow-up date")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("activity ID is required")
	}
	activityID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid activity ID: %w", err)
	}

	ctx := context.Background()
	activity, err := co.Activity(ctx, ownerID, activityID)
	if err != nil {
		return fmt.Errorf("failed to load activity: %w", err)
	}
	if !activity.Type.UserEditable() {
		return fmt.Errorf("%s activities cannot be edited", activity.Type)
	}

	var up engine.ActivityUpdate
	if *title != "" {
		up.Title = title
	}
	if *description != "" {
		up.Description = description
	}
	if *completedAt != "" {
		completed, err := parseWhen(*completedAt)
		if err != nil {
			return fmt.Errorf("invalid --completed: %w", err)
		}
		up.CompletedAt = models.PatchTime(completed)
	}
	switch {
	case *clearFollowUp:
		up.FollowUp = models.ClearTime()
	case *followUp != "":
		next, err := parseWhen(*followUp)
		if err != nil {
			return fmt.Errorf("invalid --follow-up: %w", err)
		}
		up.FollowUp = models.PatchTime(next)
	}

	contact, err := co.EditActivity(ctx, ownerID, activityID, up)
	if err != nil {
		return fmt.Errorf("failed to edit activity: %w", err)
	}

	printContactSummary(contact)
	return nil
}

// RemoveActivityCommand deletes a logged activity.
func RemoveActivityCommand(co *engine.Coordinator, ownerID string, args []string) error {
	fs := flag.NewFlagSet("remove-activity", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("activity ID is required")
	}
	activityID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid activity ID: %w", err)
	}

	ctx := context.Background()
	if activity, err := co.Activity(ctx, ownerID, activityID); err == nil {
		if !activity.Type.UserEditable() {
			return fmt.Errorf("%s activities cannot be deleted", activity.Type)
		}
	}

	contact, err := co.RemoveActivity(ctx, ownerID, activityID)
	if err != nil {
		return fmt.Errorf("failed to remove activity: %w", err)
	}

	if contact == nil {
		fmt.Printf("✓ Activity %s was already deleted\n", activityID)
		return nil
	}

	fmt.Printf("✓ Activity removed: %s\n", activityID)
	printContactSummary(contact)
	return nil
}

// SetStatusCommand moves a contact to a new lifecycle status.
func SetStatusCommand(co *engine.Coordinator, ownerID string, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ExitOnError)
	status := fs.String("status", "", "New status (required)")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}
	if *status == "" {
		return fmt.Errorf("--status is required")
	}
	contactID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := co.ChangeStatus(context.Background(), ownerID, contactID, *status)
	if err != nil {
		return fmt.Errorf("failed to change status: %w", err)
	}

	printContactSummary(contact)
	return nil
}

// RecordRevenueCommand records a revenue event against a contact.
func RecordRevenueCommand(co *engine.Coordinator, ownerID string, args []string) error {
	fs := flag.NewFlagSet("record-revenue", flag.ExitOnError)
	amount := fs.Int64("amount", 0, "Revenue amount in cents (required)")
	occurredAt := fs.String("occurred", "", "When the revenue landed (default now)")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}
	contactID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	var occurred *time.Time
	if *occurredAt != "" {
		parsed, err := parseWhen(*occurredAt)
		if err != nil {
			return fmt.Errorf("invalid --occurred: %w", err)
		}
		occurred = &parsed
	}

	contact, err := co.RecordRevenue(context.Background(), ownerID, contactID, *amount, occurred)
	if err != nil {
		return fmt.Errorf("failed to record revenue: %w", err)
	}

	printContactSummary(contact)
	return nil
}

// RepairCommand recomputes a contact's counters from their activity history.
func RepairCommand(co *engine.Coordinator, ownerID string, args []string) error {
	fs := flag.NewFlagSet("repair", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}
	contactID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := co.RepairRollup(context.Background(), ownerID, contactID)
	if err != nil {
		return fmt.Errorf("failed to repair rollup: %w", err)
	}

	printContactSummary(contact)
	return nil
}

func printContactSummary(contact *models.Contact) {
	fmt.Printf("✓ %s: %d touchpoint(s)", contact.Name, contact.TotalTouchpoints)
	if contact.LastContactDate != nil {
		fmt.Printf(", last contact %s", contact.LastContactDate.Format("2006-01-02"))
	}
	if contact.NextFollowUp != nil {
		fmt.Printf(", next follow-up %s", contact.NextFollowUp.Format("2006-01-02"))
	}
	if contact.RevenueAmount > 0 {
		fmt.Printf(", lifetime revenue $%.2f", float64(contact.RevenueAmount)/100)
	}
	fmt.Println()
}
