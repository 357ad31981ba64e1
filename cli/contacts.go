// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/models"
)

// AddContactCommand adds a new contact.
func AddContactCommand(database *sql.DB, ownerID string, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	status := fs.String("status", models.StatusNone, "Lifecycle status")
	relationship := fs.String("relationship", "", "Relationship type (client, prospect, friend, ...)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if !models.ValidStatus(*status) {
		return fmt.Errorf("unknown status %q", *status)
	}

	contact := &models.Contact{
		OwnerID:          ownerID,
		Name:             *name,
		Email:            *email,
		Status:           *status,
		RelationshipType: *relationship,
		IsDemo:           engine.IsDemoEmail(*email),
	}

	if err := db.CreateContact(database, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	if contact.Email != "" {
		fmt.Printf("  Email: %s\n", contact.Email)
	}
	fmt.Printf("  Status: %s\n", contact.Status)
	if contact.IsDemo {
		fmt.Println("  (demo contact: excluded from auto follow-ups and rewards)")
	}

	return nil
}

// ListContactsCommand lists contacts with their rollup fields.
func ListContactsCommand(database *sql.DB, ownerID string, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	query := fs.String("query", "", "Search by name or email")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	contacts, err := db.FindContacts(database, ownerID, *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tTOUCHPOINTS\tLAST CONTACT\tNEXT FOLLOW-UP\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t-----------\t------------\t--------------\t--")

	for _, contact := range contacts {
		lastContact := "-"
		if contact.LastContactDate != nil {
			lastContact = contact.LastContactDate.Format("2006-01-02")
		}
		nextFollowUp := "-"
		if contact.NextFollowUp != nil {
			nextFollowUp = contact.NextFollowUp.Format("2006-01-02")
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			contact.Name, contact.Status, contact.TotalTouchpoints,
			lastContact, nextFollowUp, contact.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// DeleteContactCommand deletes a contact and its activities.
func DeleteContactCommand(database *sql.DB, ownerID string, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}

	contactID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := db.GetContact(database, ownerID, contactID)
	if err != nil {
		return fmt.Errorf("failed to load contact: %w", err)
	}
	if contact == nil {
		return fmt.Errorf("contact not found: %s", contactID)
	}

	if err := db.DeleteContact(database, ownerID, contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	fmt.Printf("✓ Contact deleted: %s\n", contactID)
	return nil
}
