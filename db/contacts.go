// ABOUTME: Contact database operations
// ABOUTME: Handles CRUD, owner-scoped lookups, and typed rollup patches
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/touchbase/models"
)

func CreateContact(db *sql.DB, contact *models.Contact) error {
	contact.ID = uuid.New()
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	if contact.Status == "" {
		contact.Status = models.StatusNone
	}
	if !models.ValidStatus(contact.Status) {
		return fmt.Errorf("unknown status %q", contact.Status)
	}

	_, err := db.Exec(`
		INSERT INTO contacts (id, owner_id, name, email, status, relationship_type,
			total_touchpoints, last_contact_date, next_follow_up, revenue_amount,
			is_demo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), contact.OwnerID, contact.Name, contact.Email,
		contact.Status, contact.RelationshipType, contact.TotalTouchpoints,
		contact.LastContactDate, contact.NextFollowUp, contact.RevenueAmount,
		contact.IsDemo, contact.CreatedAt, contact.UpdatedAt)

	return err
}

func GetContact(db *sql.DB, ownerID string, id uuid.UUID) (*models.Contact, error) {
	row := db.QueryRow(`
		SELECT id, owner_id, name, email, status, relationship_type,
			total_touchpoints, last_contact_date, next_follow_up, revenue_amount,
			is_demo, created_at, updated_at
		FROM contacts WHERE id = ? AND owner_id = ?
	`, id.String(), ownerID)

	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func FindContacts(db *sql.DB, ownerID, query string, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	var err error

	if query != "" {
		searchPattern := "%" + strings.ToLower(query) + "%"
		rows, err = db.Query(`
			SELECT id, owner_id, name, email, status, relationship_type,
				total_touchpoints, last_contact_date, next_follow_up, revenue_amount,
				is_demo, created_at, updated_at
			FROM contacts
			WHERE owner_id = ? AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)
			ORDER BY created_at DESC
			LIMIT ?
		`, ownerID, searchPattern, searchPattern, limit)
	} else {
		rows, err = db.Query(`
			SELECT id, owner_id, name, email, status, relationship_type,
				total_touchpoints, last_contact_date, next_follow_up, revenue_amount,
				is_demo, created_at, updated_at
			FROM contacts
			WHERE owner_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, ownerID, limit)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}

	return contacts, rows.Err()
}

// UpdateContactRollup applies a typed patch to the contact's derived
// fields. Only the fields the patch explicitly sets are touched. Returns
// nil when the contact does not exist in the owner's scope.
func UpdateContactRollup(db *sql.DB, ownerID string, id uuid.UUID, patch models.ContactRollupPatch) (*models.Contact, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if patch.TotalTouchpoints != nil {
		sets = append(sets, "total_touchpoints = ?")
		args = append(args, *patch.TotalTouchpoints)
	}
	if patch.LastContactDate.Set {
		sets = append(sets, "last_contact_date = ?")
		args = append(args, patch.LastContactDate.Time)
	}
	if patch.NextFollowUp.Set {
		sets = append(sets, "next_follow_up = ?")
		args = append(args, patch.NextFollowUp.Time)
	}
	if patch.RevenueAmount != nil {
		sets = append(sets, "revenue_amount = ?")
		args = append(args, *patch.RevenueAmount)
	}

	args = append(args, id.String(), ownerID)
	query := fmt.Sprintf("UPDATE contacts SET %s WHERE id = ? AND owner_id = ?", strings.Join(sets, ", "))

	result, err := db.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	return GetContact(db, ownerID, id)
}

func UpdateContactStatus(db *sql.DB, ownerID string, id uuid.UUID, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}

	_, err := db.Exec(`
		UPDATE contacts SET status = ?, updated_at = ? WHERE id = ? AND owner_id = ?
	`, status, time.Now().UTC(), id.String(), ownerID)

	return err
}

func DeleteContact(db *sql.DB, ownerID string, id uuid.UUID) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	_, err = tx.Exec(`DELETE FROM activities WHERE contact_id = ? AND owner_id = ?`, id.String(), ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM contacts WHERE id = ? AND owner_id = ?`, id.String(), ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row scanner) (*models.Contact, error) {
	contact := &models.Contact{}
	var idStr string
	var email, relationshipType sql.NullString

	err := row.Scan(
		&idStr,
		&contact.OwnerID,
		&contact.Name,
		&email,
		&contact.Status,
		&relationshipType,
		&contact.TotalTouchpoints,
		&contact.LastContactDate,
		&contact.NextFollowUp,
		&contact.RevenueAmount,
		&contact.IsDemo,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	contact.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact ID: %w", err)
	}
	contact.Email = email.String
	contact.RelationshipType = relationshipType.String

	return contact, nil
}
