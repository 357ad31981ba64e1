// ABOUTME: Database operations for follow-up tracking
// ABOUTME: Queries contacts whose follow-up date has come due
package db

import (
	"database/sql"
	"time"

	"github.com/harperreed/touchbase/models"
)

// ListDueContacts returns contacts whose next follow-up is at or before
// asOf, most overdue first. Demo contacts never carry an auto-computed
// follow-up, so they only appear here when the user scheduled one by
// hand.
func ListDueContacts(db *sql.DB, ownerID string, asOf time.Time, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := db.Query(`
		SELECT id, owner_id, name, email, status, relationship_type,
			total_touchpoints, last_contact_date, next_follow_up, revenue_amount,
			is_demo, created_at, updated_at
		FROM contacts
		WHERE owner_id = ? AND next_follow_up IS NOT NULL AND next_follow_up <= ?
		ORDER BY next_follow_up ASC
		LIMIT ?
	`, ownerID, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

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

// CountOverdueContacts reports how many contacts are past due as of now.
func CountOverdueContacts(db *sql.DB, ownerID string, asOf time.Time) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM contacts
		WHERE owner_id = ? AND next_follow_up IS NOT NULL AND next_follow_up <= ?
	`, ownerID, asOf).Scan(&count)
	return count, err
}
