// ABOUTME: Activity database operations
// ABOUTME: Handles insert, update, idempotent delete, and per-contact listing
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/touchbase/models"
)

func InsertActivity(db *sql.DB, activity *models.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(`
		INSERT INTO activities (id, owner_id, contact_id, type, title, description,
			response_received, amount, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID.String(), activity.OwnerID, activity.ContactID.String(),
		string(activity.Type), activity.Title, activity.Description,
		activity.ResponseReceived, activity.Amount, activity.CreatedAt, activity.CompletedAt)

	return err
}

func GetActivity(db *sql.DB, ownerID string, id uuid.UUID) (*models.Activity, error) {
	row := db.QueryRow(`
		SELECT id, owner_id, contact_id, type, title, description,
			response_received, amount, created_at, completed_at
		FROM activities WHERE id = ? AND owner_id = ?
	`, id.String(), ownerID)

	activity, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// UpdateActivity rewrites the mutable activity fields. createdAt and the
// parent contact are immutable: activities are never re-parented.
func UpdateActivity(db *sql.DB, activity *models.Activity) error {
	_, err := db.Exec(`
		UPDATE activities
		SET type = ?, title = ?, description = ?, response_received = ?,
			amount = ?, completed_at = ?
		WHERE id = ? AND owner_id = ?
	`, string(activity.Type), activity.Title, activity.Description,
		activity.ResponseReceived, activity.Amount, activity.CompletedAt,
		activity.ID.String(), activity.OwnerID)

	return err
}

// DeleteActivity is idempotent: deleting an id that is already gone
// succeeds.
func DeleteActivity(db *sql.DB, ownerID string, id uuid.UUID) error {
	_, err := db.Exec(`DELETE FROM activities WHERE id = ? AND owner_id = ?`, id.String(), ownerID)
	return err
}

// ListActivitiesForContact returns the contact's complete current
// activity set, oldest first.
func ListActivitiesForContact(db *sql.DB, ownerID string, contactID uuid.UUID) ([]models.Activity, error) {
	rows, err := db.Query(`
		SELECT id, owner_id, contact_id, type, title, description,
			response_received, amount, created_at, completed_at
		FROM activities
		WHERE contact_id = ? AND owner_id = ?
		ORDER BY created_at ASC
	`, contactID.String(), ownerID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var activities []models.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}

	return activities, rows.Err()
}

func scanActivity(row scanner) (*models.Activity, error) {
	activity := &models.Activity{}
	var idStr, contactIDStr, typeStr string
	var description sql.NullString

	err := row.Scan(
		&idStr,
		&activity.OwnerID,
		&contactIDStr,
		&typeStr,
		&activity.Title,
		&description,
		&activity.ResponseReceived,
		&activity.Amount,
		&activity.CreatedAt,
		&activity.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	activity.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse activity ID: %w", err)
	}
	activity.ContactID, err = uuid.Parse(contactIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contact ID: %w", err)
	}
	activity.Type = models.ActivityType(typeStr)
	activity.Description = description.String

	return activity, nil
}
