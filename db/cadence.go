// ABOUTME: Cadence configuration storage, one row per owner
// ABOUTME: Rule maps are stored as a JSON blob, defaults created lazily
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/touchbase/models"
)

type cadenceRules struct {
	ByStatus       map[string]models.CadenceRule                    `json:"by_status"`
	ByRelationship map[models.RelationshipIntent]models.CadenceRule `json:"by_relationship"`
	Fallback       models.CadenceRule                               `json:"fallback"`
}

// GetCadenceConfig returns the owner's cadence config, inserting the
// defaults on first access.
func GetCadenceConfig(db *sql.DB, ownerID string) (*models.CadenceConfig, error) {
	var autoEnabled bool
	var rulesJSON string

	err := db.QueryRow(`
		SELECT auto_followup_enabled, rules FROM cadence_config WHERE owner_id = ?
	`, ownerID).Scan(&autoEnabled, &rulesJSON)

	if errors.Is(err, sql.ErrNoRows) {
		cfg := models.DefaultCadenceConfig(ownerID)
		if err := SaveCadenceConfig(db, cfg); err != nil {
			return nil, fmt.Errorf("failed to seed cadence config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var rules cadenceRules
	if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
		return nil, fmt.Errorf("failed to decode cadence rules: %w", err)
	}
	if rules.ByStatus == nil {
		rules.ByStatus = map[string]models.CadenceRule{}
	}
	if rules.ByRelationship == nil {
		rules.ByRelationship = map[models.RelationshipIntent]models.CadenceRule{}
	}

	return &models.CadenceConfig{
		OwnerID:             ownerID,
		AutoFollowupEnabled: autoEnabled,
		ByStatus:            rules.ByStatus,
		ByRelationship:      rules.ByRelationship,
		Fallback:            rules.Fallback,
	}, nil
}

// SaveCadenceConfig upserts the owner's cadence config.
func SaveCadenceConfig(db *sql.DB, cfg *models.CadenceConfig) error {
	rulesJSON, err := json.Marshal(cadenceRules{
		ByStatus:       cfg.ByStatus,
		ByRelationship: cfg.ByRelationship,
		Fallback:       cfg.Fallback,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cadence rules: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO cadence_config (owner_id, auto_followup_enabled, rules, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			auto_followup_enabled = excluded.auto_followup_enabled,
			rules = excluded.rules,
			updated_at = excluded.updated_at
	`, cfg.OwnerID, cfg.AutoFollowupEnabled, string(rulesJSON), now, now)

	return err
}
