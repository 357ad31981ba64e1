// ABOUTME: Cadence configuration and due-list MCP tool handlers
// ABOUTME: Implements get_cadence_config, set_cadence_rule, and list_due_contacts
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/models"
)

type CadenceHandlers struct {
	db      *sql.DB
	ownerID string
}

func NewCadenceHandlers(database *sql.DB, ownerID string) *CadenceHandlers {
	return &CadenceHandlers{db: database, ownerID: ownerID}
}

type CadenceRuleOutput struct {
	Enabled     bool   `json:"enabled"`
	OffsetValue int    `json:"offset_value"`
	OffsetUnit  string `json:"offset_unit"`
}

type CadenceConfigOutput struct {
	AutoFollowupEnabled bool                         `json:"auto_followup_enabled"`
	ByStatus            map[string]CadenceRuleOutput `json:"by_status"`
	ByRelationship      map[string]CadenceRuleOutput `json:"by_relationship"`
	Fallback            CadenceRuleOutput            `json:"fallback"`
}

type GetCadenceConfigInput struct{}

func (h *CadenceHandlers) GetCadenceConfig(_ context.Context, request *mcp.CallToolRequest, input GetCadenceConfigInput) (*mcp.CallToolResult, CadenceConfigOutput, error) {
	cfg, err := db.GetCadenceConfig(h.db, h.ownerID)
	if err != nil {
		return nil, CadenceConfigOutput{}, fmt.Errorf("failed to load cadence config: %w", err)
	}

	return nil, configToOutput(cfg), nil
}

type SetCadenceRuleInput struct {
	Scope       string `json:"scope" jsonschema:"Rule scope: status, relationship, fallback, or auto"`
	Key         string `json:"key,omitempty" jsonschema:"Status name or relationship intent the rule applies to"`
	Enabled     bool   `json:"enabled" jsonschema:"Whether the rule (or the global auto follow-up switch) is enabled"`
	OffsetValue int    `json:"offset_value,omitempty" jsonschema:"Offset amount"`
	OffsetUnit  string `json:"offset_unit,omitempty" jsonschema:"Offset unit: days, weeks, or months"`
}

func (h *CadenceHandlers) SetCadenceRule(_ context.Context, request *mcp.CallToolRequest, input SetCadenceRuleInput) (*mcp.CallToolResult, CadenceConfigOutput, error) {
	cfg, err := db.GetCadenceConfig(h.db, h.ownerID)
	if err != nil {
		return nil, CadenceConfigOutput{}, fmt.Errorf("failed to load cadence config: %w", err)
	}

	rule := models.CadenceRule{
		Enabled: input.Enabled,
		Offset:  models.CadenceOffset{Value: input.OffsetValue, Unit: input.OffsetUnit},
	}
	if input.Enabled {
		if input.OffsetValue <= 0 {
			return nil, CadenceConfigOutput{}, fmt.Errorf("offset_value must be positive for an enabled rule")
		}
		switch input.OffsetUnit {
		case models.UnitDays, models.UnitWeeks, models.UnitMonths:
		default:
			return nil, CadenceConfigOutput{}, fmt.Errorf("unknown offset_unit %q", input.OffsetUnit)
		}
	}

	switch input.Scope {
	case "auto":
		cfg.AutoFollowupEnabled = input.Enabled
	case "fallback":
		cfg.Fallback = rule
	case "status":
		if !models.ValidStatus(input.Key) {
			return nil, CadenceConfigOutput{}, fmt.Errorf("unknown status %q", input.Key)
		}
		cfg.ByStatus[input.Key] = rule
	case "relationship":
		cfg.ByRelationship[models.RelationshipIntent(input.Key)] = rule
	default:
		return nil, CadenceConfigOutput{}, fmt.Errorf("unknown scope %q (use status, relationship, fallback, or auto)", input.Scope)
	}

	if err := db.SaveCadenceConfig(h.db, cfg); err != nil {
		return nil, CadenceConfigOutput{}, fmt.Errorf("failed to save cadence config: %w", err)
	}

	return nil, configToOutput(cfg), nil
}

type ListDueContactsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of results (default 25)"`
}

type ListDueContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *CadenceHandlers) ListDueContacts(_ context.Context, request *mcp.CallToolRequest, input ListDueContactsInput) (*mcp.CallToolResult, ListDueContactsOutput, error) {
	contacts, err := db.ListDueContacts(h.db, h.ownerID, time.Now(), input.Limit)
	if err != nil {
		return nil, ListDueContactsOutput{}, fmt.Errorf("failed to list due contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i, contact := range contacts {
		result[i] = contactToOutput(&contact)
	}

	return nil, ListDueContactsOutput{Contacts: result}, nil
}

func configToOutput(cfg *models.CadenceConfig) CadenceConfigOutput {
	output := CadenceConfigOutput{
		AutoFollowupEnabled: cfg.AutoFollowupEnabled,
		ByStatus:            make(map[string]CadenceRuleOutput, len(cfg.ByStatus)),
		ByRelationship:      make(map[string]CadenceRuleOutput, len(cfg.ByRelationship)),
		Fallback:            ruleToOutput(cfg.Fallback),
	}
	for status, rule := range cfg.ByStatus {
		output.ByStatus[status] = ruleToOutput(rule)
	}
	for intent, rule := range cfg.ByRelationship {
		output.ByRelationship[string(intent)] = ruleToOutput(rule)
	}
	return output
}

func ruleToOutput(rule models.CadenceRule) CadenceRuleOutput {
	return CadenceRuleOutput{
		Enabled:     rule.Enabled,
		OffsetValue: rule.Offset.Value,
		OffsetUnit:  rule.Offset.Unit,
	}
}
