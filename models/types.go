// ABOUTME: Data models for relationship-management entities
// ABOUTME: Defines Contact, Activity, CadenceConfig, and rollup patch structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus constants.
const (
	StatusNone           = "none"
	StatusCold           = "cold"
	StatusWarm           = "warm"
	StatusHot            = "hot"
	StatusWon            = "won"
	StatusLostMaybeLater = "lost_maybe_later"
	StatusLostNotFit     = "lost_not_fit"
)

// ValidStatus reports whether s is one of the known contact statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNone, StatusCold, StatusWarm, StatusHot, StatusWon, StatusLostMaybeLater, StatusLostNotFit:
		return true
	}
	return false
}

// RelationshipIntent groups free-form relationship types into the
// category the cadence rules are keyed by.
type RelationshipIntent string

const (
	IntentBusiness RelationshipIntent = "business"
	IntentPersonal RelationshipIntent = "personal"
	IntentOther    RelationshipIntent = "other"
)

var relationshipIntents = map[string]RelationshipIntent{
	"client":   IntentBusiness,
	"prospect": IntentBusiness,
	"partner":  IntentBusiness,
	"investor": IntentBusiness,
	"vendor":   IntentBusiness,
	"friend":   IntentPersonal,
	"family":   IntentPersonal,
	"mentor":   IntentPersonal,
}

// IntentForRelationship maps a relationship type to its intent category.
// Unknown types fall into IntentOther so per-user custom types still
// resolve against the fallback cadence rule.
func IntentForRelationship(relationshipType string) RelationshipIntent {
	if intent, ok := relationshipIntents[relationshipType]; ok {
		return intent
	}
	return IntentOther
}

// ActivityType is a closed enum of interaction kinds. revenue and
// status_change are system-generated and excluded from normal edit and
// delete surfaces, but they are first-class members of every rollup.
type ActivityType string

const (
	ActivityEmail        ActivityType = "email"
	ActivityCall         ActivityType = "call"
	ActivityMeeting      ActivityType = "meeting"
	ActivityLinkedin     ActivityType = "linkedin"
	ActivitySocial       ActivityType = "social"
	ActivityMail         ActivityType = "mail"
	ActivityText         ActivityType = "text"
	ActivityIntroduction ActivityType = "introduction"
	ActivityRevenue      ActivityType = "revenue"
	ActivityStatusChange ActivityType = "status_change"
)

// ActivityTypes lists every valid activity type.
var ActivityTypes = []ActivityType{
	ActivityEmail, ActivityCall, ActivityMeeting, ActivityLinkedin,
	ActivitySocial, ActivityMail, ActivityText, ActivityIntroduction,
	ActivityRevenue, ActivityStatusChange,
}

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UserEditable reports whether the type may be edited or deleted through
// the normal tool and CLI surfaces. System-generated types are not.
func (t ActivityType) UserEditable() bool {
	switch t {
	case ActivityRevenue, ActivityStatusChange:
		return false
	}
	return true
}

// TracksResponse reports whether responseReceived is meaningful for the
// type. Meetings and system-generated events carry no response signal.
func (t ActivityType) TracksResponse() bool {
	switch t {
	case ActivityMeeting, ActivityRevenue, ActivityStatusChange:
		return false
	}
	return true
}

type Contact struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          string     `json:"owner_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Status           string     `json:"status"`
	RelationshipType string     `json:"relationship_type,omitempty"`
	TotalTouchpoints int        `json:"total_touchpoints"`
	LastContactDate  *time.Time `json:"last_contact_date,omitempty"`
	NextFollowUp     *time.Time `json:"next_follow_up,omitempty"`
	RevenueAmount    int64      `json:"revenue_amount"` // in cents
	IsDemo           bool       `json:"is_demo"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Intent returns the cadence category for the contact's relationship type.
func (c *Contact) Intent() RelationshipIntent {
	return IntentForRelationship(c.RelationshipType)
}

type Activity struct {
	ID               uuid.UUID    `json:"id"`
	OwnerID          string       `json:"owner_id"`
	ContactID        uuid.UUID    `json:"contact_id"`
	Type             ActivityType `json:"type"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	ResponseReceived bool         `json:"response_received"`
	Amount           int64        `json:"amount,omitempty"` // in cents, revenue type only
	CreatedAt        time.Time    `json:"created_at"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
}

// EffectiveTime is the instant an activity counts at for rollup purposes:
// completedAt when the interaction happened, createdAt otherwise.
func (a *Activity) EffectiveTime() time.Time {
	if a.CompletedAt != nil {
		return *a.CompletedAt
	}
	return a.CreatedAt
}

// OffsetUnit constants for cadence offsets.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
)

// CadenceOffset is a calendar offset, not a fixed duration.
type CadenceOffset struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

type CadenceRule struct {
	Enabled bool          `json:"enabled"`
	Offset  CadenceOffset `json:"offset"`
}

// CadenceConfig is the per-user follow-up rule table. One row per owner,
// created lazily with defaults on first access.
type CadenceConfig struct {
	OwnerID             string                             `json:"owner_id"`
	AutoFollowupEnabled bool                               `json:"auto_followup_enabled"`
	ByStatus            map[string]CadenceRule             `json:"by_status"`
	ByRelationship      map[RelationshipIntent]CadenceRule `json:"by_relationship"`
	Fallback            CadenceRule                        `json:"fallback"`
}

// DefaultCadenceConfig returns the rule table a new owner starts with.
func DefaultCadenceConfig(ownerID string) *CadenceConfig {
	return &CadenceConfig{
		OwnerID:             ownerID,
		AutoFollowupEnabled: true,
		ByStatus: map[string]CadenceRule{
			StatusCold: {Enabled: true, Offset: CadenceOffset{Value: 2, Unit: UnitWeeks}},
			StatusWarm: {Enabled: true, Offset: CadenceOffset{Value: 1, Unit: UnitWeeks}},
			StatusHot:  {Enabled: true, Offset: CadenceOffset{Value: 2, Unit: UnitDays}},
		},
		ByRelationship: map[RelationshipIntent]CadenceRule{},
		Fallback:       CadenceRule{Enabled: true, Offset: CadenceOffset{Value: 30, Unit: UnitDays}},
	}
}

// TimePatch distinguishes "not supplied" from "supplied, possibly null".
// Set=false leaves the target field untouched; Set=true with a nil Time
// clears it.
type TimePatch struct {
	Set  bool
	Time *time.Time
}

// PatchTime is shorthand for a TimePatch that sets a concrete instant.
func PatchTime(t time.Time) TimePatch {
	return TimePatch{Set: true, Time: &t}
}

// ClearTime is shorthand for a TimePatch that clears the field.
func ClearTime() TimePatch {
	return TimePatch{Set: true}
}

// ContactRollupPatch states exactly which derived contact fields a write
// intends to touch. Nil pointers and unset patches are left alone.
type ContactRollupPatch struct {
	TotalTouchpoints *int
	LastContactDate  TimePatch
	NextFollowUp     TimePatch
	RevenueAmount    *int64
}

// Empty reports whether the patch would touch nothing.
func (p ContactRollupPatch) Empty() bool {
	return p.TotalTouchpoints == nil && !p.LastContactDate.Set &&
		!p.NextFollowUp.Set && p.RevenueAmount == nil
}
