// ABOUTME: Cadence and follow-up CLI commands
// ABOUTME: Show and tune follow-up rules, list contacts that are due
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/models"
)

// CadenceShowCommand prints the owner's follow-up rule table.
func CadenceShowCommand(database *sql.DB, ownerID string, args []string) error {
	fs := flag.NewFlagSet("cadence", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := db.GetCadenceConfig(database, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load cadence config: %w", err)
	}

	state := "on"
	if !cfg.AutoFollowupEnabled {
		state = "off"
	}
	fmt.Printf("Automatic follow-ups: %s\n\n", state)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCOPE\tKEY\tENABLED\tOFFSET")
	_, _ = fmt.Fprintln(w, "-----\t---\t-------\t------")
	for intent, rule := range cfg.ByRelationship {
		printRuleRow(w, "relationship", string(intent), rule)
	}
	for status, rule := range cfg.ByStatus {
		printRuleRow(w, "status", status, rule)
	}
	printRuleRow(w, "fallback", "-", cfg.Fallback)
	_ = w.Flush()
	return nil
}

func printRuleRow(w *tabwriter.Writer, scope, key string, rule models.CadenceRule) {
	enabled := "yes"
	offset := fmt.Sprintf("%d %s", rule.Offset.Value, rule.Offset.Unit)
	if !rule.Enabled {
		enabled = "no"
		offset = "-"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", scope, key, enabled, offset)
}

// CadenceSetCommand updates a single cadence rule or the auto toggle.
func CadenceSetCommand(database *sql.DB, ownerID string, args []string) error {
	fs := flag.NewFlagSet("cadence-set", flag.ExitOnError)
	scope := fs.String("scope", "", "Rule scope: auto, fallback, status, relationship (required)")
	key := fs.String("key", "", "Status or relationship intent the rule applies to")
	enabled := fs.Bool("enabled", true, "Whether the rule is active")
	value := fs.Int("value", 0, "Offset magnitude")
	unit := fs.String("unit", models.UnitDays, "Offset unit: days, weeks, months")
	_ = fs.Parse(args)

	if *scope == "" {
		return fmt.Errorf("--scope is required")
	}

	cfg, err := db.GetCadenceConfig(database, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load cadence config: %w", err)
	}

	rule := models.CadenceRule{
		Enabled: *enabled,
		Offset:  models.CadenceOffset{Value: *value, Unit: *unit},
	}
	if rule.Enabled {
		if rule.Offset.Value <= 0 {
			return fmt.Errorf("--value must be positive for an enabled rule")
		}
		switch rule.Offset.Unit {
		case models.UnitDays, models.UnitWeeks, models.UnitMonths:
		default:
			return fmt.Errorf("unknown unit %q", rule.Offset.Unit)
		}
	}

	switch *scope {
	case "auto":
		cfg.AutoFollowupEnabled = *enabled
	case "fallback":
		cfg.Fallback = rule
	case "status":
		if !models.ValidStatus(*key) {
			return fmt.Errorf("unknown status %q", *key)
		}
		cfg.ByStatus[*key] = rule
	case "relationship":
		intent := models.RelationshipIntent(*key)
		switch intent {
		case models.IntentBusiness, models.IntentPersonal, models.IntentOther:
		default:
			return fmt.Errorf("unknown relationship intent %q", *key)
		}
		cfg.ByRelationship[intent] = rule
	default:
		return fmt.Errorf("unknown scope %q", *scope)
	}

	if err := db.SaveCadenceConfig(database, cfg); err != nil {
		return fmt.Errorf("failed to save cadence config: %w", err)
	}

	fmt.Println("✓ Cadence updated")
	return nil
}

// DueCommand lists contacts whose follow-up date has arrived.
func DueCommand(database *sql.DB, ownerID string, args []string) error {
	fs := flag.NewFlagSet("due", flag.ExitOnError)
	limit := fs.Int("limit", 25, "Maximum number of contacts to show")
	_ = fs.Parse(args)

	now := time.Now().UTC()
	contacts, err := db.ListDueContacts(database, ownerID, now, *limit)
	if err != nil {
		return fmt.Errorf("failed to list due contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Println("Nobody is due for a follow-up. 🎉")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tDUE\tDAYS OVERDUE\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t---\t------------\t--")
	for _, c := range contacts {
		overdue := int(now.Sub(*c.NextFollowUp).Hours() / 24)
		indicator := "🟡"
		if overdue >= 7 {
			indicator = "🔴"
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%d\t%s\n",
			indicator, c.Name, c.Status, c.NextFollowUp.Format("2006-01-02"), overdue, c.ID)
	}
	_ = w.Flush()

	count, err := db.CountOverdueContacts(database, ownerID, now)
	if err == nil && count > len(contacts) {
		fmt.Printf("\n%d contact(s) due in total.\n", count)
	}
	return nil
}
