// ABOUTME: Rewards CLI command
// ABOUTME: Shows the points total and recent events from the ledger
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/touchbase/rewards"
)

// PointsCommand prints the reward total and the most recent events.
func PointsCommand(ledger *rewards.Ledger, ownerID string, args []string) error {
	fs := flag.NewFlagSet("points", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of recent events to show")
	_ = fs.Parse(args)

	total, err := ledger.Total(ownerID)
	if err != nil {
		return fmt.Errorf("failed to read points total: %w", err)
	}

	events, err := ledger.Events(ownerID)
	if err != nil {
		return fmt.Errorf("failed to read reward events: %w", err)
	}

	fmt.Printf("Total points: %d\n\n", total)
	if len(events) == 0 {
		fmt.Println("No reward events yet. Log an activity to earn points.")
		return nil
	}

	start := len(events) - *limit
	if start < 0 {
		start = 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tTYPE\tPOINTS\tCONTACT")
	_, _ = fmt.Fprintln(w, "----\t----\t------\t-------")
	for i := len(events) - 1; i >= start; i-- {
		ev := events[i]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%+d\t%s\n",
			ev.OccurredAt.Format("2006-01-02 15:04"), ev.Type, ev.Points, ev.ContactID)
	}
	_ = w.Flush()
	return nil
}
