// ABOUTME: Entry point for touchbase MCP server and CLI
// ABOUTME: Routes to MCP server or CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/harperreed/touchbase/cli"
	"github.com/harperreed/touchbase/db"
	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/rewards"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/touchbase/touchbase.db)")
	rewardsPath := flag.String("rewards-path", "", "Rewards ledger directory (default: ~/.local/share/touchbase/rewards)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	// Handle version flag
	if *showVersion {
		fmt.Printf("touchbase version %s\n", version)
		os.Exit(0)
	}

	// .env is optional
	_ = godotenv.Load()

	ownerID := os.Getenv("TOUCHBASE_OWNER")
	if ownerID == "" {
		ownerID = "local"
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		database, err := db.OpenDatabase(databasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		ledger, err := rewards.Open(ledgerPath(*rewardsPath))
		if err != nil {
			log.Fatalf("Failed to open rewards ledger: %v", err)
		}
		defer ledger.Close()

		co := engine.NewCoordinator(db.NewStore(database), logger,
			engine.NewLogNotifier(logger), ledger)

		if err := cli.MCPCommand(database, co, ownerID); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "crm":
		finalDBPath := databasePath(*dbPath)
		database, err := db.OpenDatabase(finalDBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		log.Printf("touchbase database: %s", finalDBPath)

		if *initOnly {
			log.Println("Database initialized successfully")
			os.Exit(0)
		}

		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		defer func() {
			_ = logger.Sync()
		}()

		ledger, err := rewards.Open(ledgerPath(*rewardsPath))
		if err != nil {
			log.Fatalf("Failed to open rewards ledger: %v", err)
		}
		defer ledger.Close()

		co := engine.NewCoordinator(db.NewStore(database), logger,
			engine.NewLogNotifier(logger), ledger)

		crmCommand := commandArgs[0]
		crmArgs := commandArgs[1:]

		switch crmCommand {
		// Contact commands
		case "add-contact":
			if err := cli.AddContactCommand(database, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "list-contacts":
			if err := cli.ListContactsCommand(database, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "delete-contact":
			if err := cli.DeleteContactCommand(database, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		// Activity commands
		case "log-activity":
			if err := cli.LogActivityCommand(co, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "edit-activity":
			if err := cli.EditActivityCommand(co, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "remove-activity":
			if err := cli.RemoveActivityCommand(co, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "set-status":
			if err := cli.SetStatusCommand(co, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "record-revenue":
			if err := cli.RecordRevenueCommand(co, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "repair":
			if err := cli.RepairCommand(co, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		// Cadence commands
		case "cadence":
			if err := cli.CadenceShowCommand(database, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "cadence-set":
			if err := cli.CadenceSetCommand(database, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "due":
			if err := cli.DueCommand(database, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		// Rewards
		case "points":
			if err := cli.PointsCommand(ledger, ownerID, crmArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		default:
			fmt.Printf("Unknown crm command: %s\n\n", crmCommand)
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func databasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(xdg.DataHome, "touchbase", "touchbase.db")
}

func ledgerPath(rewardsPath string) string {
	if rewardsPath != "" {
		return rewardsPath
	}
	return filepath.Join(xdg.DataHome, "touchbase", "rewards")
}

func printUsage() {
	fmt.Printf(`touchbase v%s - Engagement cadence and touchpoint tracker

USAGE:
  touchbase [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/touchbase/touchbase.db)
  --rewards-path <path>  Rewards ledger directory (default: ~/.local/share/touchbase/rewards)
  --init                 Initialize database and exit (use with 'crm')

ENVIRONMENT:
  TOUCHBASE_OWNER        Owner scope for all data (default: local)

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  crm                    Contact and activity commands

MCP SERVER:
  touchbase mcp          Start MCP server (for Claude Desktop integration)

CRM COMMANDS:
  touchbase crm add-contact     Add a new contact
    --name <name>                 Contact name (required)
    --email <email>               Email address
    --status <status>             Lifecycle status (default: none)
    --relationship <type>         Relationship type (client, friend, mentor, ...)

  touchbase crm list-contacts   List contacts
    --query <text>                Search by name or email
    --limit <n>                   Max results (default: 50)

  touchbase crm delete-contact <id>   Delete a contact and their activities

  touchbase crm log-activity    Log an interaction
    --contact <id>                Contact ID (required)
    --type <type>                 Activity type (default: email)
    --title <title>               Activity title (required)
    --description <text>          Longer notes
    --response                    The contact responded
    --completed <date>            When it happened (default: now)
    --follow-up <date>            Explicit next follow-up date

  touchbase crm edit-activity [flags] <id>    Edit a logged activity
  touchbase crm remove-activity <id>          Delete a logged activity

  touchbase crm set-status --status <status> <id>   Change lifecycle status
  touchbase crm record-revenue --amount <cents> <id>  Record revenue
  touchbase crm repair <id>                   Recompute touchpoint counters

  touchbase crm cadence         Show follow-up cadence rules
  touchbase crm cadence-set     Change a cadence rule
    --scope <scope>               auto, fallback, status, relationship
    --key <key>                   Status or relationship intent
    --enabled                     Whether the rule is active
    --value <n> --unit <unit>     Offset (days, weeks, months)

  touchbase crm due             List contacts due for a follow-up
  touchbase crm points          Show reward points

EXAMPLES:
  # Start MCP server for Claude Desktop
  touchbase mcp

  # Add a contact and log a call
  touchbase crm add-contact --name "John Smith" --email "john@acme.com" --relationship client
  touchbase crm log-activity --contact <id> --type call --title "Intro call" --response

  # See who needs attention
  touchbase crm due

`, version)
}
