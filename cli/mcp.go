// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/touchbase/engine"
	"github.com/harperreed/touchbase/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(db *sql.DB, co *engine.Coordinator, ownerID string) error {
	log.Println("Starting touchbase MCP Server...")

	// Create handlers
	contactHandlers := handlers.NewContactHandlers(db, ownerID)
	activityHandlers := handlers.NewActivityHandlers(co, ownerID)
	cadenceHandlers := handlers.NewCadenceHandlers(db, ownerID)
	resourceHandlers := handlers.NewResourceHandlers(db, ownerID)
	promptHandlers := handlers.NewPromptHandlers(db, ownerID)

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "touchbase",
		Version: "0.1.0",
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name or email",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log an interaction with a contact and update their follow-up schedule",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_activity",
		Description: "Edit a logged activity; only touches the follow-up date when one is supplied",
	}, activityHandlers.EditActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_activity",
		Description: "Delete a logged activity and recompute the contact's rollup fields",
	}, activityHandlers.RemoveActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_contact_status",
		Description: "Move a contact to a new lifecycle status, recording a status_change event",
	}, activityHandlers.SetContactStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_revenue",
		Description: "Record a revenue event against a contact and update lifetime revenue",
	}, activityHandlers.RecordRevenue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "repair_rollup",
		Description: "Recompute a contact's touchpoint counters from their activity history",
	}, activityHandlers.RepairRollup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cadence_config",
		Description: "Show the follow-up cadence rules",
	}, cadenceHandlers.GetCadenceConfig)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_cadence_rule",
		Description: "Set a follow-up cadence rule by status, relationship intent, or fallback",
	}, cadenceHandlers.SetCadenceRule)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_due_contacts",
		Description: "List contacts whose follow-up date has come due",
	}, cadenceHandlers.ListDueContacts)

	// Register read-only resources
	server.AddResource(&mcp.Resource{
		URI:         "touchbase://contacts",
		Name:        "contacts",
		Description: "All contacts with their rollup fields",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "touchbase://due",
		Name:        "due-contacts",
		Description: "Contacts whose follow-up date has come due",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "touchbase://cadence",
		Name:        "cadence-config",
		Description: "The follow-up cadence rule table",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Register prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "contact-briefing",
		Description: "Prepare a briefing before reaching out to a contact",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "Contact ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-triage",
		Description: "Prioritize contacts whose follow-up date has come due",
	}, promptHandlers.GetPrompt)

	// Run server on stdio transport
	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
