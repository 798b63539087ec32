package chore_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/donetick-mcp/internal/donetick"
	"github.com/teemow/donetick-mcp/internal/server"
	"github.com/teemow/donetick-mcp/internal/tools/common"
)

// intArg extracts an integer argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	if v, ok := args[key].(float64); ok {
		return int(v), true
	}
	return 0, false
}

// readOnlyError returns the error result for write tools invoked in
// read-only mode.
func readOnlyError(action string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Cannot %s in read-only mode. Use --yolo flag to enable write operations.", action))
}

// RegisterChoreTools registers all chore and circle tools with the MCP server
func RegisterChoreTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerReadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register read tools: %w", err)
	}

	if err := registerWriteTools(s, sc); err != nil {
		return fmt.Errorf("failed to register write tools: %w", err)
	}

	return nil
}

// registerReadTools registers tools that never modify Donetick state
func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listChoresTool := mcp.NewTool("chores_list",
		mcp.WithDescription("List all chores, with optional filters for active state and assignee"),
		mcp.WithBoolean("filterActive",
			mcp.Description("Only return chores whose active state matches this value"),
		),
		mcp.WithNumber("assignedTo",
			mcp.Description("Only return chores assigned to this user ID"),
		),
	)

	s.AddTool(listChoresTool, common.InstrumentedToolHandler("chores_list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListChores(ctx, request, sc)
	}))

	getChoreTool := mcp.NewTool("chores_get",
		mcp.WithDescription("Get details of a specific chore by ID"),
		mcp.WithNumber("choreId",
			mcp.Required(),
			mcp.Description("The ID of the chore to retrieve"),
		),
	)

	s.AddTool(getChoreTool, common.InstrumentedToolHandler("chores_get", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetChore(ctx, request, sc)
	}))

	circleMembersTool := mcp.NewTool("circle_list_members",
		mcp.WithDescription("List all members of the user's circle (household)"),
	)

	s.AddTool(circleMembersTool, common.InstrumentedToolHandler("circle_list_members", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListCircleMembers(ctx, request, sc)
	}))

	return nil
}

// registerWriteTools registers tools that modify Donetick state.
// All of them refuse to run while the server is in read-only mode.
func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createChoreTool := mcp.NewTool("chores_create",
		mcp.WithDescription("Create a new chore"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The chore name (1-200 characters)"),
		),
		mcp.WithString("description",
			mcp.Description("Free-form description of the chore"),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date in RFC3339 or YYYY-MM-DD format"),
		),
		mcp.WithNumber("createdBy",
			mcp.Description("User ID of the creator"),
		),
	)

	s.AddTool(createChoreTool, common.InstrumentedToolHandler("chores_create", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateChore(ctx, request, sc)
	}))

	updateChoreTool := mcp.NewTool("chores_update",
		mcp.WithDescription("Update an existing chore (Donetick Plus/Premium feature)"),
		mcp.WithNumber("choreId",
			mcp.Required(),
			mcp.Description("The ID of the chore to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the chore"),
		),
		mcp.WithString("description",
			mcp.Description("New description for the chore"),
		),
		mcp.WithString("dueDate",
			mcp.Description("New due date in RFC3339 or YYYY-MM-DD format"),
		),
	)

	s.AddTool(updateChoreTool, common.InstrumentedToolHandler("chores_update", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateChore(ctx, request, sc)
	}))

	completeChoreTool := mcp.NewTool("chores_complete",
		mcp.WithDescription("Mark a chore as complete (Donetick Plus/Premium feature)"),
		mcp.WithNumber("choreId",
			mcp.Required(),
			mcp.Description("The ID of the chore to complete"),
		),
		mcp.WithNumber("completedBy",
			mcp.Description("User ID to record the completion for"),
		),
	)

	s.AddTool(completeChoreTool, common.InstrumentedToolHandler("chores_complete", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCompleteChore(ctx, request, sc)
	}))

	deleteChoreTool := mcp.NewTool("chores_delete",
		mcp.WithDescription("Delete a chore permanently. Only the chore creator can delete a chore."),
		mcp.WithNumber("choreId",
			mcp.Required(),
			mcp.Description("The ID of the chore to delete"),
		),
	)

	s.AddTool(deleteChoreTool, common.InstrumentedToolHandler("chores_delete", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeleteChore(ctx, request, sc)
	}))

	return nil
}

// handleListChores handles the chores_list tool
func handleListChores(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	var opts donetick.ListChoresOptions
	if active, ok := args["filterActive"].(bool); ok {
		opts.FilterActive = &active
	}
	if assignedTo, ok := intArg(args, "assignedTo"); ok {
		opts.AssignedTo = &assignedTo
	}

	chores, err := sc.Client().ListChores(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list chores: %v", err)), nil
	}

	result, _ := json.MarshalIndent(chores, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

// handleGetChore handles the chores_get tool
func handleGetChore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	choreID, ok := intArg(args, "choreId")
	if !ok {
		return mcp.NewToolResultError("choreId is required"), nil
	}

	chore, err := sc.Client().GetChore(ctx, choreID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get chore: %v", err)), nil
	}
	if chore == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Chore %d not found", choreID)), nil
	}

	result, _ := json.MarshalIndent(chore, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

// handleListCircleMembers handles the circle_list_members tool
func handleListCircleMembers(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	members, err := sc.Client().CircleMembers(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list circle members: %v", err)), nil
	}

	result, _ := json.MarshalIndent(members, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

// handleCreateChore handles the chores_create tool
func handleCreateChore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.ReadOnly() {
		return readOnlyError("create chores"), nil
	}

	args, _ := request.Params.Arguments.(map[string]interface{})

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	create := donetick.ChoreCreate{Name: name}
	if description, ok := args["description"].(string); ok {
		create.Description = description
	}
	if dueDate, ok := args["dueDate"].(string); ok {
		create.DueDate = dueDate
	}
	if createdBy, ok := intArg(args, "createdBy"); ok {
		create.CreatedBy = createdBy
	}

	chore, err := sc.Client().CreateChore(ctx, create)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create chore: %v", err)), nil
	}

	result, _ := json.MarshalIndent(chore, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Chore created successfully:\n%s", string(result))), nil
}

// handleUpdateChore handles the chores_update tool
func handleUpdateChore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.ReadOnly() {
		return readOnlyError("update chores"), nil
	}

	args, _ := request.Params.Arguments.(map[string]interface{})

	choreID, ok := intArg(args, "choreId")
	if !ok {
		return mcp.NewToolResultError("choreId is required"), nil
	}

	var update donetick.ChoreUpdate
	if name, ok := args["name"].(string); ok {
		update.Name = name
	}
	if description, ok := args["description"].(string); ok {
		update.Description = description
	}
	if dueDate, ok := args["dueDate"].(string); ok {
		update.NextDueDate = dueDate
	}

	chore, err := sc.Client().UpdateChore(ctx, choreID, update)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update chore: %v", err)), nil
	}

	result, _ := json.MarshalIndent(chore, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Chore updated successfully:\n%s", string(result))), nil
}

// handleCompleteChore handles the chores_complete tool
func handleCompleteChore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.ReadOnly() {
		return readOnlyError("complete chores"), nil
	}

	args, _ := request.Params.Arguments.(map[string]interface{})

	choreID, ok := intArg(args, "choreId")
	if !ok {
		return mcp.NewToolResultError("choreId is required"), nil
	}

	var completedBy *int
	if userID, ok := intArg(args, "completedBy"); ok {
		completedBy = &userID
	}

	chore, err := sc.Client().CompleteChore(ctx, choreID, completedBy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to complete chore: %v", err)), nil
	}

	result, _ := json.MarshalIndent(chore, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Chore %d completed successfully:\n%s", choreID, string(result))), nil
}

// handleDeleteChore handles the chores_delete tool
func handleDeleteChore(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.ReadOnly() {
		return readOnlyError("delete chores"), nil
	}

	args, _ := request.Params.Arguments.(map[string]interface{})

	choreID, ok := intArg(args, "choreId")
	if !ok {
		return mcp.NewToolResultError("choreId is required"), nil
	}

	if err := sc.Client().DeleteChore(ctx, choreID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete chore: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Chore %d deleted successfully", choreID)), nil
}
