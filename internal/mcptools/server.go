// Package mcptools exposes the task page to agents as MCP tools over stdio.
//
// Every mutating tool goes through the mutation gateway and reloads the
// page afterwards, exactly like the interactive front ends.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"evotodo/internal/gateway"
	"evotodo/internal/reconcile"
	"evotodo/internal/service"
	"evotodo/internal/taskpage"
)

// NewServer creates an MCP server with the task tools registered.
func NewServer(page *taskpage.Page, version string) *server.MCPServer {
	s := server.NewMCPServer("evotodo", version)
	t := &tools{page: page}

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a new task"),
		mcp.WithString("title", mcp.Description("The title of the task"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Optional details")),
		mcp.WithString("priority", mcp.Description("Low, Medium or High (default Medium)")),
	), t.addTask)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the user's tasks"),
		mcp.WithString("status", mcp.Description("all, pending or completed (default all)")),
	), t.listTasks)

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as complete"),
		mcp.WithString("task_id", mcp.Description("The ID of the task to complete"), mcp.Required()),
	), t.completeTask)

	s.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Flip a task between Incomplete and Complete"),
		mcp.WithString("task_id", mcp.Description("The ID of the task to toggle"), mcp.Required()),
	), t.toggleTask)

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update title, description, priority or status of a task"),
		mcp.WithString("task_id", mcp.Description("The ID of the task to update"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("priority", mcp.Description("New priority: Low, Medium or High")),
		mcp.WithString("status", mcp.Description("New status: Incomplete or Complete")),
	), t.updateTask)

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. This cannot be undone; the user must have confirmed it."),
		mcp.WithString("task_id", mcp.Description("The ID of the task to delete"), mcp.Required()),
		mcp.WithBoolean("confirm", mcp.Description("Must be true: the user confirmed the deletion"), mcp.Required()),
	), t.deleteTask)

	return s
}

// Serve runs the server on stdin and stdout until the client disconnects.
func Serve(page *taskpage.Page, version string) error {
	return server.ServeStdio(NewServer(page, version))
}

type tools struct {
	page *taskpage.Page
}

func (t *tools) addTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := mcp.ParseString(request, "title", "")
	description := mcp.ParseString(request, "description", "")
	priority, err := service.ParsePriority(mcp.ParseString(request, "priority", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var task service.Task
	err = reconcile.AfterMutation(ctx, t.page, func(ctx context.Context) error {
		task, err = t.page.Gateway().Create(ctx, title, description, priority)
		return err
	})
	if res := failure(err); res != nil {
		return res, nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' (ID: %s) has been added successfully.", task.Title, task.ID)), nil
}

func (t *tools) listTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := strings.ToLower(mcp.ParseString(request, "status", "all"))
	var keep func(service.Task) bool
	switch filter {
	case "", "all":
		keep = func(service.Task) bool { return true }
	case "pending":
		keep = func(task service.Task) bool { return !task.Done() }
	case "completed":
		keep = service.Task.Done
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid status filter: %s (use all, pending or completed)", filter)), nil
	}

	if err := t.page.Reload(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for _, task := range t.page.Tasks() {
		if keep(task) {
			fmt.Fprintf(&b, "- [%s] %s (%s, %s)\n", task.ID, task.Title, task.Status, task.Priority)
		}
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("You have no tasks matching the filter."), nil
	}
	return mcp.NewToolResultText("Your tasks:\n" + b.String()), nil
}

func (t *tools) completeTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, res := t.lookup(ctx, request)
	if res != nil {
		return res, nil
	}
	if task.Done() {
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' is already complete.", task.Title)), nil
	}
	if _, err := t.page.Toggle(ctx, task); failure(err) != nil {
		return failure(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' marked as complete.", task.Title)), nil
}

func (t *tools) toggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, res := t.lookup(ctx, request)
	if res != nil {
		return res, nil
	}
	updated, err := t.page.Toggle(ctx, task)
	if res := failure(err); res != nil {
		return res, nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' is now %s.", task.Title, updated.Status)), nil
}

func (t *tools) updateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := taskID(request)
	if id == "" {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	args, _ := request.Params.Arguments.(map[string]any)
	var fields service.TaskFields
	if title, ok := args["title"].(string); ok {
		fields.Title = &title
	}
	if description, ok := args["description"].(string); ok {
		fields.Description = &description
	}
	if s, ok := args["priority"].(string); ok {
		p, err := service.ParsePriority(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields.Priority = &p
	}
	if s, ok := args["status"].(string); ok {
		st, err := service.ParseStatus(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields.Status = &st
	}
	if fields.IsEmpty() {
		return mcp.NewToolResultError("nothing to update"), nil
	}

	err := reconcile.AfterMutation(ctx, t.page, func(ctx context.Context) error {
		_, err := t.page.Gateway().Update(ctx, id, fields)
		return err
	})
	if res := failure(err); res != nil {
		return res, nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s updated successfully.", id)), nil
}

func (t *tools) deleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, res := t.lookup(ctx, request)
	if res != nil {
		return res, nil
	}
	confirmed := mcp.ParseBoolean(request, "confirm", false)
	confirm := gateway.ConfirmFunc(func(context.Context, string) (bool, error) {
		return confirmed, nil
	})

	err := t.page.Delete(ctx, task.ID, confirm)
	if errors.Is(err, gateway.ErrDeclined) {
		return mcp.NewToolResultError("deletion not confirmed: ask the user, then call again with confirm=true"), nil
	}
	if res := failure(err); res != nil {
		return res, nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' has been deleted.", task.Title)), nil
}

// lookup reloads and finds the task named by task_id.
func (t *tools) lookup(ctx context.Context, request mcp.CallToolRequest) (service.Task, *mcp.CallToolResult) {
	id := taskID(request)
	if id == "" {
		return service.Task{}, mcp.NewToolResultError("task_id is required")
	}
	if err := t.page.Reload(ctx); err != nil {
		return service.Task{}, mcp.NewToolResultError(err.Error())
	}
	task, ok := t.page.Find(id)
	if !ok {
		return service.Task{}, mcp.NewToolResultError(fmt.Sprintf("Task with ID %s not found.", id))
	}
	return task, nil
}

// taskID accepts the id as a string or a JSON number.
func taskID(request mcp.CallToolRequest) string {
	args, _ := request.Params.Arguments.(map[string]any)
	switch v := args["task_id"].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// failure turns a mutation error into a tool error. A stale reload after
// a successful mutation is not a failure.
func failure(err error) *mcp.CallToolResult {
	if err == nil || service.IsStale(err) {
		return nil
	}
	return mcp.NewToolResultError(err.Error())
}
