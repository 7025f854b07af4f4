package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"evotodo/internal/commands"
	"evotodo/internal/config"
	"evotodo/internal/exitcode"
	"evotodo/internal/service"
	"evotodo/internal/testutil"
)

// runCommand is a helper to run a command against a fake service.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runWithInput(t, cmd, svc, args, quiet, "")
}

// runWithInput is runCommand with stdin.
func runWithInput(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool, input string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:      t.TempDir(),
		Quiet:    quiet,
		Stdin:    strings.NewReader(input),
		Settings: config.Settings{ReloadAttempts: 1},
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "evotodo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
	for _, name := range []string{"list", "add", "edit", "done", "rm", "chat", "tui", "mcp", "signup", "login", "logout"} {
		if !strings.Contains(stdout, "evotodo "+name) {
			t.Errorf("help output should mention %q", name)
		}
	}
	if !strings.Contains(stdout, "Create a task (alias: create)") {
		t.Error("help output should list aliases next to the synopsis")
	}
}

func TestRegistry_AllCommandsRegistered(t *testing.T) {
	for _, name := range []string{
		"list", "ls", "add", "create", "edit", "update", "done", "toggle", "rm", "delete",
		"chat", "ask", "tui", "mcp", "signup", "login", "logout", "help", "version",
	} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}

	seen := map[string]bool{}
	for _, cmd := range commands.DefaultRegistry.All() {
		if seen[cmd.Name()] {
			t.Errorf("command %q listed twice", cmd.Name())
		}
		seen[cmd.Name()] = true
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	svc.AddTask("Walk dog", service.StatusComplete)

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "   1  [ ] Buy milk  (Medium)\n   2  [x] Walk dog  (Medium)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_FiltersKeepNumbering(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusComplete)
	svc.AddTask("Walk dog", service.StatusIncomplete)

	cmd := &commands.ListCmd{}
	cmd.SetFilter(true, false, false)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   2  [ ] Walk dog  (Medium)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	cmd.SetFilter(false, true, false)
	stdout, _, _ = runCommand(t, cmd, svc, nil, false)
	expected = "   1  [x] Buy milk  (Medium)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_BothFilters(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetFilter(true, true, false)
	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: cannot use both --pending and --done\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_Long(t *testing.T) {
	svc := testutil.NewFakeService()
	task, _ := svc.CreateTask(context.Background(), service.NewTask{
		Title:       "Buy milk",
		Description: "two litres\noat",
		Priority:    service.PriorityHigh,
	})

	cmd := &commands.ListCmd{}
	cmd.SetFilter(false, false, true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [ ] Buy milk  (High)\n" +
		"          two litres\n" +
		"          oat\n" +
		"          created " + task.CreatedAt.UTC().Format("2006-01-02 15:04 MST") + "\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	// Quiet mode should suppress "no tasks found"
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_BackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unreachable", errors.New("connection refused"), exitcode.BackendError},
		{"unauthorized", service.ErrUnauthorized, exitcode.AuthError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			svc.ListTasksErr = tt.err

			stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if !strings.HasPrefix(stderr, "error: ") {
				t.Errorf("expected error line, got %q", stderr)
			}
		})
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetFields("semi-skimmed", "high")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy", "groceries"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "Buy groceries" {
		t.Errorf("expected title 'Buy groceries', got %q", tasks[0].Title)
	}
	if tasks[0].Description != "semi-skimmed" || tasks[0].Priority != service.PriorityHigh {
		t.Errorf("unexpected task %+v", tasks[0])
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	for _, args := range [][]string{nil, {"   "}} {
		stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)

		if code != exitcode.UserError {
			t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
		}
		if stdout != "" {
			t.Errorf("expected no stdout, got %q", stdout)
		}
		if stderr != "error: title required\n" {
			t.Errorf("expected title required error, got %q", stderr)
		}
	}
	if svc.MutationCount() != 0 {
		t.Errorf("expected no remote calls, got %d", svc.MutationCount())
	}
}

func TestAddCommand_BadPriority(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetFields("", "urgent")
	_, stderr, code := runCommand(t, cmd, svc, []string{"x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid priority: urgent\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.MutationCount() != 0 {
		t.Error("expected no remote calls")
	}
}

func TestAddCommand_StaleReload(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errors.New("timeout")

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if stderr != "warning: task list may be stale: list tasks: timeout\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Tasks()) != 1 {
		t.Error("task should have been created")
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("502 bad gateway")

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: create task: 502 bad gateway\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	task := svc.AddTask("Walk dog", service.StatusIncomplete)

	cmd := &commands.EditCmd{}
	cmd.SetTitle("Walk the dog")
	cmd.SetPriority("low")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	got, _ := svc.Get(task.ID)
	if got.Title != "Walk the dog" || got.Priority != service.PriorityLow {
		t.Errorf("unexpected task %+v", got)
	}
	if got.Status != service.StatusIncomplete {
		t.Error("edit must not change status")
	}
}

func TestEditCommand_ClearDescription(t *testing.T) {
	svc := testutil.NewFakeService()
	created, _ := svc.CreateTask(context.Background(), service.NewTask{Title: "x", Description: "old"})

	cmd := &commands.EditCmd{}
	cmd.SetDescription("")
	_, _, code := runCommand(t, cmd, svc, []string{created.ID}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	got, _ := svc.Get(created.ID)
	if got.Description != "" {
		t.Errorf("expected description cleared, got %q", got.Description)
	}
}

func TestEditCommand_NothingToUpdate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "nothing to update") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand_BlankTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)

	cmd := &commands.EditCmd{}
	cmd.SetTitle("  ")
	_, _, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if svc.MutationCount() != 0 {
		t.Error("expected no remote calls")
	}
}

// Tests for done command
func TestDoneCommand_Toggles(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	task := svc.AddTask("Buy eggs", service.StatusIncomplete)

	cmd := &commands.DoneCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	got, _ := svc.Get(task.ID)
	if got.Status != service.StatusComplete {
		t.Errorf("expected Complete, got %s", got.Status)
	}

	// running it again reopens the task
	runCommand(t, cmd, svc, []string{"2"}, false)
	got, _ = svc.Get(task.ID)
	if got.Status != service.StatusIncomplete {
		t.Errorf("expected Incomplete, got %s", got.Status)
	}
}

func TestDoneCommand_LiteralID(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("first", service.StatusIncomplete)
	svc.AddTask("second", service.StatusIncomplete)
	third := svc.AddTask("third", service.StatusIncomplete)

	// "3" is both a position and an id here; --id picks the id
	cmd := &commands.DoneCmd{}
	cmd.SetLiteral(true)
	_, _, code := runCommand(t, cmd, svc, []string{third.ID}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	got, _ := svc.Get(third.ID)
	if got.Status != service.StatusComplete {
		t.Errorf("expected Complete, got %s", got.Status)
	}
}

func TestDoneCommand_RefErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no ref", nil, "error: task reference required\n"},
		{"zero", []string{"0"}, "error: task number out of range: 0\n"},
		{"out of range", []string{"5"}, "error: task number out of range: 5\n"},
		{"unknown id", []string{"abc"}, "error: task abc: not found\n"},
		{"two args", []string{"1", "2"}, "error: invalid task reference: 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			svc.AddTask("Only task", service.StatusIncomplete)

			stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, tt.args, false)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
			if svc.MutationCount() != 0 {
				t.Error("expected no remote calls")
			}
		})
	}
}

// Tests for rm command
func TestRmCommand_Confirmed(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	svc.AddTask("Buy eggs", service.StatusIncomplete)

	stdout, stderr, code := runWithInput(t, &commands.RmCmd{}, svc, []string{"1"}, false, "y\n")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if stderr != "\"Buy milk\": Delete this task? This cannot be undone. [y/N]: " {
		t.Errorf("unexpected prompt %q", stderr)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy eggs" {
		t.Errorf("expected only 'Buy eggs' to remain, got %+v", tasks)
	}
}

func TestRmCommand_Declined(t *testing.T) {
	for _, input := range []string{"n\n", "\n", ""} {
		svc := testutil.NewFakeService()
		svc.AddTask("Buy milk", service.StatusIncomplete)

		stdout, _, code := runWithInput(t, &commands.RmCmd{}, svc, []string{"1"}, false, input)

		if code != exitcode.Success {
			t.Errorf("input %q: expected exit code %d, got %d", input, exitcode.Success, code)
		}
		if stdout != "cancelled\n" {
			t.Errorf("input %q: expected 'cancelled', got %q", input, stdout)
		}
		if len(svc.DeleteCalls) != 0 || len(svc.Tasks()) != 1 {
			t.Errorf("input %q: task must not be deleted", input)
		}
	}
}

func TestRmCommand_Yes(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no prompt, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if len(svc.Tasks()) != 0 {
		t.Error("task should have been deleted")
	}
}

func TestRmCommand_NotFoundOnServer(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", service.StatusIncomplete)
	svc.DeleteTaskErr = service.ErrNotFound

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for chat command
func agentService(handle func(ctx context.Context, msg string) (service.Reply, error)) testutil.AgentService {
	return testutil.AgentService{
		FakeService: testutil.NewFakeService(),
		FakeAgent:   &testutil.FakeAgent{Handle: handle},
	}
}

func TestChatCommand_OneShot(t *testing.T) {
	svc := agentService(func(ctx context.Context, msg string) (service.Reply, error) {
		return service.Reply{Text: "You said: " + msg}, nil
	})

	stdout, stderr, code := runCommand(t, &commands.ChatCmd{}, svc, []string{"hello", "there"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "agent> You said: hello there\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if got := svc.Received(); len(got) != 1 || got[0] != "hello there" {
		t.Errorf("agent received %v", got)
	}
}

func TestChatCommand_Failure(t *testing.T) {
	svc := agentService(func(ctx context.Context, msg string) (service.Reply, error) {
		return service.Reply{}, errors.New("503 service unavailable")
	})

	stdout, stderr, code := runCommand(t, &commands.ChatCmd{}, svc, []string{"hi"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "agent> Sorry, I encountered an error. Please try again.\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "error: chat: 503 service unavailable\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestChatCommand_NoAgent(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.ChatCmd{}, svc, []string{"hi"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: chat is not available for this backend\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestChatCommand_Conversation(t *testing.T) {
	var svc testutil.AgentService
	svc = agentService(func(ctx context.Context, msg string) (service.Reply, error) {
		if strings.HasPrefix(msg, "add ") {
			svc.FakeService.AddTask(strings.TrimPrefix(msg, "add "), service.StatusIncomplete)
			return service.Reply{Text: "Added.", Refresh: true}, nil
		}
		return service.Reply{Text: "ok"}, nil
	})

	stdout, stderr, code := runWithInput(t, &commands.ChatCmd{}, svc, nil, true, "add Buy milk\n\nhow many?\nquit\nnot sent\n")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "agent> Hello! I am your Todo AI. How can I help you today?\n" +
		"agent> Added.\n" +
		"agent> ok\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if got := svc.Received(); len(got) != 2 {
		t.Errorf("expected 2 messages sent, got %v", got)
	}
	if len(svc.FakeService.Tasks()) != 1 {
		t.Error("agent-side mutation should have happened")
	}
}

func TestChatCommand_ConversationPrompt(t *testing.T) {
	svc := agentService(func(ctx context.Context, msg string) (service.Reply, error) {
		return service.Reply{Text: "hi"}, nil
	})

	stdout, _, _ := runWithInput(t, &commands.ChatCmd{}, svc, nil, false, "hello\n")

	expected := "agent> Hello! I am your Todo AI. How can I help you today?\n" +
		"user> agent> hi\n" +
		"user> \n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Commands that need no service must not touch it.
func TestNoAuthCommands(t *testing.T) {
	for _, cmd := range []commands.Command{
		&commands.HelpCmd{}, &commands.VersionCmd{}, &commands.LoginCmd{},
		&commands.LogoutCmd{}, &commands.SignupCmd{},
	} {
		if cmd.NeedsAuth() {
			t.Errorf("%s should not need auth", cmd.Name())
		}
	}
	for _, cmd := range []commands.Command{
		&commands.ListCmd{}, &commands.AddCmd{}, &commands.EditCmd{}, &commands.DoneCmd{},
		&commands.RmCmd{}, &commands.ChatCmd{}, &commands.TuiCmd{}, &commands.McpCmd{},
	} {
		if !cmd.NeedsAuth() {
			t.Errorf("%s should need auth", cmd.Name())
		}
	}
}
