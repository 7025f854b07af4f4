// Package output provides formatters for CLI output.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"evotodo/internal/service"
)

// CreatedLayout is how creation times are shown in long listings.
const CreatedLayout = "2006-01-02 15:04 MST"

// FormatTask formats one task line.
// Format: "{N:>4}  [{x| }] {TITLE}  ({PRIORITY})\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s  (%s)\n", num, checkbox(task), normalizeTitle(task.Title), task.Priority)
}

// FormatTaskLong formats a task line followed by its description and
// creation time, each indented under the title.
func FormatTaskLong(w io.Writer, num int, task service.Task) {
	FormatTask(w, num, task)
	const indent = "          "
	if desc := strings.TrimSpace(task.Description); desc != "" {
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(w, "%s%s\n", indent, strings.TrimRight(line, "\r"))
		}
	}
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "%screated %s\n", indent, task.CreatedAt.UTC().Format(CreatedLayout))
	}
}

// FormatStale writes the warning shown when the listed tasks may be out of date.
func FormatStale(w io.Writer, err error) {
	var stale *service.StaleReadError
	if errors.As(err, &stale) && !stale.Since.IsZero() {
		fmt.Fprintf(w, "warning: %v (showing tasks loaded %s)\n", err, stale.Since.UTC().Format(CreatedLayout))
		return
	}
	fmt.Fprintf(w, "warning: %v\n", err)
}

// FormatChatMessage formats one conversation entry as "{role}> {text}".
func FormatChatMessage(w io.Writer, role, text string) {
	fmt.Fprintf(w, "%s> %s\n", role, text)
}

func checkbox(task service.Task) string {
	if task.Done() {
		return "[x]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
