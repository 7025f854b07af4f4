package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"evotodo/internal/service"
	"evotodo/internal/taskpage"
)

// TaskRef is a parsed task reference: either a 1-based position in the
// listing or a literal task id.
type TaskRef struct {
	Num int    // 1-based position, 0 when ID is set
	ID  string // literal task id
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// A reference is a single argument. All digits means a position in the
// listing, anything else is a task id. With literal set the argument is
// always an id, which is how numeric server ids are addressed.
func ParseTaskRef(args []string, literal bool) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", strings.Join(args, " "))
	}

	ref := strings.TrimSpace(args[0])
	if literal || !isAllDigits(ref) {
		return TaskRef{ID: ref}, nil
	}

	num, err := strconv.Atoi(ref)
	if err != nil {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
	}
	if num < 1 {
		return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
	}
	return TaskRef{Num: num}, nil
}

// Resolve finds the referenced task in the page's current snapshot.
// Callers reload first so positions match a fresh listing.
func (r TaskRef) Resolve(page *taskpage.Page) (service.Task, error) {
	if r.ID != "" {
		task, ok := page.Find(r.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("task %s: %w", r.ID, service.ErrNotFound)
		}
		return task, nil
	}

	tasks := page.Tasks()
	if r.Num < 1 || r.Num > len(tasks) {
		return service.Task{}, &service.ValidationError{
			Field:   "ref",
			Message: fmt.Sprintf("task number out of range: %d", r.Num),
		}
	}
	return tasks[r.Num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
