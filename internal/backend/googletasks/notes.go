package googletasks

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	tasks "google.golang.org/api/tasks/v1"

	"evotodo/internal/service"
)

// Google tasks have no priority or creation time, so both ride along in
// the last line of the notes. created is absent for tasks made elsewhere.
var trailerRE = regexp.MustCompile(`(?:^|\n)\[evotodo priority=(\w+)(?: created=(\S+))?\]\s*$`)

// encodeNotes appends the metadata line to description. A zero created
// is left out rather than invented.
func encodeNotes(description string, priority service.Priority, created time.Time) string {
	trailer := fmt.Sprintf("[evotodo priority=%s]", priority)
	if !created.IsZero() {
		trailer = fmt.Sprintf("[evotodo priority=%s created=%s]", priority, created.UTC().Format(time.RFC3339))
	}
	if description == "" {
		return trailer
	}
	return description + "\n" + trailer
}

// decodeNotes splits notes into the description and the metadata line.
// ok is false when there is no valid metadata line; description is then
// the whole of notes.
func decodeNotes(notes string) (description string, priority service.Priority, created time.Time, ok bool) {
	m := trailerRE.FindStringSubmatchIndex(notes)
	if m == nil {
		return notes, "", time.Time{}, false
	}
	p, err := service.ParsePriority(notes[m[2]:m[3]])
	if err != nil {
		return notes, "", time.Time{}, false
	}
	var at time.Time
	if m[4] >= 0 {
		at, err = time.Parse(time.RFC3339, notes[m[4]:m[5]])
		if err != nil {
			return notes, "", time.Time{}, false
		}
	}
	return strings.TrimRight(notes[:m[0]], "\n"), p, at, true
}

const (
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

func toGoogleStatus(s service.Status) string {
	if s == service.StatusComplete {
		return statusCompleted
	}
	return statusNeedsAction
}

func fromGoogle(gt *tasks.Task) service.Task {
	t := service.Task{
		ID:     gt.Id,
		Title:  gt.Title,
		Status: service.StatusIncomplete,
	}
	if gt.Status == statusCompleted {
		t.Status = service.StatusComplete
	}

	description, priority, created, ok := decodeNotes(gt.Notes)
	t.Description = description
	t.Priority = service.DefaultPriority
	if ok {
		t.Priority = priority
		t.CreatedAt = created
	}
	return t
}
