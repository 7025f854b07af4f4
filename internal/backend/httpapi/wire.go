package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"evotodo/internal/service"
)

// wireID accepts a JSON number or string and keeps it as text.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid task id %s", b)
	}
	*id = wireID(n.String())
	return nil
}

// Zone-less timestamps are UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// wireTime accepts RFC 3339 and zone-less ISO timestamps.
type wireTime time.Time

func (t *wireTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = wireTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = wireTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

type wireTask struct {
	ID          wireID   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	CreatedAt   wireTime `json:"created_at"`
}

func (w wireTask) task() service.Task {
	t := service.Task{
		ID:        string(w.ID),
		Title:     w.Title,
		Priority:  service.Priority(w.Priority),
		Status:    service.Status(w.Status),
		CreatedAt: time.Time(w.CreatedAt),
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	if p, err := service.ParsePriority(w.Priority); err == nil {
		t.Priority = p
	}
	if s, err := service.ParseStatus(w.Status); err == nil {
		t.Status = s
	} else if strings.TrimSpace(w.Status) == "" {
		t.Status = service.StatusIncomplete
	}
	return t
}

type createRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority"`
}

// patchRequest carries only the fields being changed.
func patchRequest(f service.TaskFields) map[string]string {
	body := make(map[string]string, 4)
	if f.Title != nil {
		body["title"] = *f.Title
	}
	if f.Description != nil {
		body["description"] = *f.Description
	}
	if f.Priority != nil {
		body["priority"] = string(*f.Priority)
	}
	if f.Status != nil {
		body["status"] = string(*f.Status)
	}
	return body
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply   string `json:"reply"`
	Refresh bool   `json:"refresh"`
}
