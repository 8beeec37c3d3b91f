package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// optionalDate tracks whether due_date was present in the payload and
// whether it was null, which plain *string cannot express.
type optionalDate struct {
	Set   bool
	Value *string
}

func (d *optionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(data, []byte("null")) {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d.Value = &s
	return nil
}

// parse returns the date, or nil for null or empty. malformed reports a
// value that is not a YYYY-MM-DD date.
func (d optionalDate) parse() (date *domain.Date, malformed bool) {
	if d.Value == nil || *d.Value == "" {
		return nil, false
	}
	parsed, err := domain.ParseDate(*d.Value)
	if err != nil {
		return nil, true
	}
	return &parsed, false
}

// taskPayload is the writable part of a task. user_id is not a field, so a
// client-supplied owner is dropped during decoding.
type taskPayload struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	DueDate     optionalDate `json:"due_date" swaggertype:"string" example:"2026-12-31"`
}

type taskRequest struct {
	Task *taskPayload `json:"task"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"due_date"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		s := t.DueDate.String()
		resp.DueDate = &s
	}
	return resp
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
