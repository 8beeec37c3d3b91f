package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/task-api/internal/api/middleware"
	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

type stubTaskService struct {
	listFn   func(ctx context.Context, ownerID string) ([]*domain.Task, error)
	getFn    func(ctx context.Context, ownerID, id string) (*domain.Task, error)
	createFn func(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error)
	updateFn func(ctx context.Context, ownerID, id string, input ports.UpdateTaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (s *stubTaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return s.listFn(ctx, ownerID)
}

func (s *stubTaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *stubTaskService) Create(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, ownerID, input)
}

func (s *stubTaskService) Update(ctx context.Context, ownerID, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, ownerID, id, input)
}

func (s *stubTaskService) Delete(ctx context.Context, ownerID, id string) error {
	return s.deleteFn(ctx, ownerID, id)
}

var caller = &domain.User{ID: "u1", Email: "alice@example.com"}

func authedContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := jsonContext(e, method, target, body)
	middleware.SetCurrentUser(c, caller)
	return c, rec
}

func sampleTask() *domain.Task {
	due := domain.Date{Year: 2026, Month: time.December, Day: 31}
	created := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:          "t1",
		UserID:      caller.ID,
		Title:       "Write report",
		Description: "Q4",
		Status:      domain.StatusPending,
		DueDate:     &due,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestTaskHandler_List(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{
		listFn: func(ctx context.Context, ownerID string) ([]*domain.Task, error) {
			if ownerID != caller.ID {
				t.Fatalf("listed for %q", ownerID)
			}
			return []*domain.Task{}, nil
		},
	})

	c, rec := authedContext(e, http.MethodGet, "/tasks", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestTaskHandler_Get_Representation(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Task, error) {
			if id != "t1" {
				t.Fatalf("unexpected id %q", id)
			}
			return sampleTask(), nil
		},
	})

	c, rec := authedContext(e, http.MethodGet, "/tasks/t1", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"id", "title", "description", "status", "due_date", "user_id", "created_at", "updated_at"} {
		if _, ok := resp[key]; !ok {
			t.Fatalf("missing %q in %v", key, resp)
		}
	}
	if resp["due_date"] != "2026-12-31" || resp["user_id"] != "u1" || resp["status"] != "pending" {
		t.Fatalf("unexpected payload: %v", resp)
	}
}

func TestTaskHandler_Get_NullDueDate(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Task, error) {
			task := sampleTask()
			task.DueDate = nil
			return task, nil
		},
	})

	c, rec := authedContext(e, http.MethodGet, "/tasks/t1", "")
	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if v, ok := resp["due_date"]; !ok || v != nil {
		t.Fatalf("expected due_date null, got %v (present=%v)", v, ok)
	}
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	})

	c, _ := authedContext(e, http.MethodGet, "/tasks/nope", "")
	if err := handler.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Create(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{
		createFn: func(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
			if ownerID != caller.ID {
				t.Fatalf("owner must come from the caller, got %q", ownerID)
			}
			if input.Title != "Write report" || input.Status != "pending" || input.IdempotencyKey != "k-1" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if input.DueDate == nil || input.DueDate.String() != "2026-12-31" {
				t.Fatalf("due date not parsed: %+v", input.DueDate)
			}
			return sampleTask(), nil
		},
	})

	c, rec := authedContext(e, http.MethodPost, "/tasks",
		`{"task":{"title":"Write report","status":"pending","due_date":"2026-12-31","user_id":"someone-else"}}`)
	c.Request().Header.Set(IdempotencyKeyHeader, "k-1")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestTaskHandler_Create_InvalidDueDate(t *testing.T) {
	e := newTestEcho()
	var got ports.CreateTaskInput
	handler := NewTaskHandler(&stubTaskService{
		createFn: func(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
			got = input
			ve := &domain.ValidationError{}
			ve.Add("due_date", "is invalid")
			return nil, ve
		},
	})

	c, _ := authedContext(e, http.MethodPost, "/tasks", `{"task":{"title":"x","status":"pending","due_date":"tomorrow"}}`)

	err := handler.Create(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !got.DueDateInvalid || got.DueDate != nil {
		t.Fatalf("expected malformed due date to be flagged, got %+v", got)
	}
}

func TestTaskHandler_Update_InvalidDueDate(t *testing.T) {
	e := newTestEcho()
	var got ports.UpdateTaskInput
	handler := NewTaskHandler(&stubTaskService{
		updateFn: func(ctx context.Context, ownerID, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
			got = input
			return &domain.Task{ID: id, Title: "x", Status: domain.StatusPending}, nil
		},
	})

	c, _ := authedContext(e, http.MethodPut, "/tasks/t1", `{"task":{"due_date":"31/12/2030"}}`)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := handler.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DueDateSet || !got.DueDateInvalid {
		t.Fatalf("expected malformed due date to be flagged, got %+v", got)
	}
}

func TestTaskHandler_Create_MissingRoot(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := authedContext(e, http.MethodPost, "/tasks", `{"title":"x"}`)
	expectHTTPError(t, handler.Create(c), http.StatusBadRequest)
}

func TestTaskHandler_Update_PartialFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, input ports.UpdateTaskInput)
	}{
		{
			name: "title only",
			body: `{"task":{"title":"Updated"}}`,
			check: func(t *testing.T, in ports.UpdateTaskInput) {
				if in.Title == nil || *in.Title != "Updated" || in.Status != nil || in.Description != nil || in.DueDateSet {
					t.Fatalf("unexpected input: %+v", in)
				}
			},
		},
		{
			name: "clear due date",
			body: `{"task":{"due_date":null}}`,
			check: func(t *testing.T, in ports.UpdateTaskInput) {
				if !in.DueDateSet || in.DueDate != nil {
					t.Fatalf("expected due date cleared: %+v", in)
				}
			},
		},
		{
			name: "set due date",
			body: `{"task":{"due_date":"2027-01-02"}}`,
			check: func(t *testing.T, in ports.UpdateTaskInput) {
				if !in.DueDateSet || in.DueDate == nil || in.DueDate.String() != "2027-01-02" {
					t.Fatalf("expected due date set: %+v", in)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			handler := NewTaskHandler(&stubTaskService{
				updateFn: func(ctx context.Context, ownerID, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
					if ownerID != caller.ID || id != "t1" {
						t.Fatalf("unexpected scope %s/%s", ownerID, id)
					}
					tt.check(t, input)
					return sampleTask(), nil
				},
			})

			c, rec := authedContext(e, http.MethodPut, "/tasks/t1", tt.body)
			c.SetParamNames("id")
			c.SetParamValues("t1")

			if err := handler.Update(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	e := newTestEcho()
	deleted := ""
	handler := NewTaskHandler(&stubTaskService{
		deleteFn: func(ctx context.Context, ownerID, id string) error {
			deleted = id
			return nil
		},
	})

	c, rec := authedContext(e, http.MethodDelete, "/tasks/t1", "")
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "t1" {
		t.Fatalf("expected 204 deleting t1, got %d deleting %q", rec.Code, deleted)
	}
}

func TestTaskHandler_WithoutGateFailsClosed(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := jsonContext(e, http.MethodGet, "/tasks", "")
	if err := handler.List(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
