// Package task implements task CRUD on top of the task repository, with
// JSON-schema input validation and go-bexpr list filtering.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/repository"
)

// MaxBodyBytes bounds the size of a task input document.
const MaxBodyBytes = 1 << 20

const filterCacheSize = 256

// Input carries the writable task fields. Update replaces all of them.
type Input struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
}

// Service orchestrates task persistence for HTTP handlers.
type Service struct {
	repo      repository.TaskRepository
	validator *InputValidator
	filters   *lru.Cache[string, *bexpr.Evaluator]
	now       func() time.Time
}

// NewService constructs a Service backed by repo.
func NewService(repo repository.TaskRepository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("task service requires a repository")
	}

	validator, err := NewInputValidator()
	if err != nil {
		return nil, err
	}

	filters, err := lru.New[string, *bexpr.Evaluator](filterCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create filter cache: %w", err)
	}

	return &Service{
		repo:      repo,
		validator: validator,
		filters:   filters,
		now:       time.Now,
	}, nil
}

// WithClock replaces the clock used to compute overdue. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DecodeInput reads and validates a JSON task document.
func (s *Service) DecodeInput(r io.Reader) (Input, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return Input{}, fmt.Errorf("read task input: %w", err)
	}
	if len(raw) > MaxBodyBytes {
		return Input{}, &ValidationError{Fields: []FieldError{{Field: "$", Message: "request body too large"}}}
	}

	if err := s.validator.ValidateDocument(raw); err != nil {
		return Input{}, err
	}

	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}, &ValidationError{Fields: []FieldError{{Field: "$", Message: err.Error()}}}
	}
	return in, nil
}

// ListTasks returns all tasks, newest first. A non-blank filter is a go-bexpr
// expression evaluated against each task's filter fields, e.g.
// `completed == false and overdue == true`.
func (s *Service) ListTasks(ctx context.Context, filter string) ([]models.Task, error) {
	var evaluator *bexpr.Evaluator
	if strings.TrimSpace(filter) != "" {
		var err error
		if evaluator, err = s.evaluator(filter); err != nil {
			return nil, err
		}
	}

	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if evaluator == nil {
		return tasks, nil
	}

	now := s.now()
	matched := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		ok, err := evaluator.Evaluate(tasks[i].FilterFields(now))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		if ok {
			matched = append(matched, tasks[i])
		}
	}
	return matched, nil
}

// CreateTask validates in and persists a new task.
func (s *Service) CreateTask(ctx context.Context, in Input) (*models.Task, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Completed:   in.Completed,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// GetTask returns the task with id. Ids that are not UUIDs are not found.
func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	return task, nil
}

// UpdateTask replaces the writable fields of task id with in.
func (s *Service) UpdateTask(ctx context.Context, id string, in Input) (*models.Task, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, id)
	}

	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.Completed = in.Completed

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, mapNotFound(err, id)
	}
	return task, nil
}

// DeleteTask removes task id.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err, id)
	}
	return nil
}

// evaluator compiles filter once and caches the evaluator.
func (s *Service) evaluator(filter string) (*bexpr.Evaluator, error) {
	if cached, ok := s.filters.Get(filter); ok {
		return cached, nil
	}
	evaluator, err := bexpr.CreateEvaluator(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	s.filters.Add(filter, evaluator)
	return evaluator, nil
}

func mapNotFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return fmt.Errorf("task %s: %w", id, err)
}
