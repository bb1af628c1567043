package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/bunx"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunTaskRepository implements TaskRepository using Bun ORM
type BunTaskRepository struct {
	db *bun.DB
}

// NewBunTaskRepository creates a new Bun-based task repository
func NewBunTaskRepository(db *bun.DB) *BunTaskRepository {
	return &BunTaskRepository{db: db}
}

// Create inserts a new task
func (r *BunTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Title == "" {
		return fmt.Errorf("title is required")
	}
	if task.ID == "" {
		task.ID = bunx.NewUUIDv7()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(task).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by ID. Malformed IDs are reported as not found.
func (r *BunTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	task := new(models.Task)
	err := r.db.NewSelect().
		Model(task).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get task by ID: %w", err)
	}
	return task, nil
}

// Update replaces the editable columns of an existing task
func (r *BunTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model(task).
		Column("title", "description", "due_date", "completed", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(result, "task", task.ID)
}

// Delete removes a task by ID
func (r *BunTaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	result, err := r.db.NewDelete().
		Model((*models.Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result, "task", id)
}

// List retrieves all tasks, newest first
func (r *BunTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.NewSelect().
		Model(&tasks).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func requireAffected(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
