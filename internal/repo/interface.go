package repo

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrorNotFound   = errors.New("not found")
	ErrorConstraint = errors.New("constraint violation")
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}
