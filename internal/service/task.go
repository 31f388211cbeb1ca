package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrMalformedDate = errors.New("malformed date")
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create сохраняет новую задачу; completion_date при создании не задаётся
func (s *TaskService) Create(ctx context.Context, form model.TaskForm) (model.Task, error) {
	t, err := s.parse(form)
	if err != nil {
		return t, err
	}
	t.CompletionDate = nil
	return s.repo.Create(ctx, t)
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

// Update overwrites every mutable field of task id. Empty end_date and
// completion_date clear the stored values.
func (s *TaskService) Update(ctx context.Context, id int64, form model.TaskForm) (model.Task, error) {
	// Сначала проверяем существование, чтобы 404 имел приоритет над ошибками формы
	if _, err := s.repo.Get(ctx, id); err != nil {
		return model.Task{}, err
	}

	t, err := s.parse(form)
	if err != nil {
		return t, err
	}
	if t.CompletionDate, err = optionalDate("completion_date", form.CompletionDate); err != nil {
		return t, err
	}
	t.ID = id
	return s.repo.Update(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Report returns one row per task with the days taken to complete it.
func (s *TaskService) Report(ctx context.Context) ([]model.ReportRow, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ReportRow, 0, len(tasks))
	for _, t := range tasks {
		row := model.ReportRow{
			ID:             t.ID,
			Title:          t.Title,
			Status:         t.Status,
			AssignedTo:     t.AssignedTo,
			StartDate:      t.StartDate,
			EndDate:        t.EndDate,
			CompletionDate: t.CompletionDate,
		}
		if t.CompletionDate != nil {
			days := model.DaysBetween(t.StartDate, *t.CompletionDate)
			row.TimeTaken = &days
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parse maps the fields shared by create and update onto a task.
func (s *TaskService) parse(form model.TaskForm) (model.Task, error) {
	var t model.Task

	required := []struct {
		name  string
		value string
	}{
		{"title", form.Title},
		{"start_date", form.StartDate},
		{"assigned_to", form.AssignedTo},
		{"status", form.Status},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return t, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	start, err := model.ParseDate(form.StartDate)
	if err != nil {
		return t, fmt.Errorf("%w: start_date %q", ErrMalformedDate, form.StartDate)
	}
	end, err := optionalDate("end_date", form.EndDate)
	if err != nil {
		return t, err
	}

	t.Title = form.Title
	t.Description = form.Description
	t.StartDate = start
	t.EndDate = end
	t.AssignedTo = form.AssignedTo
	t.Status = form.Status
	return t, nil
}

func optionalDate(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrMalformedDate, name, value)
	}
	return &d, nil
}
