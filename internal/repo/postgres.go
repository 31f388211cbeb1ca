package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL CHECK (title <> ''),
    description TEXT NOT NULL DEFAULT '',
    start_date DATE NOT NULL,
    end_date DATE,
    assigned_to TEXT NOT NULL,
    status TEXT NOT NULL,
    completion_date DATE
)`

const postgresColumns = `id, title, description, start_date, end_date, assigned_to, status, completion_date`

type PostgresTaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresTaskRepo(pool *pgxpool.Pool, logger *zap.Logger) *PostgresTaskRepo { // Конструктор
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresTaskRepo{
		pool:   pool,
		logger: logger,
	}
}

// OpenPostgres connects to databaseURL and checks the connection.
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresTaskRepo, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresTaskRepo(pool, logger), nil
}

func (r *PostgresTaskRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	r.logger.Debug("postgres schema ready")
	return nil
}

func (r *PostgresTaskRepo) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, start_date, end_date, assigned_to, status, completion_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+postgresColumns,
		t.Title, t.Description, t.StartDate, t.EndDate, t.AssignedTo, t.Status, t.CompletionDate)

	created, err := scanPostgresTask(row)
	if err != nil {
		return t, fmt.Errorf("insert task: %w", r.mapError(err))
	}
	return created, nil
}

func (r *PostgresTaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanPostgresTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	if err != nil {
		return t, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *PostgresTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postgresColumns+` FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanPostgresTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PostgresTaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, start_date = $4, end_date = $5,
		    assigned_to = $6, status = $7, completion_date = $8
		WHERE id = $1
		RETURNING `+postgresColumns,
		t.ID, t.Title, t.Description, t.StartDate, t.EndDate, t.AssignedTo, t.Status, t.CompletionDate)

	updated, err := scanPostgresTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	if err != nil {
		return t, fmt.Errorf("update task: %w", r.mapError(err))
	}
	return updated, nil
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *PostgresTaskRepo) mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502", "23514", "22001": // not_null_violation, check_violation, string_data_right_truncation
			return fmt.Errorf("%w: %s", ErrorConstraint, pgErr.Message)
		}
	}
	return err
}

func scanPostgresTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.StartDate, &t.EndDate,
		&t.AssignedTo, &t.Status, &t.CompletionDate)
	return t, err
}
