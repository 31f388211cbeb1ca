package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL CHECK (title <> ''),
    description TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL,
    end_date TEXT,
    assigned_to TEXT NOT NULL,
    status TEXT NOT NULL,
    completion_date TEXT
);`

const sqliteColumns = `id, title, description, start_date, end_date, assigned_to, status, completion_date`

// SQLiteTaskRepo хранит задачи в локальном файле SQLite
type SQLiteTaskRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database file at path.
// The schema is not touched until EnsureSchema is called.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteTaskRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	file, dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(file); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Одно соединение: SQLite сериализует запись сам
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	return &SQLiteTaskRepo{db: conn, logger: logger}, nil
}

// sqliteDSN splits path into the database file and the driver DSN. Query
// parameters given with the path are kept; _busy_timeout defaults to 5s.
func sqliteDSN(path string) (string, string, error) {
	file, rawQuery, _ := strings.Cut(path, "?")
	if file == "" {
		return "", "", fmt.Errorf("empty database path")
	}

	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", "", fmt.Errorf("parse sqlite params %q: %w", rawQuery, err)
	}
	if !params.Has("_busy_timeout") && !params.Has("_timeout") {
		params.Set("_busy_timeout", "5000")
	}
	return file, "file:" + file + "?" + params.Encode(), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (r *SQLiteTaskRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	r.logger.Debug("sqlite schema ready")
	return nil
}

func (r *SQLiteTaskRepo) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, start_date, end_date, assigned_to, status, completion_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.Description, t.StartDate.Format(model.DateLayout), nullDate(t.EndDate),
		t.AssignedTo, t.Status, nullDate(t.CompletionDate))
	if err != nil {
		return t, fmt.Errorf("insert task: %w", r.mapError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return t, fmt.Errorf("task id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteTaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrorNotFound
	}
	if err != nil {
		return t, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, start_date = ?, end_date = ?,
		    assigned_to = ?, status = ?, completion_date = ?
		WHERE id = ?
	`, t.Title, t.Description, t.StartDate.Format(model.DateLayout), nullDate(t.EndDate),
		t.AssignedTo, t.Status, nullDate(t.CompletionDate), t.ID)
	if err != nil {
		return t, fmt.Errorf("update task: %w", r.mapError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return t, err
	}
	if affected == 0 {
		return t, ErrorNotFound
	}
	return r.Get(ctx, t.ID)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *SQLiteTaskRepo) mapError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", ErrorConstraint, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (model.Task, error) {
	var (
		t               model.Task
		start           string
		end, completion sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &start, &end, &t.AssignedTo, &t.Status, &completion); err != nil {
		return t, err
	}

	var err error
	if t.StartDate, err = model.ParseDate(start); err != nil {
		return t, fmt.Errorf("start_date of task %d: %w", t.ID, err)
	}
	if t.EndDate, err = parseNullDate(end); err != nil {
		return t, fmt.Errorf("end_date of task %d: %w", t.ID, err)
	}
	if t.CompletionDate, err = parseNullDate(completion); err != nil {
		return t, fmt.Errorf("completion_date of task %d: %w", t.ID, err)
	}
	return t, nil
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(model.DateLayout), Valid: true}
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
