package repository

import (
	"context"
	"database/sql"

	"github.com/jask/jasktodo/internal/store"
)

// TaskRepo keeps tasks in the sqlite tasks table. It satisfies store.Backend.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Append(ctx context.Context, t store.Task) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO tasks(id, text) VALUES (?, ?)`, string(t.ID), t.Text)
	return err
}

func (r *TaskRepo) SetText(ctx context.Context, id store.ID, text string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET text = ? WHERE id = ?`, text, string(id))
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *TaskRepo) Remove(ctx context.Context, id store.ID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, string(id))
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *TaskRepo) Contains(ctx context.Context, id store.ID) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, string(id))
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *TaskRepo) All(ctx context.Context) ([]store.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, text FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Task
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, err
		}
		out = append(out, store.Task{ID: store.ID(id), Text: text})
	}
	return out, rows.Err()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
