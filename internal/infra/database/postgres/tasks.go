package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/task-manager/internal/domain"
)

const taskColumns = "id, title, description, status, user_id, created_at, updated_at"

func (r *PGRepo) tasksTable() string { return fmt.Sprintf("%s.tasks", r.schema) }

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGRepo) CreateTask(ctx context.Context, title, description string, owner domain.UserID) (domain.Task, error) {
	q := r.qb().Insert(r.tasksTable()).
		Columns("title", "description", "status", "user_id").
		Values(title, description, domain.StatusOpen, owner).
		Suffix("RETURNING " + taskColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateTask", sqlStr, args)

	start := time.Now()
	t, err := scanTask(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateTask scan error after %s: %v", time.Since(start), err)
		return domain.Task{}, err
	}
	r.logger.Printf("CreateTask ok in %s id=%s title=%q", time.Since(start), t.ID, t.Title)
	return t, nil
}

// Чужая задача неотличима от несуществующей — владелец входит в WHERE.
func (r *PGRepo) TaskByID(ctx context.Context, id domain.TaskID, owner domain.UserID) (domain.Task, error) {
	q := r.qb().Select(taskColumns).
		From(r.tasksTable()).
		Where(sq.Eq{"id": id, "user_id": owner})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("TaskByID", sqlStr, args)

	start := time.Now()
	t, err := scanTask(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("TaskByID not found in %s id=%s", time.Since(start), id)
			return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Printf("TaskByID scan error after %s: %v", time.Since(start), err)
		return domain.Task{}, err
	}
	r.logger.Printf("TaskByID ok in %s id=%s", time.Since(start), t.ID)
	return t, nil
}

func (r *PGRepo) TasksList(ctx context.Context, owner domain.UserID) ([]domain.Task, error) {
	q := r.qb().Select(taskColumns).
		From(r.tasksTable()).
		Where(sq.Eq{"user_id": owner}).
		OrderBy("created_at DESC", "id DESC")

	return r.queryTasks(ctx, "TasksList", q)
}

func (r *PGRepo) TasksFiltered(ctx context.Context, owner domain.UserID, f domain.TaskFilter) ([]domain.Task, error) {
	q := r.qb().Select(taskColumns).
		From(r.tasksTable()).
		Where(sq.Eq{"user_id": owner}).
		OrderBy("created_at DESC", "id DESC")

	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": like},
			sq.ILike{"description": like},
		})
	}

	return r.queryTasks(ctx, "TasksFiltered", q)
}

func (r *PGRepo) queryTasks(ctx context.Context, op string, q sq.SelectBuilder) ([]domain.Task, error) {
	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("%s query error after %s: %v", op, time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Printf("%s scan error: %v", op, err)
			return nil, err
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("%s rows error: %v", op, err)
		return nil, err
	}
	r.logger.Printf("%s ok in %s count=%d", op, time.Since(start), len(res))
	return res, nil
}

// DeleteTask возвращает последнее состояние удалённой строки (RETURNING).
func (r *PGRepo) DeleteTask(ctx context.Context, id domain.TaskID, owner domain.UserID) (domain.Task, error) {
	q := r.qb().Delete(r.tasksTable()).
		Where(sq.Eq{"id": id, "user_id": owner}).
		Suffix("RETURNING " + taskColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteTask", sqlStr, args)

	start := time.Now()
	t, err := scanTask(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("DeleteTask not found in %s id=%s", time.Since(start), id)
			return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Printf("DeleteTask error after %s: %v", time.Since(start), err)
		return domain.Task{}, err
	}
	r.logger.Printf("DeleteTask ok in %s id=%s", time.Since(start), t.ID)
	return t, nil
}

func (r *PGRepo) UpdateTaskStatus(ctx context.Context, id domain.TaskID, owner domain.UserID, status domain.TaskStatus) (domain.Task, error) {
	q := r.qb().Update(r.tasksTable()).
		SetMap(map[string]any{
			"status":     status,
			"updated_at": sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": id, "user_id": owner}).
		Suffix("RETURNING " + taskColumns)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdateTaskStatus", sqlStr, args)

	start := time.Now()
	t, err := scanTask(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("UpdateTaskStatus not found in %s id=%s", time.Since(start), id)
			return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Printf("UpdateTaskStatus error after %s: %v", time.Since(start), err)
		return domain.Task{}, err
	}
	r.logger.Printf("UpdateTaskStatus ok in %s id=%s status=%s", time.Since(start), t.ID, t.Status)
	return t, nil
}
