package goalrepo

import (
	"context"
	"time"

	"github.com/yanqian/lifeboard/internal/domain/goals"
	"github.com/yanqian/lifeboard/internal/infra/postgres"
)

const goalColumns = `id::text, user_id::text, title, description, to_char(target_date, 'YYYY-MM-DD'), status, created_at, updated_at`

// PostgresRepository implements goals.Repository using pgx.
type PostgresRepository struct {
	pool postgres.DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool postgres.DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the user's goals newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, status *goals.Status) ([]goals.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1::uuid`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]goals.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, goal)
	}
	return out, rows.Err()
}

// Get fetches a goal owned by userID.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (goals.Goal, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE id = $1::uuid AND user_id = $2::uuid
		LIMIT 1
	`, id, userID)
	if err != nil {
		return goals.Goal{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return goals.Goal{}, false, rows.Err()
	}
	goal, err := scanGoal(rows)
	if err != nil {
		return goals.Goal{}, false, err
	}
	return goal, true, rows.Err()
}

// Create inserts an active goal.
func (r *PostgresRepository) Create(ctx context.Context, userID string, req goals.CreateRequest) (goals.Goal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO goals (user_id, title, description, target_date)
		VALUES ($1, $2, $3, $4::date)
		RETURNING `+goalColumns, userID, req.Title, req.Description, req.TargetDate)
	return scanGoal(row)
}

// Update applies the non-nil fields of req in a single statement.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, req goals.UpdateRequest) (goals.Goal, error) {
	var status *string
	if req.Status != nil {
		s := string(*req.Status)
		status = &s
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE goals
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			target_date = CASE WHEN $5 THEN $6::date ELSE target_date END,
			status = COALESCE($7, status),
			updated_at = now()
		WHERE id = $1::uuid AND user_id = $2::uuid
		RETURNING `+goalColumns,
		id, userID, req.Title, req.Description, req.TargetDate.Set, req.TargetDate.Value, status)
	goal, err := scanGoal(row)
	if err != nil {
		if postgres.IsNoRows(err) {
			return goals.Goal{}, goals.ErrGoalNotFound
		}
		return goals.Goal{}, err
	}
	return goal, nil
}

// Delete removes a goal owned by userID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM goals
		WHERE id = $1::uuid AND user_id = $2::uuid
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return goals.ErrGoalNotFound
	}
	return nil
}

// Count tallies the user's goals, optionally by status.
func (r *PostgresRepository) Count(ctx context.Context, userID string, status *goals.Status) (int64, error) {
	query := `SELECT count(*) FROM goals WHERE user_id = $1::uuid`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (goals.Goal, error) {
	var (
		goal             goals.Goal
		status           string
		created, updated time.Time
	)
	if err := row.Scan(&goal.ID, &goal.UserID, &goal.Title, &goal.Description, &goal.TargetDate, &status, &created, &updated); err != nil {
		return goals.Goal{}, err
	}
	goal.Status = goals.Status(status)
	goal.CreatedAt = created.UTC()
	goal.UpdatedAt = updated.UTC()
	return goal, nil
}

var _ goals.Repository = (*PostgresRepository)(nil)
