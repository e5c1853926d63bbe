package goals

import (
	"context"
	"errors"
	"time"
)

// ErrGoalNotFound is returned when a goal does not exist for the user.
var ErrGoalNotFound = errors.New("goal not found")

// Repository persists goals. Every call is scoped to the owning user.
type Repository interface {
	List(ctx context.Context, userID string, status *Status) ([]Goal, error)
	Get(ctx context.Context, userID, id string) (Goal, bool, error)
	Create(ctx context.Context, userID string, req CreateRequest) (Goal, error)
	Update(ctx context.Context, userID, id string, req UpdateRequest) (Goal, error)
	Delete(ctx context.Context, userID, id string) error
	// Count with a nil status counts every goal.
	Count(ctx context.Context, userID string, status *Status) (int64, error)
}

// StatsCache stores computed statistics per user.
type StatsCache interface {
	Get(ctx context.Context, userID string) (Stats, bool, error)
	Set(ctx context.Context, userID string, stats Stats, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
