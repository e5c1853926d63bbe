package goalrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/lifeboard/internal/domain/goals"
	"github.com/yanqian/lifeboard/pkg/util"
)

type memoryGoal struct {
	goal goals.Goal
	seq  int64
}

// MemoryRepository keeps goals in process memory for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	goals map[string]memoryGoal
	seq   int64
	now   util.Clock
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		goals: make(map[string]memoryGoal),
		now:   util.NowUTC,
	}
}

// List returns the user's goals newest first.
func (r *MemoryRepository) List(_ context.Context, userID string, status *goals.Status) ([]goals.Goal, error) {
	r.mu.RLock()
	matches := make([]memoryGoal, 0)
	for _, item := range r.goals {
		if item.goal.UserID != userID {
			continue
		}
		if status != nil && item.goal.Status != *status {
			continue
		}
		matches = append(matches, item)
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].goal.CreatedAt.Equal(matches[j].goal.CreatedAt) {
			return matches[i].seq > matches[j].seq
		}
		return matches[i].goal.CreatedAt.After(matches[j].goal.CreatedAt)
	})
	out := make([]goals.Goal, 0, len(matches))
	for _, item := range matches {
		out = append(out, clone(item.goal))
	}
	return out, nil
}

// Get fetches a goal owned by userID.
func (r *MemoryRepository) Get(_ context.Context, userID, id string) (goals.Goal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.goals[id]
	if !ok || item.goal.UserID != userID {
		return goals.Goal{}, false, nil
	}
	return clone(item.goal), true, nil
}

// Create stores a new active goal.
func (r *MemoryRepository) Create(_ context.Context, userID string, req goals.CreateRequest) (goals.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.seq++
	goal := goals.Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: copyString(req.Description),
		TargetDate:  copyString(req.TargetDate),
		Status:      goals.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.goals[goal.ID] = memoryGoal{goal: goal, seq: r.seq}
	return clone(goal), nil
}

// Update applies the non-nil fields of req.
func (r *MemoryRepository) Update(_ context.Context, userID, id string, req goals.UpdateRequest) (goals.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.goals[id]
	if !ok || item.goal.UserID != userID {
		return goals.Goal{}, goals.ErrGoalNotFound
	}
	goal := item.goal
	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = copyString(req.Description)
	}
	if req.TargetDate.Set {
		goal.TargetDate = copyString(req.TargetDate.Value)
	}
	if req.Status != nil {
		goal.Status = *req.Status
	}
	goal.UpdatedAt = r.now()
	item.goal = goal
	r.goals[id] = item
	return clone(goal), nil
}

// Delete removes a goal owned by userID.
func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.goals[id]
	if !ok || item.goal.UserID != userID {
		return goals.ErrGoalNotFound
	}
	delete(r.goals, id)
	return nil
}

// Count tallies the user's goals, optionally by status.
func (r *MemoryRepository) Count(_ context.Context, userID string, status *goals.Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, item := range r.goals {
		if item.goal.UserID != userID {
			continue
		}
		if status != nil && item.goal.Status != *status {
			continue
		}
		n++
	}
	return n, nil
}

func clone(g goals.Goal) goals.Goal {
	g.Description = copyString(g.Description)
	g.TargetDate = copyString(g.TargetDate)
	return g
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

var _ goals.Repository = (*MemoryRepository)(nil)
