package goals

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
	"github.com/yanqian/lifeboard/pkg/util"
	"github.com/yanqian/lifeboard/pkg/validation"
)

const defaultStatsTTL = 5 * time.Minute

// Service exposes goal management for an authenticated user.
type Service interface {
	List(ctx context.Context, userID string) ([]Goal, error)
	Get(ctx context.Context, userID, id string) (Goal, error)
	Create(ctx context.Context, userID string, req CreateRequest) (Goal, error)
	Update(ctx context.Context, userID, id string, req UpdateRequest) (Goal, error)
	Delete(ctx context.Context, userID, id string) error
	ListByStatus(ctx context.Context, userID, status string) ([]Goal, error)
	Stats(ctx context.Context, userID string) (Stats, error)
	ToggleStatus(ctx context.Context, userID, id string) (Goal, error)
}

type service struct {
	cfg       Config
	repo      Repository
	cache     StatsCache
	validator *validation.Validator
	logger    *slog.Logger

	// generations counts invalidations per user so Stats never caches
	// counts that a concurrent mutation has already superseded.
	genMu       sync.Mutex
	generations map[string]uint64
}

var requestMessages = validation.Messages{
	"title.required":      "Title is required",
	"title.min":           "Title must be at least 1 character",
	"title.max":           "Title must be less than 255 characters",
	"description.max":     "Description must be less than 1000 characters",
	"targetDate.datetime": "Target date must be in YYYY-MM-DD format",
	"status.oneof":        "Invalid status. Must be: active, completed, or paused",
}

// NewService wires up the goals domain. A nil cache disables stats caching.
func NewService(cfg Config, repo Repository, cache StatsCache, logger *slog.Logger) Service {
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = defaultStatsTTL
	}
	return &service{
		cfg:       cfg,
		repo:      repo,
		cache:     cache,
		validator:   validation.New(),
		logger:      logger.With("component", "goals.service"),
		generations: make(map[string]uint64),
	}
}

func (s *service) List(ctx context.Context, userID string) ([]Goal, error) {
	items, err := s.repo.List(ctx, userID, nil)
	if err != nil {
		return nil, errInternal("failed to fetch goals", err)
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, userID, id string) (Goal, error) {
	if err := checkID(id); err != nil {
		return Goal{}, err
	}
	goal, found, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Goal{}, errInternal("failed to find goal", err)
	}
	if !found {
		return Goal{}, errNotFound(nil)
	}
	return goal, nil
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (Goal, error) {
	req.Description = emptyToNil(req.Description)
	req.TargetDate = emptyToNil(req.TargetDate)
	if err := s.validate(req); err != nil {
		return Goal{}, err
	}
	goal, err := s.repo.Create(ctx, userID, req)
	if err != nil {
		return Goal{}, errInternal("failed to create goal", err)
	}
	s.invalidate(ctx, userID)
	s.logger.Info("goal created", "user_id", userID, "goal_id", goal.ID)
	return goal, nil
}

func (s *service) Update(ctx context.Context, userID, id string, req UpdateRequest) (Goal, error) {
	if err := checkID(id); err != nil {
		return Goal{}, err
	}
	violations, err := s.validator.Violations(req, requestMessages)
	if err != nil {
		return Goal{}, errInternal("failed to validate request", err)
	}
	if req.TargetDate.Set && req.TargetDate.Value != nil {
		if _, err := util.ParseDate(*req.TargetDate.Value); err != nil {
			violations = append(violations, requestMessages["targetDate.datetime"])
		}
	}
	if len(violations) > 0 {
		return Goal{}, apperrors.Validation(violations)
	}
	return s.update(ctx, userID, id, req)
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			return errNotFound(err)
		}
		return errInternal("failed to delete goal", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) ListByStatus(ctx context.Context, userID, status string) ([]Goal, error) {
	st := Status(status)
	if !st.Valid() {
		return nil, apperrors.Validation([]string{requestMessages["status.oneof"]})
	}
	items, err := s.repo.List(ctx, userID, &st)
	if err != nil {
		return nil, errInternal("failed to fetch goals by status", err)
	}
	return items, nil
}

func (s *service) Stats(ctx context.Context, userID string) (Stats, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("stats cache read failed", "user_id", userID, "error", err)
		} else if found {
			return cached, nil
		}
	}

	gen := s.generation(userID)
	var stats Stats
	counters := []struct {
		status *Status
		dst    *int64
	}{
		{nil, &stats.Total},
		{statusPtr(StatusActive), &stats.Active},
		{statusPtr(StatusCompleted), &stats.Completed},
		{statusPtr(StatusPaused), &stats.Paused},
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			n, err := s.repo.Count(gctx, userID, c.status)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, errInternal("failed to get goal statistics", err)
	}

	if s.cache != nil && s.generation(userID) == gen {
		if err := s.cache.Set(ctx, userID, stats, s.cfg.StatsTTL); err != nil {
			s.logger.Warn("stats cache write failed", "user_id", userID, "error", err)
		}
		// A mutation may have invalidated between the check and the write.
		if s.generation(userID) != gen {
			s.dropCached(ctx, userID)
		}
	}
	return stats, nil
}

func (s *service) ToggleStatus(ctx context.Context, userID, id string) (Goal, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return Goal{}, err
	}
	next := current.Status.Next()
	return s.update(ctx, userID, id, UpdateRequest{Status: &next})
}

func (s *service) update(ctx context.Context, userID, id string, req UpdateRequest) (Goal, error) {
	goal, err := s.repo.Update(ctx, userID, id, req)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			return Goal{}, errNotFound(err)
		}
		return Goal{}, errInternal("failed to update goal", err)
	}
	s.invalidate(ctx, userID)
	return goal, nil
}

func (s *service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	s.generations[userID]++
	s.genMu.Unlock()
	s.dropCached(ctx, userID)
}

func (s *service) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

func (s *service) dropCached(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("stats cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (s *service) validate(req any) error {
	violations, err := s.validator.Violations(req, requestMessages)
	if err != nil {
		return errInternal("failed to validate request", err)
	}
	if len(violations) > 0 {
		return apperrors.Validation(violations)
	}
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation([]string{"Invalid goal ID"})
	}
	return nil
}

func errNotFound(err error) error {
	return apperrors.Wrap(apperrors.CodeNotFound, "Goal not found", err)
}

func errInternal(msg string, err error) error {
	return apperrors.Wrap(apperrors.CodeInternal, msg, err)
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func statusPtr(s Status) *Status {
	return &s
}
