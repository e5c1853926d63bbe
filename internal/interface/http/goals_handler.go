package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/lifeboard/internal/domain/goals"
)

// ListGoals returns the caller's goals, newest first.
func (h *Handler) ListGoals(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.goalsSvc.List(c.Request.Context(), identity.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, items, "")
}

// GoalStats returns per-status counts.
func (h *Handler) GoalStats(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	stats, err := h.goalsSvc.Stats(c.Request.Context(), identity.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "")
}

// GoalsByStatus filters the caller's goals.
func (h *Handler) GoalsByStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.goalsSvc.ListByStatus(c.Request.Context(), identity.UserID, c.Param("status"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, items, "")
}

// GetGoal returns a single goal.
func (h *Handler) GetGoal(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	goal, err := h.goalsSvc.Get(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, goal, "")
}

// CreateGoal stores a new goal.
func (h *Handler) CreateGoal(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req goals.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.goalsSvc.Create(c.Request.Context(), identity.UserID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, goal, "Goal created successfully")
}

// UpdateGoal applies a partial update.
func (h *Handler) UpdateGoal(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req goals.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.goalsSvc.Update(c.Request.Context(), identity.UserID, c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, goal, "Goal updated successfully")
}

// ToggleGoal advances the goal to its next status.
func (h *Handler) ToggleGoal(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	goal, err := h.goalsSvc.ToggleStatus(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, goal, "Goal status updated successfully")
}

// DeleteGoal removes a goal.
func (h *Handler) DeleteGoal(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.goalsSvc.Delete(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Goal deleted successfully")
}
