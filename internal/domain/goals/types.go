package goals

import (
	"bytes"
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a goal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

// Next returns the status a toggle moves to: active, completed, paused, then
// back to active.
func (s Status) Next() Status {
	switch s {
	case StatusActive:
		return StatusCompleted
	case StatusCompleted:
		return StatusPaused
	default:
		return StatusActive
	}
}

// Config holds runtime knobs for the goals service.
type Config struct {
	StatsTTL time.Duration
}

// Goal is a user-owned objective.
type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	TargetDate  *string   `json:"targetDate,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Stats counts a user's goals by status.
type Stats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Paused    int64 `json:"paused"`
}

// CreateRequest captures a new goal.
type CreateRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	TargetDate  *string `json:"targetDate" validate:"omitnil,datetime=2006-01-02"`
}

// UpdateRequest is a partial update. Nil fields are left untouched;
// TargetDate may be explicitly cleared with null.
type UpdateRequest struct {
	Title       *string      `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string      `json:"description" validate:"omitnil,max=1000"`
	TargetDate  NullableDate `json:"targetDate" validate:"-"`
	Status      *Status      `json:"status" validate:"omitnil,oneof=active completed paused"`
}

// NullableDate distinguishes an absent field from an explicit null.
type NullableDate struct {
	Set   bool
	Value *string
}

// UnmarshalJSON only runs when the key is present.
func (d *NullableDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	d.Value = &value
	return nil
}

// DateOf sets a target date.
func DateOf(value string) NullableDate {
	return NullableDate{Set: true, Value: &value}
}

// ClearDate removes the target date.
func ClearDate() NullableDate {
	return NullableDate{Set: true}
}
