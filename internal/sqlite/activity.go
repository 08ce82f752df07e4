package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketdesk/internal/domain/activity"
	"marketdesk/internal/wire"
)

// ActivityRepository persists activities for the development server.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListActivitiesOptions provides filtering and paging for listing activities.
type ListActivitiesOptions struct {
	Status    string
	Frequency string
	MarketID  string
	Search    string
	Start     *time.Time
	End       *time.Time
	Page      int
	Limit     int
}

const activityColumns = `id, name, description, scheduled_time, frequency, status, market_id, last_completed, created_at, updated_at`

// List returns one page of activities plus the total count of matches.
func (r *ActivityRepository) List(ctx context.Context, opts ListActivitiesOptions) ([]activity.Activity, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Frequency != "" {
		where = append(where, "frequency = ?")
		args = append(args, opts.Frequency)
	}
	if opts.MarketID != "" {
		where = append(where, "market_id = ?")
		args = append(args, opts.MarketID)
	}
	if opts.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}
	if opts.Start != nil {
		where = append(where, "scheduled_time >= ?")
		args = append(args, opts.Start.UTC())
	}
	if opts.End != nil {
		where = append(where, "scheduled_time <= ?")
		args = append(args, opts.End.UTC())
	}

	clause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM activities WHERE " + clause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	query := "SELECT " + activityColumns + " FROM activities WHERE " + clause + " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		offset := 0
		if opts.Page > 1 {
			offset = (opts.Page - 1) * opts.Limit
		}
		args = append(args, opts.Limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []activity.Activity{}
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		activities = append(activities, act)
	}
	return activities, total, rows.Err()
}

// Get returns one activity by id.
func (r *ActivityRepository) Get(ctx context.Context, id string) (activity.Activity, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id)
	act, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Activity{}, ErrNotFound
	}
	return act, err
}

// Create inserts a new activity, assigning its identifier.
func (r *ActivityRepository) Create(ctx context.Context, req activity.CreateRequest) (activity.Activity, error) {
	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = activity.StatusPlanned
	}
	status = effectiveStatus(status, req.ScheduledTime.Time, now)

	act := activity.Activity{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime,
		Frequency:     req.Frequency,
		Status:        status,
		MarketID:      req.MarketID,
		CreatedAt:     wire.NewTime(now),
		UpdatedAt:     wire.NewTime(now),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, name, description, scheduled_time, frequency, status, market_id, last_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		act.ID, act.Name, act.Description, act.ScheduledTime.UTC(), string(act.Frequency),
		string(act.Status), nullString(act.MarketID), now, now,
	)
	if err != nil {
		return activity.Activity{}, fmt.Errorf("failed to create activity: %w", err)
	}
	return act, nil
}

// Update applies a partial update and returns the stored row.
func (r *ActivityRepository) Update(ctx context.Context, id string, req activity.UpdateRequest) (activity.Activity, error) {
	act, err := r.Get(ctx, id)
	if err != nil {
		return activity.Activity{}, err
	}

	if req.Name != nil {
		act.Name = *req.Name
	}
	if req.Description != nil {
		act.Description = *req.Description
	}
	if req.ScheduledTime != nil {
		act.ScheduledTime = *req.ScheduledTime
	}
	if req.Frequency != nil {
		act.Frequency = *req.Frequency
	}
	if req.Status != nil {
		act.Status = *req.Status
	}
	if req.MarketID != nil {
		act.MarketID = *req.MarketID
	}
	if req.LastCompleted != nil {
		act.LastCompleted = req.LastCompleted
	}

	now := time.Now().UTC()
	act.Status = effectiveStatus(act.Status, act.ScheduledTime.Time, now)
	act.UpdatedAt = wire.NewTime(now)

	return act, r.write(ctx, act, now)
}

// PatchStatus updates only the status field.
func (r *ActivityRepository) PatchStatus(ctx context.Context, id string, status activity.Status) (activity.Activity, error) {
	act, err := r.Get(ctx, id)
	if err != nil {
		return activity.Activity{}, err
	}
	now := time.Now().UTC()
	act.Status = status
	act.UpdatedAt = wire.NewTime(now)
	return act, r.write(ctx, act, now)
}

// MarkCompleted records a completion. The zero time stamps the current
// moment.
func (r *ActivityRepository) MarkCompleted(ctx context.Context, id string, when time.Time) (activity.Activity, error) {
	act, err := r.Get(ctx, id)
	if err != nil {
		return activity.Activity{}, err
	}
	now := time.Now().UTC()
	if when.IsZero() {
		when = now
	}
	completed := wire.NewTime(when.UTC())
	act.Status = activity.StatusCompleted
	act.LastCompleted = &completed
	act.UpdatedAt = wire.NewTime(now)
	return act, r.write(ctx, act, now)
}

// BulkPatchStatus updates the status of every listed activity and returns
// the rows that were found and updated.
func (r *ActivityRepository) BulkPatchStatus(ctx context.Context, ids []string, status activity.Status) ([]activity.Activity, error) {
	updated := []activity.Activity{}
	for _, id := range ids {
		act, err := r.PatchStatus(ctx, id, status)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		updated = append(updated, act)
	}
	return updated, nil
}

// Delete removes an activity.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats summarizes the whole collection, optionally scoped to one market.
type Stats struct {
	Total       int            `json:"total"`
	Planned     int            `json:"planned"`
	InProgress  int            `json:"inProgress"`
	Completed   int            `json:"completed"`
	Overdue     int            `json:"overdue"`
	ByFrequency map[string]int `json:"byFrequency"`
}

// Stats returns status and frequency counts.
func (r *ActivityRepository) Stats(ctx context.Context, marketID string) (Stats, error) {
	stats := Stats{ByFrequency: map[string]int{}}

	query := "SELECT status, frequency, COUNT(*) FROM activities"
	args := []any{}
	if marketID != "" {
		query += " WHERE market_id = ?"
		args = append(args, marketID)
	}
	query += " GROUP BY status, frequency"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, frequency string
		var count int
		if err := rows.Scan(&status, &frequency, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		stats.ByFrequency[frequency] += count
		switch activity.Status(status) {
		case activity.StatusPlanned:
			stats.Planned += count
		case activity.StatusInProgress:
			stats.InProgress += count
		case activity.StatusCompleted:
			stats.Completed += count
		case activity.StatusOverdue:
			stats.Overdue += count
		}
	}
	return stats, rows.Err()
}

// Upcoming returns non-completed activities scheduled within the next days.
func (r *ActivityRepository) Upcoming(ctx context.Context, days int, marketID string) ([]activity.Activity, error) {
	now := time.Now().UTC()
	start := &now
	end := now.AddDate(0, 0, days)
	recs, _, err := r.List(ctx, ListActivitiesOptions{MarketID: marketID, Start: start, End: &end})
	if err != nil {
		return nil, err
	}
	out := recs[:0]
	for _, act := range recs {
		if act.Status != activity.StatusCompleted {
			out = append(out, act)
		}
	}
	return out, nil
}

// Overdue returns activities currently marked overdue.
func (r *ActivityRepository) Overdue(ctx context.Context, marketID string) ([]activity.Activity, error) {
	recs, _, err := r.List(ctx, ListActivitiesOptions{Status: string(activity.StatusOverdue), MarketID: marketID})
	return recs, err
}

func (r *ActivityRepository) write(ctx context.Context, act activity.Activity, now time.Time) error {
	var lastCompleted any
	if act.LastCompleted != nil {
		lastCompleted = act.LastCompleted.UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET name = ?, description = ?, scheduled_time = ?, frequency = ?, status = ?, market_id = ?, last_completed = ?, updated_at = ?
		WHERE id = ?`,
		act.Name, act.Description, act.ScheduledTime.UTC(), string(act.Frequency),
		string(act.Status), nullString(act.MarketID), lastCompleted, now, act.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

// effectiveStatus recomputes Overdue on write: a non-completed activity
// scheduled in the past is overdue, whatever the caller sent.
func effectiveStatus(status activity.Status, scheduled, now time.Time) activity.Status {
	if status == activity.StatusCompleted {
		return status
	}
	if !scheduled.IsZero() && scheduled.Before(now) {
		return activity.StatusOverdue
	}
	if status == activity.StatusOverdue {
		// No longer in the past (rescheduled forward).
		return activity.StatusPlanned
	}
	return status
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (activity.Activity, error) {
	var act activity.Activity
	var scheduled, createdAt, updatedAt time.Time
	var marketID sql.NullString
	var lastCompleted sql.NullTime
	var frequency, status string

	err := row.Scan(&act.ID, &act.Name, &act.Description, &scheduled, &frequency,
		&status, &marketID, &lastCompleted, &createdAt, &updatedAt)
	if err != nil {
		return activity.Activity{}, err
	}

	act.ScheduledTime = wire.NewTime(scheduled)
	act.Frequency = activity.Frequency(frequency)
	act.Status = activity.Status(status)
	act.MarketID = marketID.String
	if lastCompleted.Valid {
		completed := wire.NewTime(lastCompleted.Time)
		act.LastCompleted = &completed
	}
	act.CreatedAt = wire.NewTime(createdAt)
	act.UpdatedAt = wire.NewTime(updatedAt)
	return act, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
