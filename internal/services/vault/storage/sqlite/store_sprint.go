package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ANISH-SR/StreamVault/internal/services/vault/domain"
	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
)

// PutSprint upserts one sprint record.
func (s *Store) PutSprint(ctx context.Context, sprint domain.Sprint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(sprint.Employer) == "" {
		return fmt.Errorf("employer is required")
	}

	var pauseTime any
	if sprint.Timeline.IsPaused {
		pauseTime = toMillis(sprint.Timeline.PauseTime)
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO sprints (
		   employer, sprint_id, freelancer, mint, vault,
		   total_amount, withdrawn_amount, start_time, end_time,
		   is_paused, pause_time, total_paused_ms, pause_resume_count,
		   acceleration, is_funded, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(employer, sprint_id) DO UPDATE SET
		   withdrawn_amount = excluded.withdrawn_amount,
		   is_paused = excluded.is_paused,
		   pause_time = excluded.pause_time,
		   total_paused_ms = excluded.total_paused_ms,
		   pause_resume_count = excluded.pause_resume_count,
		   is_funded = excluded.is_funded,
		   updated_at = excluded.updated_at`,
		sprint.Employer,
		int64(sprint.SprintID),
		sprint.Freelancer,
		sprint.Mint,
		sprint.Vault,
		int64(sprint.TotalAmount),
		int64(sprint.WithdrawnAmount),
		toMillis(sprint.Timeline.StartTime),
		toMillis(sprint.Timeline.EndTime),
		boolToInt(sprint.Timeline.IsPaused),
		pauseTime,
		sprint.Timeline.TotalPausedDuration.Milliseconds(),
		int64(sprint.Timeline.PauseResumeCount),
		int64(sprint.Acceleration),
		boolToInt(sprint.IsFunded),
		toMillis(sprint.CreatedAt),
		toMillis(sprint.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put sprint: %w", err)
	}
	return nil
}

// GetSprint returns one sprint record.
func (s *Store) GetSprint(ctx context.Context, employer string, sprintID uint64) (domain.Sprint, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sprint{}, err
	}
	if s == nil || s.q == nil {
		return domain.Sprint{}, fmt.Errorf("storage is not configured")
	}

	row := s.q.QueryRowContext(
		ctx,
		`SELECT employer, sprint_id, freelancer, mint, vault,
		        total_amount, withdrawn_amount, start_time, end_time,
		        is_paused, pause_time, total_paused_ms, pause_resume_count,
		        acceleration, is_funded, created_at, updated_at
		 FROM sprints
		 WHERE employer = ? AND sprint_id = ?`,
		employer,
		int64(sprintID),
	)
	return scanSprint(row)
}

// DeleteSprint removes one sprint record.
func (s *Store) DeleteSprint(ctx context.Context, employer string, sprintID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.q.ExecContext(
		ctx,
		`DELETE FROM sprints WHERE employer = ? AND sprint_id = ?`,
		employer,
		int64(sprintID),
	)
	if err != nil {
		return fmt.Errorf("delete sprint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sprint rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListSprints returns all sprints belonging to an employer ordered by id.
func (s *Store) ListSprints(ctx context.Context, employer string) ([]domain.Sprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.q == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT employer, sprint_id, freelancer, mint, vault,
		        total_amount, withdrawn_amount, start_time, end_time,
		        is_paused, pause_time, total_paused_ms, pause_resume_count,
		        acceleration, is_funded, created_at, updated_at
		 FROM sprints
		 WHERE employer = ?
		 ORDER BY sprint_id`,
		employer,
	)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	var sprints []domain.Sprint
	for rows.Next() {
		sprint, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		sprints = append(sprints, sprint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sprints: %w", err)
	}
	return sprints, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSprint(row rowScanner) (domain.Sprint, error) {
	var (
		sprint                     domain.Sprint
		sprintID, total, withdrawn int64
		startMs, endMs             int64
		isPaused, isFunded         int64
		pauseMs                    sql.NullInt64
		pausedMs, cycleCount       int64
		acceleration               int64
		createdMs, updatedMs       int64
	)
	err := row.Scan(
		&sprint.Employer,
		&sprintID,
		&sprint.Freelancer,
		&sprint.Mint,
		&sprint.Vault,
		&total,
		&withdrawn,
		&startMs,
		&endMs,
		&isPaused,
		&pauseMs,
		&pausedMs,
		&cycleCount,
		&acceleration,
		&isFunded,
		&createdMs,
		&updatedMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sprint{}, storage.ErrNotFound
		}
		return domain.Sprint{}, fmt.Errorf("scan sprint: %w", err)
	}

	sprint.SprintID = uint64(sprintID)
	sprint.TotalAmount = uint64(total)
	sprint.WithdrawnAmount = uint64(withdrawn)
	sprint.Acceleration = domain.AccelerationType(acceleration)
	sprint.IsFunded = isFunded != 0
	sprint.CreatedAt = fromMillis(createdMs)
	sprint.UpdatedAt = fromMillis(updatedMs)
	sprint.Timeline = domain.Timeline{
		StartTime:           fromMillis(startMs),
		EndTime:             fromMillis(endMs),
		IsPaused:            isPaused != 0,
		TotalPausedDuration: time.Duration(pausedMs) * time.Millisecond,
		PauseResumeCount:    uint8(cycleCount),
	}
	if pauseMs.Valid {
		sprint.Timeline.PauseTime = fromMillis(pauseMs.Int64)
	}
	return sprint, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
