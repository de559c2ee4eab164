package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/example/barbershop-booking/internal/calendar"
	"github.com/example/barbershop-booking/internal/persistence"
	"github.com/example/barbershop-booking/internal/slots"
)

// ScheduleRepository implements persistence.ScheduleRepository on the
// daily_schedules table.
type ScheduleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewScheduleRepository returns a repository backed by pool.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// EnsureDefaultSchedules inserts the default row for each weekday that has
// none. Existing rows are left untouched.
func (r *ScheduleRepository) EnsureDefaultSchedules(ctx context.Context) error {
	const query = `INSERT OR IGNORE INTO daily_schedules (day_name, is_open, start_time, end_time) VALUES (?, ?, ?, ?)`

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, schedule := range persistence.DefaultDaySchedules() {
			if _, err := tx.ExecContext(ctx, query,
				schedule.DayName,
				schedule.IsOpen,
				schedule.StartTime.String(),
				schedule.EndTime.String(),
			); err != nil {
				return fmt.Errorf("seed schedule %s: %w", schedule.DayName, r.mapper.MapError(err))
			}
		}
		return nil
	})
}

// GetDaySchedule returns the schedule for dayName, or persistence.ErrNotFound.
func (r *ScheduleRepository) GetDaySchedule(ctx context.Context, dayName string) (persistence.DaySchedule, error) {
	if !calendar.IsWeekdayName(dayName) {
		return persistence.DaySchedule{}, persistence.ErrNotFound
	}

	const query = `SELECT day_name, is_open, start_time, end_time FROM daily_schedules WHERE day_name = ?`
	schedule, err := scanDaySchedule(r.helper.QueryRow(ctx, query, dayName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.DaySchedule{}, persistence.ErrNotFound
		}
		return persistence.DaySchedule{}, r.mapper.MapError(err)
	}
	return schedule, nil
}

// ListDaySchedules returns every stored schedule in week order.
func (r *ScheduleRepository) ListDaySchedules(ctx context.Context) ([]persistence.DaySchedule, error) {
	const query = `SELECT day_name, is_open, start_time, end_time FROM daily_schedules`
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var schedules []persistence.DaySchedule
	for rows.Next() {
		schedule, err := scanDaySchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	sort.Slice(schedules, func(i, j int) bool {
		return calendar.WeekdayPosition(schedules[i].DayName) < calendar.WeekdayPosition(schedules[j].DayName)
	})
	return schedules, nil
}

// UpdateDaySchedule overwrites the open flag and hours of an existing weekday.
func (r *ScheduleRepository) UpdateDaySchedule(ctx context.Context, schedule persistence.DaySchedule) error {
	if schedule.StartTime >= schedule.EndTime {
		return persistence.ErrConstraintViolation
	}

	const query = `UPDATE daily_schedules SET is_open = ?, start_time = ?, end_time = ? WHERE day_name = ?`
	result, err := r.helper.Exec(ctx, query,
		schedule.IsOpen,
		schedule.StartTime.String(),
		schedule.EndTime.String(),
		schedule.DayName,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDaySchedule(row rowScanner) (persistence.DaySchedule, error) {
	var (
		schedule   persistence.DaySchedule
		start, end string
	)
	if err := row.Scan(&schedule.DayName, &schedule.IsOpen, &start, &end); err != nil {
		return persistence.DaySchedule{}, err
	}

	var err error
	if schedule.StartTime, err = slots.ParseClock(start); err != nil {
		return persistence.DaySchedule{}, fmt.Errorf("schedule %s start_time: %w", schedule.DayName, err)
	}
	if schedule.EndTime, err = slots.ParseClock(end); err != nil {
		return persistence.DaySchedule{}, fmt.Errorf("schedule %s end_time: %w", schedule.DayName, err)
	}
	return schedule, nil
}
