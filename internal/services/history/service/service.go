// Package service contains the daily call history workflows: exactly once
// counting, the month calendar and the streak summary
package service

import (
	"context"
	"fmt"
	"time"

	"callcrm/internal/core/calday"
	"callcrm/internal/modkit/repokit"
	perr "callcrm/internal/platform/errors"
	"callcrm/internal/services/history/domain"
	"callcrm/internal/services/history/repo"
	userdom "callcrm/internal/services/users/domain"
)

// Service defines the history service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the history service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	users  userdom.Reader
	clock  calday.Clock
}

// New constructs a history service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], users userdom.Reader, clock calday.Clock) *Svc {
	if db == nil {
		panic("history.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("history.Service requires a non nil Repo binder")
	}
	if users == nil {
		panic("history.Service requires a users reader")
	}
	if clock == nil {
		clock = calday.SystemClock{}
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, users: users, clock: clock}
}

// Apply counts in.CallIDs into the (user, day) row in one transaction. Calls
// counted by an earlier Apply are skipped, so the synchronous pipeline and
// the reconciliation job can both offer the same call.
func (s *Svc) Apply(ctx context.Context, in domain.ApplyInput) (domain.ApplyResult, error) {
	if in.UserID == "" {
		return domain.ApplyResult{}, perr.WithField(perr.InvalidArgf("user id required"), "user_id")
	}
	if len(in.CallIDs) == 0 {
		return domain.ApplyResult{}, nil
	}
	day := calday.Floor(in.Day)

	var res domain.ApplyResult
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		n, err := r.Mark(ctx, in.UserID, day, in.CallIDs)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		row, err := r.Add(ctx, in.UserID, day, n, in.Target, in.RefreshTarget)
		if err != nil {
			return err
		}
		res = domain.ApplyResult{Added: n, Row: row}
		return nil
	})
	if err != nil {
		return domain.ApplyResult{}, err
	}
	return res, nil
}

// EnsureDay returns the user's row for day, creating an empty one with the
// user's current target when absent
func (s *Svc) EnsureDay(ctx context.Context, userID string, day time.Time) (domain.CalendarDay, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.CalendarDay{}, err
	}
	row, err := s.Repo.Ensure(ctx, userID, calday.Floor(day), u.TargetOr(userdom.FallbackTarget))
	if err != nil {
		return domain.CalendarDay{}, err
	}
	return cell(row, calday.Now(s.clock)), nil
}

// Calendar returns a month of rows with the history stats
func (s *Svc) Calendar(ctx context.Context, q domain.CalendarQuery) (domain.Calendar, error) {
	now := calday.Now(s.clock)
	year, month := q.Year, time.Month(q.Month)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}

	u, err := s.users.Get(ctx, q.UserID)
	if err != nil {
		return domain.Calendar{}, err
	}
	first, last := calday.MonthRange(year, month)
	rows, err := s.Repo.Range(ctx, q.UserID, first, last)
	if err != nil {
		return domain.Calendar{}, err
	}
	reached, err := s.Repo.CountReached(ctx, q.UserID)
	if err != nil {
		return domain.Calendar{}, err
	}
	streak, err := s.streak(ctx, q.UserID, now)
	if err != nil {
		return domain.Calendar{}, err
	}

	days := make([]domain.CalendarDay, 0, len(rows))
	for _, r := range rows {
		days = append(days, cell(r, now))
	}
	return domain.Calendar{
		Month: fmt.Sprintf("%04d-%02d", year, int(month)),
		Stats: domain.CalendarStats{
			TotalDaysSinceStart: daysSinceStart(u.CreatedAt, now),
			TargetReachedDays:   reached,
			CurrentStreak:       streak,
		},
		Days: days,
	}, nil
}

// Stats returns the user, overall and current month summary
func (s *Svc) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	now := calday.Now(s.clock)
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	reached, err := s.Repo.CountReached(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	streak, err := s.streak(ctx, userID, now)
	if err != nil {
		return domain.Stats{}, err
	}
	first, last := calday.MonthRange(now.Year(), now.Month())
	rows, err := s.Repo.Range(ctx, userID, first, last)
	if err != nil {
		return domain.Stats{}, err
	}

	month := domain.StatsMonth{TotalDays: len(rows)}
	for _, r := range rows {
		month.TotalCalls += r.CallsMade
		if r.TargetReached {
			month.TargetReachedDays++
		}
	}
	total := daysSinceStart(u.CreatedAt, now)
	return domain.Stats{
		User: domain.StatsUser{
			Name:          u.UserName,
			Level:         u.Level,
			CurrentTarget: u.TargetOr(userdom.FallbackTarget),
			TotalPoints:   u.Points,
			TodaysCalls:   u.CallsOn(now),
		},
		Overall: domain.StatsOverall{
			TotalDaysSinceStart: total,
			TargetReachedDays:   reached,
			SuccessRate:         domain.SuccessRate(reached, total),
			CurrentStreak:       streak,
		},
		CurrentMonth: month,
	}, nil
}

func (s *Svc) streak(ctx context.Context, userID string, now time.Time) (int, error) {
	rows, err := s.Repo.Recent(ctx, userID, now, domain.StreakWindow)
	if err != nil {
		return 0, err
	}
	return domain.Streak(rows, now), nil
}

// daysSinceStart counts calendar days from account creation through today,
// both inclusive
func daysSinceStart(created, now time.Time) int {
	if created.IsZero() {
		return 0
	}
	n := calday.Between(created, now) + 1
	if n < 0 {
		return 0
	}
	return n
}

func cell(r domain.DayRow, now time.Time) domain.CalendarDay {
	return domain.CalendarDay{
		Date:          calday.Key(r.Day),
		CallsMade:     r.CallsMade,
		Target:        r.TargetForDay,
		TargetReached: r.TargetReached,
		IsToday:       calday.SameDay(r.Day, now),
	}
}
