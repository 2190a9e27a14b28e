// Package testtiming reads averaged test durations from the execution history database.
package testtiming

import (
	"context"
	"errors"
	"time"

	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

type testTimingStore struct {
	db       core.DB
	branch   string
	lookback time.Duration
	now      func() time.Time
	logger   lumber.Logger
}

// averageRow is one aggregated row, duration in milliseconds.
type averageRow struct {
	Name     string     `db:"test_locator"`
	Duration null.Float `db:"duration"`
	Runs     int        `db:"runs"`
}

// New returns a TimingStore averaging the executions recorded for branch within lookback.
func New(db core.DB, branch string, lookback time.Duration, logger lumber.Logger) core.TimingStore {
	return &testTimingStore{db: db, branch: branch, lookback: lookback, now: time.Now, logger: logger}
}

func (s *testTimingStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	rows := make([]*averageRow, 0)
	err := s.db.Execute(func(db *sqlx.DB) error {
		args := map[string]interface{}{
			"branch":         s.branch,
			"min_created_at": s.now().Add(-s.lookback),
		}
		query, params, err := sqlx.Named(averageDurationQuery, args)
		if err != nil {
			return err
		}
		query = db.Rebind(query)
		if err := db.SelectContext(ctx, &rows, query, params...); err != nil {
			return errs.SQLError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errs.ErrUnknownTable) || errors.Is(err, errs.ErrRowsNotFound) {
			s.logger.Warnf("no execution history for branch %s, error: %v", s.branch, err)
			return nil, nil
		}
		s.logger.Errorf("failed to read execution history for branch %s, error: %v", s.branch, err)
		return nil, err
	}
	timings := toTimings(rows)
	s.logger.Debugf("loaded %d averaged test timings for branch %s", len(timings), s.branch)
	return timings, nil
}

// toTimings converts millisecond averages to seconds, skipping rows without a recorded duration.
func toTimings(rows []*averageRow) []core.TestTiming {
	timings := make([]core.TestTiming, 0, len(rows))
	for _, row := range rows {
		if !row.Duration.Valid {
			continue
		}
		timings = append(timings, core.TestTiming{
			Name:            row.Name,
			DurationSeconds: row.Duration.Float64 / constants.MillisPerSecond,
		})
	}
	return timings
}

const averageDurationQuery = `
SELECT
	t.test_locator,
	AVG(te.duration) duration,
	COUNT(*) runs
FROM
	test_execution te
JOIN test t ON
	t.id = te.test_id
JOIN build b ON
	b.id = te.build_id
WHERE
	b.branch_name = :branch
	AND te.created_at >= :min_created_at
	AND te.status IN ('passed', 'failed')
GROUP BY
	t.test_locator
ORDER BY
	t.test_locator
`
