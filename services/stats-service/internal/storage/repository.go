package storage

import (
	"context"
	"sort"
	"time"

	"github.com/electromarket/electromarket/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Overview aggregates the whole-history totals served on the admin dashboard.
type Overview struct {
	AppointmentsConfirmed int     `json:"appointments_confirmed"`
	AppointmentsCancelled int     `json:"appointments_cancelled"`
	AppointmentsExpired   int     `json:"appointments_expired"`
	CreditsCharged        int     `json:"credits_charged"`
	NotificationsSent     int     `json:"notifications_sent"`
	NotificationsFailed   int     `json:"notifications_failed"`
	RatingsCount          int     `json:"ratings_count"`
	RatingsAverage        float64 `json:"ratings_average"`
}

func (r *Repository) GetOverview(ctx context.Context) (Overview, error) {
	var o Overview
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(confirmed_count), 0),
		       COALESCE(SUM(cancelled_count), 0),
		       COALESCE(SUM(expired_count), 0),
		       COALESCE(SUM(credits_charged), 0)
		FROM daily_appointment_stats
	`).Scan(&o.AppointmentsConfirmed, &o.AppointmentsCancelled, &o.AppointmentsExpired, &o.CreditsCharged)
	if err != nil {
		return Overview{}, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(sent_count), 0), COALESCE(SUM(failed_count), 0)
		FROM daily_notification_stats
	`).Scan(&o.NotificationsSent, &o.NotificationsFailed)
	if err != nil {
		return Overview{}, err
	}

	var scoreSum int
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(rating_count), 0), COALESCE(SUM(score_sum), 0)
		FROM daily_rating_stats
	`).Scan(&o.RatingsCount, &scoreSum)
	if err != nil {
		return Overview{}, err
	}
	if o.RatingsCount > 0 {
		o.RatingsAverage = float64(scoreSum) / float64(o.RatingsCount)
	}
	return o, nil
}

// DailyRow is one day of the admin time series. Notification counters are
// global; appointment and rating counters respect the seller filter.
type DailyRow struct {
	Day                 string  `json:"day"`
	Confirmed           int     `json:"confirmed"`
	Cancelled           int     `json:"cancelled"`
	Expired             int     `json:"expired"`
	CreditsCharged      int     `json:"credits_charged"`
	NotificationsSent   int     `json:"notifications_sent"`
	NotificationsFailed int     `json:"notifications_failed"`
	RatingsCount        int     `json:"ratings_count"`
	RatingsAverage      float64 `json:"ratings_average"`
}

func (r *Repository) ListDaily(ctx context.Context, from, to time.Time, sellerID string) ([]DailyRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day::text,
		       COALESCE(SUM(confirmed_count), 0),
		       COALESCE(SUM(cancelled_count), 0),
		       COALESCE(SUM(expired_count), 0),
		       COALESCE(SUM(credits_charged), 0)
		FROM daily_appointment_stats
		WHERE day >= $1::date AND day <= $2::date
		  AND ($3 = '' OR seller_id = $3::uuid)
		GROUP BY day
		ORDER BY day
	`, from, to, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := map[string]*DailyRow{}
	order := []string{}
	for rows.Next() {
		row := DailyRow{}
		if err := rows.Scan(&row.Day, &row.Confirmed, &row.Cancelled, &row.Expired, &row.CreditsCharged); err != nil {
			return nil, err
		}
		byDay[row.Day] = &row
		order = append(order, row.Day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ensure := func(day string) *DailyRow {
		if existing, ok := byDay[day]; ok {
			return existing
		}
		row := &DailyRow{Day: day}
		byDay[day] = row
		order = append(order, day)
		return row
	}

	if sellerID == "" {
		nrows, err := r.pool.Query(ctx, `
			SELECT day::text, COALESCE(SUM(sent_count), 0), COALESCE(SUM(failed_count), 0)
			FROM daily_notification_stats
			WHERE day >= $1::date AND day <= $2::date
			GROUP BY day
		`, from, to)
		if err != nil {
			return nil, err
		}
		defer nrows.Close()
		for nrows.Next() {
			var day string
			var sent, failed int
			if err := nrows.Scan(&day, &sent, &failed); err != nil {
				return nil, err
			}
			row := ensure(day)
			row.NotificationsSent = sent
			row.NotificationsFailed = failed
		}
		if err := nrows.Err(); err != nil {
			return nil, err
		}
	}

	rrows, err := r.pool.Query(ctx, `
		SELECT day::text, COALESCE(SUM(rating_count), 0), COALESCE(SUM(score_sum), 0)
		FROM daily_rating_stats
		WHERE day >= $1::date AND day <= $2::date
		  AND ($3 = '' OR seller_id = $3::uuid)
		GROUP BY day
	`, from, to, sellerID)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var day string
		var count, scoreSum int
		if err := rrows.Scan(&day, &count, &scoreSum); err != nil {
			return nil, err
		}
		row := ensure(day)
		row.RatingsCount = count
		if count > 0 {
			row.RatingsAverage = float64(scoreSum) / float64(count)
		}
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}

	// ISO dates sort lexicographically.
	sort.Strings(order)
	out := make([]DailyRow, 0, len(order))
	for _, day := range order {
		out = append(out, *byDay[day])
	}
	return out, nil
}
