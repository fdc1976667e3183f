package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/course-market/api/web"
	"github.com/irsalhamdi/course-market/api/weberr"
	"github.com/irsalhamdi/course-market/core/enrollment"
	"github.com/irsalhamdi/course-market/core/payment"
	"github.com/jmoiron/sqlx"
)

const (
	latestLimit   = 5
	defaultPeriod = 30 * 24 * time.Hour
	dateLayout    = "2006-01-02"
)

func HandleDashboard(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		t, err := FetchTotals(ctx, db)
		if err != nil {
			return err
		}

		es, err := enrollment.FetchLatest(ctx, db, latestLimit)
		if err != nil {
			return err
		}

		ps, err := payment.FetchLatest(ctx, db, latestLimit)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, Dashboard{t, es, ps}, http.StatusOK)
	}
}

func HandleSalesReport(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		p, err := parsePeriod(r, time.Now().UTC())
		if err != nil {
			return weberr.BadRequest(err)
		}

		ms, err := FetchSalesByMethod(ctx, db, p)
		if err != nil {
			return err
		}

		cs, err := FetchSalesByCourse(ctx, db, p)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, newSalesReport(p, ms, cs), http.StatusOK)
	}
}

// parsePeriod reads the start and end dates of the query, both inclusive.
// A missing end is today and a missing start is thirty days before end.
func parsePeriod(r *http.Request, now time.Time) (Period, error) {
	q := r.URL.Query()

	end := now.Truncate(24 * time.Hour)
	if s := q.Get("end"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return Period{}, fmt.Errorf("end must be a date as %s", dateLayout)
		}
		end = d
	}

	start := end.Add(-defaultPeriod)
	if s := q.Get("start"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return Period{}, fmt.Errorf("start must be a date as %s", dateLayout)
		}
		start = d
	}

	if start.After(end) {
		return Period{}, fmt.Errorf("start must not be after end")
	}

	return Period{Start: start, End: end.Add(24 * time.Hour)}, nil
}
