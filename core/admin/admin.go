package admin

import (
	"time"

	"github.com/irsalhamdi/course-market/core/enrollment"
	"github.com/irsalhamdi/course-market/core/payment"
	"github.com/shopspring/decimal"
)

type Totals struct {
	Users       int             `json:"totalUsers" db:"users"`
	Courses     int             `json:"totalCourses" db:"courses"`
	Enrollments int             `json:"totalEnrollments" db:"enrollments"`
	Revenue     decimal.Decimal `json:"totalRevenue" db:"revenue"`
}

type Dashboard struct {
	Totals
	LatestEnrollments []enrollment.Enrollment `json:"latestEnrollments"`
	LatestPayments    []payment.Payment       `json:"latestPayments"`
}

// Period is the half-open interval [Start, End).
type Period struct {
	Start time.Time `db:"start"`
	End   time.Time `db:"end"`
}

type MethodTotal struct {
	Method payment.Method  `json:"paymentMethod" db:"method"`
	Count  int             `json:"count" db:"count"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
}

type CourseTotal struct {
	CourseID string          `json:"courseId" db:"course_id"`
	Title    string          `json:"title" db:"title"`
	Count    int             `json:"count" db:"count"`
	Amount   decimal.Decimal `json:"amount" db:"amount"`
}

// SalesReport sums completed payments created inside a period.
type SalesReport struct {
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	ByMethod []MethodTotal   `json:"byMethod"`
	ByCourse []CourseTotal   `json:"byCourse"`
}

func newSalesReport(p Period, methods []MethodTotal, courses []CourseTotal) SalesReport {
	rp := SalesReport{
		Start:    p.Start,
		End:      p.End,
		Total:    decimal.Zero,
		ByMethod: methods,
		ByCourse: courses,
	}
	for _, m := range methods {
		rp.Total = rp.Total.Add(m.Amount)
		rp.Count += m.Count
	}
	return rp
}
