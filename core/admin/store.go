package admin

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

func FetchTotals(ctx context.Context, db sqlx.ExtContext) (Totals, error) {
	const q = `
	SELECT
		(SELECT COUNT(*) FROM users) AS users,
		(SELECT COUNT(*) FROM courses) AS courses,
		(SELECT COUNT(*) FROM enrollments) AS enrollments,
		(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed') AS revenue`

	var t Totals
	if err := database.NamedQueryStruct(ctx, db, q, struct{}{}, &t); err != nil {
		return Totals{}, fmt.Errorf("selecting totals: %w", err)
	}
	return t, nil
}

func FetchSalesByMethod(ctx context.Context, db sqlx.ExtContext, p Period) ([]MethodTotal, error) {
	const q = `
	SELECT method, COUNT(*) AS count, SUM(amount) AS amount
	FROM payments
	WHERE status = 'completed' AND created_at >= :start AND created_at < :end
	GROUP BY method
	ORDER BY method`

	var ms []MethodTotal
	if err := database.NamedQuerySlice(ctx, db, q, p, &ms); err != nil {
		return nil, fmt.Errorf("selecting sales by method: %w", err)
	}
	return ms, nil
}

func FetchSalesByCourse(ctx context.Context, db sqlx.ExtContext, p Period) ([]CourseTotal, error) {
	const q = `
	SELECT p.course_id, c.title, COUNT(*) AS count, SUM(p.amount) AS amount
	FROM payments p
	JOIN courses c ON c.course_id = p.course_id
	WHERE p.status = 'completed' AND p.created_at >= :start AND p.created_at < :end
	GROUP BY p.course_id, c.title
	ORDER BY amount DESC, c.title`

	var cs []CourseTotal
	if err := database.NamedQuerySlice(ctx, db, q, p, &cs); err != nil {
		return nil, fmt.Errorf("selecting sales by course: %w", err)
	}
	return cs, nil
}
