package certificate

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

const selectCertificates = `
	SELECT ce.certificate_id, ce.user_id, ce.course_id, co.title AS course_title, u.name AS user_name,
		ce.code, ce.url, ce.issued_at
	FROM certificates ce
	JOIN courses co ON co.course_id = ce.course_id
	JOIN users u ON u.user_id = ce.user_id`

func Create(ctx context.Context, db sqlx.ExtContext, c Certificate) error {
	const q = `
	INSERT INTO certificates (certificate_id, user_id, course_id, code, url, issued_at)
	VALUES (:certificate_id, :user_id, :course_id, :code, :url, :issued_at)`

	if err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting certificate: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Certificate, error) {
	q := selectCertificates + ` WHERE ce.user_id = :user_id AND ce.course_id = :course_id`

	in := struct {
		UserID   string `db:"user_id"`
		CourseID string `db:"course_id"`
	}{userID, courseID}

	var c Certificate
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Certificate{}, fmt.Errorf("selecting certificate of user[%s] for course[%s]: %w", userID, courseID, err)
	}
	return c, nil
}

func FetchByCode(ctx context.Context, db sqlx.ExtContext, code string) (Certificate, error) {
	q := selectCertificates + ` WHERE ce.code = :code`

	in := struct {
		Code string `db:"code"`
	}{code}

	var c Certificate
	if err := database.NamedQueryStruct(ctx, db, q, in, &c); err != nil {
		return Certificate{}, fmt.Errorf("selecting certificate[%s]: %w", code, err)
	}
	return c, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Certificate, error) {
	q := selectCertificates + ` WHERE ce.user_id = :user_id ORDER BY ce.issued_at DESC`

	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	var cs []Certificate
	if err := database.NamedQuerySlice(ctx, db, q, in, &cs); err != nil {
		return nil, fmt.Errorf("selecting certificates of user[%s]: %w", userID, err)
	}
	return cs, nil
}
