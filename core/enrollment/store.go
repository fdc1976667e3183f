package enrollment

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/course-market/database"
	"github.com/jmoiron/sqlx"
)

const selectEnrollments = `
	SELECT enrollment_id, user_id, course_id, completed, created_at, updated_at
	FROM enrollments`

type userCourse struct {
	UserID   string `db:"user_id"`
	CourseID string `db:"course_id"`
}

// Create inserts e. The (user_id, course_id) unique constraint turns a
// second enrollment into database.ErrDBDuplicatedEntry.
func Create(ctx context.Context, db sqlx.ExtContext, e Enrollment) error {
	const q = `
	INSERT INTO enrollments (enrollment_id, user_id, course_id, completed, created_at, updated_at)
	VALUES (:enrollment_id, :user_id, :course_id, :completed, :created_at, :updated_at)`

	if err := database.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("inserting enrollment: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts e unless the user is already enrolled, which is
// not an error.
func CreateIfAbsent(ctx context.Context, db sqlx.ExtContext, e Enrollment) error {
	const q = `
	INSERT INTO enrollments (enrollment_id, user_id, course_id, completed, created_at, updated_at)
	VALUES (:enrollment_id, :user_id, :course_id, :completed, :created_at, :updated_at)
	ON CONFLICT ON CONSTRAINT enrollments_user_course_key DO NOTHING`

	if err := database.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("inserting enrollment: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (Enrollment, error) {
	q := selectEnrollments + ` WHERE user_id = :user_id AND course_id = :course_id`

	var e Enrollment
	if err := database.NamedQueryStruct(ctx, db, q, userCourse{userID, courseID}, &e); err != nil {
		return Enrollment{}, fmt.Errorf("selecting enrollment of user[%s] in course[%s]: %w", userID, courseID, err)
	}
	return e, nil
}

// FetchForUpdate locks the enrollment row until the surrounding
// transaction ends, serializing progress writes of one enrollment.
func FetchForUpdate(ctx context.Context, tx sqlx.ExtContext, userID string, courseID string) (Enrollment, error) {
	q := selectEnrollments + ` WHERE user_id = :user_id AND course_id = :course_id FOR UPDATE`

	var e Enrollment
	if err := database.NamedQueryStruct(ctx, tx, q, userCourse{userID, courseID}, &e); err != nil {
		return Enrollment{}, fmt.Errorf("locking enrollment of user[%s] in course[%s]: %w", userID, courseID, err)
	}
	return e, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Enrollment, error) {
	q := selectEnrollments + ` WHERE user_id = :user_id ORDER BY created_at DESC`

	in := struct {
		UserID string `db:"user_id"`
	}{userID}

	var es []Enrollment
	if err := database.NamedQuerySlice(ctx, db, q, in, &es); err != nil {
		return nil, fmt.Errorf("selecting enrollments of user[%s]: %w", userID, err)
	}
	return es, nil
}

// MarkCompleted flips completed to true. It never sets it back to false.
func MarkCompleted(ctx context.Context, db sqlx.ExtContext, e Enrollment) error {
	const q = `
	UPDATE enrollments SET
		completed = TRUE,
		updated_at = :updated_at
	WHERE enrollment_id = :enrollment_id AND completed = FALSE`

	if err := database.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("completing enrollment[%s]: %w", e.ID, err)
	}
	return nil
}

// UpsertProgress writes the (enrollment, lesson) row, creating it on first
// write, and returns the stored row.
func UpsertProgress(ctx context.Context, db sqlx.ExtContext, p Progress) (Progress, error) {
	const q = `
	INSERT INTO progress (progress_id, enrollment_id, lesson_id, completed, last_watched)
	VALUES (:progress_id, :enrollment_id, :lesson_id, :completed, :last_watched)
	ON CONFLICT ON CONSTRAINT progress_enrollment_lesson_key DO UPDATE SET
		completed = EXCLUDED.completed,
		last_watched = EXCLUDED.last_watched
	RETURNING progress_id, enrollment_id, lesson_id, completed, last_watched`

	var out Progress
	if err := database.NamedQueryStruct(ctx, db, q, p, &out); err != nil {
		return Progress{}, fmt.Errorf("upserting progress of lesson[%s]: %w", p.LessonID, err)
	}
	return out, nil
}

func FetchProgress(ctx context.Context, db sqlx.ExtContext, enrollmentID string) ([]Progress, error) {
	const q = `
	SELECT progress_id, enrollment_id, lesson_id, completed, last_watched
	FROM progress
	WHERE enrollment_id = :enrollment_id
	ORDER BY last_watched DESC`

	in := struct {
		EnrollmentID string `db:"enrollment_id"`
	}{enrollmentID}

	var ps []Progress
	if err := database.NamedQuerySlice(ctx, db, q, in, &ps); err != nil {
		return nil, fmt.Errorf("selecting progress of enrollment[%s]: %w", enrollmentID, err)
	}
	return ps, nil
}

// FetchLessonStates lists every lesson of every module of the course
// together with the enrollment's completion flag for it.
func FetchLessonStates(ctx context.Context, db sqlx.ExtContext, e Enrollment) ([]LessonState, error) {
	const q = `
	SELECT l.lesson_id, COALESCE(p.completed, FALSE) AS completed
	FROM lessons l
	JOIN modules m ON m.module_id = l.module_id
	LEFT JOIN progress p ON p.lesson_id = l.lesson_id AND p.enrollment_id = :enrollment_id
	WHERE m.course_id = :course_id
	ORDER BY m.sort_order, l.sort_order`

	var ss []LessonState
	if err := database.NamedQuerySlice(ctx, db, q, e, &ss); err != nil {
		return nil, fmt.Errorf("selecting lesson states of enrollment[%s]: %w", e.ID, err)
	}
	return ss, nil
}

func FetchLatest(ctx context.Context, db sqlx.ExtContext, limit int) ([]Enrollment, error) {
	q := selectEnrollments + ` ORDER BY created_at DESC LIMIT :limit`

	in := struct {
		Limit int `db:"limit"`
	}{limit}

	var es []Enrollment
	if err := database.NamedQuerySlice(ctx, db, q, in, &es); err != nil {
		return nil, fmt.Errorf("selecting latest enrollments: %w", err)
	}
	return es, nil
}
