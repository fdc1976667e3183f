package enrollment

import (
	"time"

	"github.com/irsalhamdi/course-market/core/course"
)

// Enrollment records that a user joined a course. Completed only ever moves
// from false to true.
type Enrollment struct {
	ID        string    `json:"id" db:"enrollment_id"`
	UserID    string    `json:"userId" db:"user_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"date" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type EnrollmentNew struct {
	UserID   string `json:"userId" validate:"required,uuid4"`
	CourseID string `json:"courseId" validate:"required,uuid4"`
}

// Progress is the watch state of one lesson inside one enrollment.
type Progress struct {
	ID           string    `json:"id" db:"progress_id"`
	EnrollmentID string    `json:"enrollmentId" db:"enrollment_id"`
	LessonID     string    `json:"lessonId" db:"lesson_id"`
	Completed    bool      `json:"completed" db:"completed"`
	LastWatched  time.Time `json:"lastWatched" db:"last_watched"`
}

type ProgressUp struct {
	Completed bool `json:"completed"`
}

// LessonState pairs a lesson of a course with the completion flag of the
// enrollment's progress row for it, false when there is no row.
type LessonState struct {
	LessonID  string `db:"lesson_id"`
	Completed bool   `db:"completed"`
}

type Summary struct {
	CompletedLessons int     `json:"completedLessons"`
	TotalLessons     int     `json:"totalLessons"`
	Percent          float64 `json:"percent"`
}

// Summarize counts completed lessons. Percent is 0 for a course without
// lessons and always within [0, 100].
func Summarize(states []LessonState) Summary {
	s := Summary{TotalLessons: len(states)}
	for _, st := range states {
		if st.Completed {
			s.CompletedLessons++
		}
	}

	if s.TotalLessons > 0 {
		// Truncated to two decimals so only a complete course reaches 100.
		s.Percent = float64(s.CompletedLessons*10000/s.TotalLessons) / 100
	}
	return s
}

// Done reports whether every lesson of the course is completed.
func (s Summary) Done() bool {
	return s.TotalLessons > 0 && s.CompletedLessons == s.TotalLessons
}

// UserCourse is one row of a user's course list.
type UserCourse struct {
	Course     course.Course `json:"course"`
	Enrollment Enrollment    `json:"enrollment"`
	Progress   Summary       `json:"progress"`
}
