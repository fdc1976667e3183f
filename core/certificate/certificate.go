package certificate

import (
	"fmt"
	"net/url"
	"time"

	"github.com/irsalhamdi/course-market/random"
)

type Certificate struct {
	ID          string    `json:"id" db:"certificate_id"`
	UserID      string    `json:"userId" db:"user_id"`
	CourseID    string    `json:"courseId" db:"course_id"`
	CourseTitle string    `json:"courseTitle" db:"course_title"`
	UserName    string    `json:"userName" db:"user_name"`
	Code        string    `json:"code" db:"code"`
	URL         string    `json:"url" db:"url"`
	IssuedAt    time.Time `json:"issueDate" db:"issued_at"`
}

type CertificateNew struct {
	CourseID string `json:"courseId" validate:"required,uuid4"`
}

const (
	codePrefix = "CERT-"
	codeLength = 12
)

// newCode returns a verification code and the public url it is checked at.
func newCode(baseURL string) (string, string, error) {
	code, err := random.Code(codePrefix, codeLength)
	if err != nil {
		return "", "", fmt.Errorf("generating code: %w", err)
	}

	u, err := url.JoinPath(baseURL, code)
	if err != nil {
		return "", "", fmt.Errorf("building url: %w", err)
	}
	return code, u, nil
}
