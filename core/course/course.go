package course

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

type Category struct {
	ID          string    `json:"id" db:"category_id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

type CategoryNew struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// Course is the catalog read model. AverageRating and StudentCount are
// computed by the store on every read.
type Course struct {
	ID            string              `json:"id" db:"course_id"`
	CategoryID    string              `json:"categoryId" db:"category_id"`
	InstructorID  string              `json:"instructorId" db:"instructor_id"`
	Title         string              `json:"title" db:"title"`
	Slug          string              `json:"slug" db:"slug"`
	Subtitle      string              `json:"subtitle" db:"subtitle"`
	Description   string              `json:"description" db:"description"`
	ImageURL      string              `json:"imageUrl" db:"image_url"`
	Level         Level               `json:"level" db:"level"`
	Duration      int                 `json:"duration" db:"duration"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice" db:"discount_price"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" db:"updated_at"`
	AverageRating float64             `json:"averageRating" db:"average_rating"`
	StudentCount  int                 `json:"studentCount" db:"student_count"`
}

// EffectivePrice is what a buyer pays right now: the discount price when
// one is set, the list price otherwise.
func (c Course) EffectivePrice() decimal.Decimal {
	if c.DiscountPrice.Valid {
		return c.DiscountPrice.Decimal
	}
	return c.Price
}

// Free reports whether the course can be enrolled in without paying.
func (c Course) Free() bool {
	return c.EffectivePrice().IsZero()
}

type CourseNew struct {
	CategoryID    string           `json:"categoryId" validate:"required,uuid4"`
	InstructorID  string           `json:"instructorId" validate:"omitempty,uuid4"`
	Title         string           `json:"title" validate:"required,max=200"`
	Subtitle      string           `json:"subtitle" validate:"max=200"`
	Description   string           `json:"description" validate:"required"`
	ImageURL      string           `json:"imageUrl" validate:"omitempty,url"`
	Level         Level            `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Duration      int              `json:"duration" validate:"gte=0"`
	Price         decimal.Decimal  `json:"price" validate:"gte=0,lte=100000"`
	DiscountPrice *decimal.Decimal `json:"discountPrice" validate:"omitempty,gte=0,lte=100000"`
}

// CourseUp carries a partial update. ClearDiscount removes the discount
// price, since a nil DiscountPrice means "leave unchanged".
type CourseUp struct {
	CategoryID    *string          `json:"categoryId" validate:"omitempty,uuid4"`
	Title         *string          `json:"title" validate:"omitempty,max=200"`
	Subtitle      *string          `json:"subtitle" validate:"omitempty,max=200"`
	Description   *string          `json:"description"`
	ImageURL      *string          `json:"imageUrl" validate:"omitempty,url"`
	Level         *Level           `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Duration      *int             `json:"duration" validate:"omitempty,gte=0"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lte=100000"`
	DiscountPrice *decimal.Decimal `json:"discountPrice" validate:"omitempty,gte=0,lte=100000"`
	ClearDiscount bool             `json:"clearDiscount"`
}

// Apply copies the set fields of up onto c.
func (up CourseUp) Apply(c *Course) {
	if up.CategoryID != nil {
		c.CategoryID = *up.CategoryID
	}
	if up.Title != nil {
		c.Title = *up.Title
	}
	if up.Subtitle != nil {
		c.Subtitle = *up.Subtitle
	}
	if up.Description != nil {
		c.Description = *up.Description
	}
	if up.ImageURL != nil {
		c.ImageURL = *up.ImageURL
	}
	if up.Level != nil {
		c.Level = *up.Level
	}
	if up.Duration != nil {
		c.Duration = *up.Duration
	}
	if up.Price != nil {
		c.Price = *up.Price
	}
	if up.DiscountPrice != nil {
		c.DiscountPrice = decimal.NewNullDecimal(*up.DiscountPrice)
	}
	if up.ClearDiscount {
		c.DiscountPrice = decimal.NullDecimal{}
	}
}

// Filter narrows a catalog listing. Zero values are ignored.
type Filter struct {
	CategoryID string
	Level      Level
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
}

type Module struct {
	ID          string   `json:"id" db:"module_id"`
	CourseID    string   `json:"courseId" db:"course_id"`
	Title       string   `json:"title" db:"title"`
	Description string   `json:"description" db:"description"`
	Order       int      `json:"order" db:"sort_order"`
	Lessons     []Lesson `json:"lessons" db:"-"`
}

type ModuleNew struct {
	CourseID    string `json:"courseId" validate:"required,uuid4"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"gte=0"`
}

type Lesson struct {
	ID       string `json:"id" db:"lesson_id"`
	ModuleID string `json:"moduleId" db:"module_id"`
	CourseID string `json:"courseId" db:"course_id"`
	Title    string `json:"title" db:"title"`
	Content  string `json:"content" db:"content"`
	VideoURL string `json:"videoUrl" db:"video_url"`
	Duration int    `json:"duration" db:"duration"`
	Order    int    `json:"order" db:"sort_order"`
}

type LessonNew struct {
	ModuleID string `json:"moduleId" validate:"required,uuid4"`
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl" validate:"omitempty,url"`
	Duration int    `json:"duration" validate:"gte=0"`
	Order    int    `json:"order" validate:"gte=0"`
}

type MaterialType string

const (
	Document     MaterialType = "document"
	Presentation MaterialType = "presentation"
	Spreadsheet  MaterialType = "spreadsheet"
	Archive      MaterialType = "archive"
	Link         MaterialType = "link"
	Other        MaterialType = "other"
)

type Material struct {
	ID       string       `json:"id" db:"material_id"`
	LessonID string       `json:"lessonId" db:"lesson_id"`
	Title    string       `json:"title" db:"title"`
	Type     MaterialType `json:"type" db:"type"`
	URL      string       `json:"url" db:"url"`
}

// MaterialNew registers a material already stored elsewhere. Type is
// derived from the URL extension when left empty.
type MaterialNew struct {
	LessonID string       `json:"lessonId" validate:"required,uuid4"`
	Title    string       `json:"title" validate:"required,max=200"`
	Type     MaterialType `json:"type" validate:"omitempty,oneof=document presentation spreadsheet archive link other"`
	URL      string       `json:"url" validate:"required,url"`
}

// MaterialTypeOf classifies a material by the extension of its URL path.
// URLs without an extension are links.
func MaterialTypeOf(rawURL string) MaterialType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Other
	}

	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	switch strings.ToLower(ext) {
	case "":
		return Link
	case "pdf", "doc", "docx", "txt":
		return Document
	case "ppt", "pptx":
		return Presentation
	case "xlsx", "csv":
		return Spreadsheet
	case "zip":
		return Archive
	}
	return Other
}
