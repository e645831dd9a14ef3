package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
)

var ErrNotFound = core.NewNotFoundError("attendance not found")

// Attendance records whether a student was present at a lesson.
// There is at most one non-deleted Attendance per (StudentID, LessonID).
type Attendance struct {
	ID        int         `json:"id" db:"id"`
	LessonID  int         `json:"lesson_id" db:"lesson_id"`
	StudentID int         `json:"student_id" db:"student_id"`
	Present   bool        `json:"present" db:"present"`
	Notes     null.String `json:"notes" db:"notes"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"` // UTC
	DeletedAt null.Time   `json:"-" db:"deleted_at"`

	Student *student.Student `json:"student,omitempty" db:"-"`
	Lesson  *lesson.Lesson   `json:"lesson,omitempty" db:"-"`
}

type (
	QueryFilter struct {
		LessonID int
		// StudentIDs, when non-nil, restricts the rows to these students.
		StudentIDs     []int
		IncludeStudent bool
	}

	GetFilter struct {
		ID               int
		IncludeRelations bool // Student & Lesson
	}

	// DeleteFilter selects rows by ID or, when ID is 0, by LessonID.
	DeleteFilter struct {
		ID       int
		LessonID int
	}

	// Repository reads never return soft-deleted rows.
	// Create/Update write all rows in one statement and return a (wrapped)
	// core.ErrUniqueViolation when a (student, lesson) pair is already taken.
	Repository interface {
		CountAttendances(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) (int, error)
		QueryAttendances(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Attendance, error)
		GetAttendance(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Attendance, error)
		CreateAttendances(ctx context.Context, atts []Attendance, exec ...core.DBExecutor) ([]Attendance, error)
		UpdateAttendances(ctx context.Context, atts []Attendance, exec ...core.DBExecutor) ([]Attendance, error)
		// DeleteAttendances soft-deletes the selected rows and returns how many were deleted.
		DeleteAttendances(ctx context.Context, filter DeleteFilter, exec ...core.DBExecutor) (int, error)
	}
)

// Entry is one student's submitted attendance for a lesson.
type Entry struct {
	StudentID int
	Present   bool
	Notes     null.String
}

// AttendanceEntry is the wire form of an Entry.
type AttendanceEntry struct {
	StudentID int     `json:"student_id" validate:"id"`
	Present   *bool   `json:"present" validate:"required"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// BulkAttendance is the payload of a lesson's attendance submission.
type BulkAttendance struct {
	Attendances []AttendanceEntry `json:"attendances" validate:"required,min=1,dive"`
}

func (ba *BulkAttendance) Validate(validate *validator.Validate) error {
	for i := range ba.Attendances {
		ba.Attendances[i].Notes = cleanNotes(ba.Attendances[i].Notes)
	}
	return validate.Struct(ba)
}

func (ba BulkAttendance) Entries() []Entry {
	entries := make([]Entry, 0, len(ba.Attendances))
	for _, ae := range ba.Attendances {
		e := Entry{StudentID: ae.StudentID, Notes: null.StringFromPtr(ae.Notes)}
		if ae.Present != nil {
			e.Present = *ae.Present
		}
		entries = append(entries, e)
	}
	return entries
}

// NewAttendance contains information needed to record a single Attendance.
type NewAttendance struct {
	LessonID  int     `json:"lesson_id" validate:"id"`
	StudentID int     `json:"student_id" validate:"id"`
	Present   bool    `json:"present"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.Notes = cleanNotes(na.Notes)
	return validate.Struct(na)
}

// UpdateAttendance defines what may be changed on an existing Attendance.
// Nil fields are left untouched; blank Notes clear the notes.
type UpdateAttendance struct {
	Present *bool   `json:"present"`
	Notes   *string `json:"notes" validate:"omitempty,max=500"`
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	if ua.Notes != nil {
		n := core.CleanString(*ua.Notes)
		ua.Notes = &n
	}
	return validate.Struct(ua)
}

// cleanNotes trims notes; blank notes are dropped.
func cleanNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	n := core.CleanString(*notes)
	if n == "" {
		return nil
	}
	return &n
}
