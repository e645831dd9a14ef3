package course

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// CourseClass statuses
const (
	StatusForming    = "FORMING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

var Statuses = []string{StatusForming, StatusInProgress, StatusCompleted, StatusCancelled}

func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

type Course struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

// CourseClass is one offering of a Course.
type CourseClass struct {
	ID        int       `json:"id" db:"id"`
	CourseID  int       `json:"course_id" db:"course_id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   null.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`

	Course *Course `json:"course,omitempty" db:"-"`
}

func (cc CourseClass) IsDeleted() bool {
	return cc.DeletedAt.Valid
}
