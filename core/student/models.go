package student

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = core.NewNotFoundError("student not found")

type Student struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

type Repository interface {
	GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
}

// IDs returns the ids of students, in order.
func IDs(students []Student) []int {
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}
