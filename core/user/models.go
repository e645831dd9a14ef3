package user

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
)

var ErrNotFound = core.NewNotFoundError("user not found")

// User is a staff account. Users assigned to course classes act as their teachers.
type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type Repository interface {
	GetUser(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
}

// IDs returns the ids of users, in order.
func IDs(users []User) []int {
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
