package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/roster"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type rosterRepository struct {
	db *DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) *rosterRepository {
	return &rosterRepository{db: db}
}

// memberIDs returns the sorted member ids of the class.
func (t *edgeTable) memberIDs(classID int) []int {
	t.RLock()
	defer t.RUnlock()

	var ids []int
	for e := range t.table {
		if e.classID == classID {
			ids = append(ids, e.memberID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (t *edgeTable) add(classID, memberID int) error {
	t.Lock()
	defer t.Unlock()

	e := edge{classID: classID, memberID: memberID}
	if _, ok := t.table[e]; ok {
		return errors.Wrap(core.ErrUniqueViolation, "adding roster edge")
	}
	t.table[e] = struct{}{}
	return nil
}

func (t *edgeTable) remove(classID, memberID int) bool {
	t.Lock()
	defer t.Unlock()

	e := edge{classID: classID, memberID: memberID}
	if _, ok := t.table[e]; !ok {
		return false
	}
	delete(t.table, e)
	return true
}

func (repo *rosterRepository) QueryClassStudents(_ context.Context, classID int, _ ...core.DBExecutor) ([]student.Student, error) {
	ids := repo.db.classStudent.memberIDs(classID)

	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		if s, ok := repo.db.student.table[id]; ok && !s.DeletedAt.Valid {
			students = append(students, *s)
		}
	}
	return students, nil
}

func (repo *rosterRepository) AddClassStudent(_ context.Context, classID, studentID int, _ ...core.DBExecutor) error {
	return repo.db.classStudent.add(classID, studentID)
}

func (repo *rosterRepository) RemoveClassStudent(_ context.Context, classID, studentID int, _ ...core.DBExecutor) (bool, error) {
	return repo.db.classStudent.remove(classID, studentID), nil
}

func (repo *rosterRepository) QueryClassTeachers(_ context.Context, classID int, _ ...core.DBExecutor) ([]user.User, error) {
	ids := repo.db.classTeacher.memberIDs(classID)

	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	teachers := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := repo.db.user.table[id]; ok {
			teachers = append(teachers, *u)
		}
	}
	return teachers, nil
}

func (repo *rosterRepository) AddClassTeacher(_ context.Context, classID, teacherID int, _ ...core.DBExecutor) error {
	return repo.db.classTeacher.add(classID, teacherID)
}

func (repo *rosterRepository) RemoveClassTeacher(_ context.Context, classID, teacherID int, _ ...core.DBExecutor) (bool, error) {
	return repo.db.classTeacher.remove(classID, teacherID), nil
}
