package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/lesson"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// query returns the live rows matching filter, by id. Callers hold the lock.
func (repo *attendanceRepository) query(filter attendance.QueryFilter) []attendance.Attendance {
	var students core.IDSet
	if filter.StudentIDs != nil {
		students = core.NewIDSet(filter.StudentIDs...)
	}

	atts := make([]attendance.Attendance, 0)
	for _, att := range repo.db.attendance.table {
		if att.DeletedAt.Valid || att.LessonID != filter.LessonID {
			continue
		}
		if students != nil && !students.Has(att.StudentID) {
			continue
		}
		atts = append(atts, *att)
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].ID < atts[j].ID })
	return atts
}

func (repo *attendanceRepository) CountAttendances(_ context.Context, filter attendance.QueryFilter, _ ...core.DBExecutor) (int, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()
	return len(repo.query(filter)), nil
}

func (repo *attendanceRepository) QueryAttendances(ctx context.Context, filter attendance.QueryFilter, _ ...core.DBExecutor) ([]attendance.Attendance, error) {
	repo.db.attendance.RLock()
	atts := repo.query(filter)
	repo.db.attendance.RUnlock()

	if filter.IncludeStudent {
		students := NewStudentRepository(repo.db)
		for i := range atts {
			if s, err := students.withDeleted(atts[i].StudentID); err == nil {
				atts[i].Student = &s
			}
		}
	}
	return atts, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, filter attendance.GetFilter, _ ...core.DBExecutor) (attendance.Attendance, error) {
	repo.db.attendance.RLock()
	a, ok := repo.db.attendance.table[filter.ID]
	repo.db.attendance.RUnlock()
	if !ok || a.DeletedAt.Valid {
		return attendance.Attendance{}, attendance.ErrNotFound
	}

	att := *a
	if filter.IncludeRelations {
		if s, err := NewStudentRepository(repo.db).withDeleted(att.StudentID); err == nil {
			att.Student = &s
		}
		if les, err := NewLessonRepository(repo.db).GetLesson(ctx, lesson.GetFilter{ID: att.LessonID}); err == nil {
			att.Lesson = &les
		}
	}
	return att, nil
}

func (repo *attendanceRepository) CreateAttendances(_ context.Context, atts []attendance.Attendance, _ ...core.DBExecutor) ([]attendance.Attendance, error) {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	if repo.db.attendance.insertErr != nil {
		return nil, repo.db.attendance.insertErr
	}

	// all or nothing, like a single INSERT statement
	taken := make(map[[2]int]bool)
	for _, att := range repo.db.attendance.table {
		if !att.DeletedAt.Valid {
			taken[[2]int{att.StudentID, att.LessonID}] = true
		}
	}
	for _, att := range atts {
		pair := [2]int{att.StudentID, att.LessonID}
		if taken[pair] {
			return nil, errors.Wrap(core.ErrUniqueViolation, "inserting attendance")
		}
		taken[pair] = true
	}

	now := time.Now().UTC()
	saved := make([]attendance.Attendance, 0, len(atts))
	for _, att := range atts {
		repo.db.attendance.seq++
		att.ID = repo.db.attendance.seq
		att.CreatedAt = now
		att.UpdatedAt = now
		att.DeletedAt = null.Time{}
		att.Student, att.Lesson = nil, nil

		row := att
		repo.db.attendance.table[row.ID] = &row
		saved = append(saved, att)
	}
	return saved, nil
}

func (repo *attendanceRepository) UpdateAttendances(_ context.Context, atts []attendance.Attendance, _ ...core.DBExecutor) ([]attendance.Attendance, error) {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	for _, att := range atts {
		if row, ok := repo.db.attendance.table[att.ID]; !ok || row.DeletedAt.Valid {
			return nil, errors.Wrapf(attendance.ErrNotFound, "updating attendance %d", att.ID)
		}
	}

	now := time.Now().UTC()
	saved := make([]attendance.Attendance, 0, len(atts))
	for _, att := range atts {
		row := repo.db.attendance.table[att.ID]
		row.Present = att.Present
		row.Notes = att.Notes
		row.UpdatedAt = now
		saved = append(saved, *row)
	}
	return saved, nil
}

func (repo *attendanceRepository) DeleteAttendances(_ context.Context, filter attendance.DeleteFilter, _ ...core.DBExecutor) (int, error) {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	now := null.TimeFrom(time.Now().UTC())
	var n int
	for _, att := range repo.db.attendance.table {
		if att.DeletedAt.Valid {
			continue
		}
		if (filter.ID != 0 && att.ID == filter.ID) || (filter.ID == 0 && att.LessonID == filter.LessonID) {
			att.DeletedAt = now
			n++
		}
	}
	return n, nil
}
