package sqlxrepos

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/storage/database"
)

const attendanceColumns = "a.id, a.lesson_id, a.student_id, a.present, a.notes, a.created_at, a.updated_at, a.deleted_at"

const insertAttendances = `INSERT INTO attendance (lesson_id, student_id, present, notes, created_at, updated_at)
	VALUES (:lesson_id, :student_id, :present, :notes, :created_at, :updated_at)
	RETURNING id, lesson_id, student_id, present, notes, created_at, updated_at, deleted_at`

const updateAttendances = `UPDATE attendance AS a
	SET present = v.present, notes = v.notes, updated_at = $4
	FROM unnest($1::int[], $2::bool[], $3::varchar[]) AS v(id, present, notes)
	WHERE a.id = v.id AND a.deleted_at IS NULL
	RETURNING ` + attendanceColumns

type attendanceRepository struct {
	executor
	lessons *lessonRepository
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{executor: newExecutor(db), lessons: NewLessonRepository(db)}
}

// attendanceStudentRow is an attendance joined with its student.
type attendanceStudentRow struct {
	attendance.Attendance
	S student.Student `db:"student"`
}

// where builds the WHERE clause of filter, numbering placeholders from 1.
func (repo attendanceRepository) where(filter attendance.QueryFilter) (string, []interface{}) {
	conds := []string{"a.deleted_at IS NULL", "a.lesson_id = $1"}
	args := []interface{}{filter.LessonID}
	if filter.StudentIDs != nil {
		args = append(args, int64s(filter.StudentIDs))
		conds = append(conds, "a.student_id = ANY($"+strconv.Itoa(len(args))+"::int[])")
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo attendanceRepository) CountAttendances(ctx context.Context, filter attendance.QueryFilter, exec ...core.DBExecutor) (int, error) {
	where, args := repo.where(filter)
	var count int
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &count, "SELECT count(*) FROM attendance a"+where, args...); err != nil {
		return 0, errors.Wrap(err, "counting attendances")
	}
	return count, nil
}

func (repo attendanceRepository) QueryAttendances(ctx context.Context, filter attendance.QueryFilter, exec ...core.DBExecutor) ([]attendance.Attendance, error) {
	db := repo.getExec(exec)
	where, args := repo.where(filter)

	if !filter.IncludeStudent {
		atts := make([]attendance.Attendance, 0)
		q := "SELECT " + attendanceColumns + " FROM attendance a" + where + " ORDER BY a.id"
		if err := sqlx.SelectContext(ctx, db, &atts, q, args...); err != nil {
			return nil, errors.Wrap(err, "selecting attendances")
		}
		return atts, nil
	}

	// the student of a record stays visible after being soft-deleted
	q := "SELECT " + attendanceColumns + `,
		s.id "student.id", s.name "student.name", s.birth_date "student.birth_date",
		s.created_at "student.created_at", s.updated_at "student.updated_at", s.deleted_at "student.deleted_at"
		FROM attendance a JOIN student s ON s.id = a.student_id` + where + " ORDER BY a.id"
	var rows []attendanceStudentRow
	if err := sqlx.SelectContext(ctx, db, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendances with students")
	}
	atts := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		att := row.Attendance
		s := row.S
		att.Student = &s
		atts = append(atts, att)
	}
	return atts, nil
}

func (repo attendanceRepository) GetAttendance(ctx context.Context, filter attendance.GetFilter, exec ...core.DBExecutor) (attendance.Attendance, error) {
	db := repo.getExec(exec)

	var att attendance.Attendance
	q := "SELECT " + attendanceColumns + " FROM attendance a WHERE a.id = $1 AND a.deleted_at IS NULL"
	if err := sqlx.GetContext(ctx, db, &att, q, filter.ID); err != nil {
		return attendance.Attendance{}, trapNoRowsErr(err, attendance.ErrNotFound, "getting attendance")
	}

	if filter.IncludeRelations {
		var s student.Student
		q = "SELECT " + studentColumns + " FROM student WHERE id = $1"
		if err := sqlx.GetContext(ctx, db, &s, q, att.StudentID); err != nil {
			return attendance.Attendance{}, trapNoRowsErr(err, student.ErrNotFound, "getting attendance student")
		}
		att.Student = &s

		les, err := repo.lessons.GetLesson(ctx, lesson.GetFilter{ID: att.LessonID}, db)
		if err != nil {
			return attendance.Attendance{}, errors.Wrap(err, "getting attendance lesson")
		}
		att.Lesson = &les
	}
	return att, nil
}

// CreateAttendances inserts all rows with one multi-row INSERT.
// Each row binds 6 parameters, so a batch is capped near 10,900 rows by the PostgreSQL 65535 limit.
func (repo attendanceRepository) CreateAttendances(ctx context.Context, atts []attendance.Attendance, exec ...core.DBExecutor) ([]attendance.Attendance, error) {
	if len(atts) == 0 {
		return []attendance.Attendance{}, nil
	}

	now := time.Now().UTC()
	for i := range atts {
		atts[i].CreatedAt = now
		atts[i].UpdatedAt = now
	}

	rows, err := sqlx.NamedQueryContext(ctx, repo.getExec(exec), insertAttendances, atts)
	if err != nil {
		return nil, database.TrapWriteErr(err, "inserting attendances")
	}
	defer func() { _ = rows.Close() }()

	saved := make([]attendance.Attendance, 0, len(atts))
	for rows.Next() {
		var att attendance.Attendance
		if err = rows.StructScan(&att); err != nil {
			return nil, errors.Wrap(err, "scanning attendance")
		}
		saved = append(saved, att)
	}
	if err = rows.Err(); err != nil {
		return nil, database.TrapWriteErr(err, "inserting attendances")
	}
	return saved, nil
}

// UpdateAttendances writes present & notes of all rows with one UPDATE.
func (repo attendanceRepository) UpdateAttendances(ctx context.Context, atts []attendance.Attendance, exec ...core.DBExecutor) ([]attendance.Attendance, error) {
	if len(atts) == 0 {
		return []attendance.Attendance{}, nil
	}

	ids := make([]int, 0, len(atts))
	present := make(pq.BoolArray, 0, len(atts))
	notes := make([]null.String, 0, len(atts))
	for _, att := range atts {
		ids = append(ids, att.ID)
		present = append(present, att.Present)
		notes = append(notes, att.Notes)
	}

	saved := make([]attendance.Attendance, 0, len(atts))
	err := sqlx.SelectContext(
		ctx, repo.getExec(exec), &saved, updateAttendances,
		int64s(ids), present, pq.GenericArray{A: notes}, time.Now().UTC(),
	)
	if err != nil {
		return nil, database.TrapWriteErr(err, "updating attendances")
	}
	if len(saved) != len(atts) {
		return nil, errors.Wrapf(attendance.ErrNotFound, "updated %d of %d attendances", len(saved), len(atts))
	}
	return saved, nil
}

func (repo attendanceRepository) DeleteAttendances(ctx context.Context, filter attendance.DeleteFilter, exec ...core.DBExecutor) (int, error) {
	q := "UPDATE attendance SET deleted_at = $1 WHERE deleted_at IS NULL AND lesson_id = $2"
	arg := filter.LessonID
	if filter.ID != 0 {
		q = "UPDATE attendance SET deleted_at = $1 WHERE deleted_at IS NULL AND id = $2"
		arg = filter.ID
	}

	res, err := repo.getExec(exec).ExecContext(ctx, q, time.Now().UTC(), arg)
	if err != nil {
		return 0, errors.Wrap(err, "soft-deleting attendances")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "soft-deleting attendances")
	}
	return int(n), nil
}
