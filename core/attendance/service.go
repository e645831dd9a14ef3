package attendance

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/lesson"
	"github.com/trezcool/darasa/core/student"
)

var (
	errAlreadyRecorded = core.NewInvalidOperationError("Attendance records already exist for this lesson. Use PATCH to update.")
	errDuplicate       = core.NewConflictError("Attendance record for this student and lesson already exists.")
)

type (
	// Roster gives the full student roster of a course class.
	Roster interface {
		GetStudents(ctx context.Context, classID int, exec ...core.DBExecutor) ([]student.Student, error)
	}

	ServiceInterface interface {
		BulkCreate(ctx context.Context, lessonID int, entries []Entry) ([]Attendance, error)
		BulkUpdate(ctx context.Context, lessonID int, entries []Entry) ([]Attendance, error)
		BulkUpsert(ctx context.Context, lessonID int, entries []Entry) ([]Attendance, error)
		FindAllByLesson(ctx context.Context, lessonID int) ([]Attendance, error)
		RemoveAllByLesson(ctx context.Context, lessonID int) error

		Create(ctx context.Context, na NewAttendance) (Attendance, error)
		Get(ctx context.Context, id int) (Attendance, error)
		Update(ctx context.Context, id int, ua UpdateAttendance) (Attendance, error)
		Delete(ctx context.Context, id int) error
	}

	// Service reconciles submitted attendance against class rosters and stored rows.
	Service struct {
		db       core.Transactor
		repo     Repository
		lessons  lesson.Repository
		students student.Repository
		roster   Roster
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(
	db core.Transactor,
	repo Repository,
	lessons lesson.Repository,
	students student.Repository,
	roster Roster,
	logger core.Logger,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		lessons:  lessons,
		students: students,
		roster:   roster,
		logger:   logger,
	}
}

// BulkCreate records the attendance of every student of the lesson's class at once.
// It fails if the lesson already has attendance, or if the entries do not match the roster exactly.
func (svc *Service) BulkCreate(ctx context.Context, lessonID int, entries []Entry) ([]Attendance, error) {
	var saved []Attendance
	err := svc.db.WithTx(ctx, func(tx core.DBExecutor) error {
		les, err := svc.getLesson(ctx, lessonID, tx)
		if err != nil {
			return err
		}

		count, err := svc.repo.CountAttendances(ctx, QueryFilter{LessonID: lessonID}, tx)
		if err != nil {
			return errors.Wrap(err, "counting attendances")
		}
		if count > 0 {
			return errAlreadyRecorded
		}

		roster, err := svc.roster.GetStudents(ctx, les.CourseClassID, tx)
		if err != nil {
			return err
		}
		if err = checkEntries(entries, roster, true /* fullCoverage */); err != nil {
			return err
		}

		atts := make([]Attendance, 0, len(entries))
		for _, e := range entries {
			atts = append(atts, newRow(lessonID, e))
		}
		if saved, err = svc.repo.CreateAttendances(ctx, atts, tx); err != nil {
			return errors.Wrap(err, "creating attendances")
		}
		attachStudents(saved, roster)
		return nil
	})
	if err != nil {
		return nil, svc.trapErr(err, "creating attendance records", map[string]interface{}{"lesson_id": lessonID})
	}
	return inSubmissionOrder(entries, saved), nil
}

// BulkUpdate applies entries to the lesson: existing rows are updated, missing ones created.
// Entries need not cover the whole roster but must all belong to it.
func (svc *Service) BulkUpdate(ctx context.Context, lessonID int, entries []Entry) ([]Attendance, error) {
	saved, err := svc.reconcile(ctx, lessonID, entries, false /* fullCoverage */)
	if err != nil {
		return nil, svc.trapErr(err, "updating attendance records", map[string]interface{}{"lesson_id": lessonID})
	}
	return saved, nil
}

// BulkUpsert is BulkUpdate with the full roster coverage of BulkCreate.
func (svc *Service) BulkUpsert(ctx context.Context, lessonID int, entries []Entry) ([]Attendance, error) {
	saved, err := svc.reconcile(ctx, lessonID, entries, true /* fullCoverage */)
	if err != nil {
		return nil, svc.trapErr(err, "saving attendance records", map[string]interface{}{"lesson_id": lessonID})
	}
	return saved, nil
}

func (svc *Service) reconcile(ctx context.Context, lessonID int, entries []Entry, fullCoverage bool) ([]Attendance, error) {
	var saved []Attendance
	err := svc.db.WithTx(ctx, func(tx core.DBExecutor) error {
		les, err := svc.getLesson(ctx, lessonID, tx)
		if err != nil {
			return err
		}
		roster, err := svc.roster.GetStudents(ctx, les.CourseClassID, tx)
		if err != nil {
			return err
		}
		if err = checkEntries(entries, roster, fullCoverage); err != nil {
			return err
		}

		existing, err := svc.repo.QueryAttendances(ctx, QueryFilter{
			LessonID:   lessonID,
			StudentIDs: submittedIDs(entries).Slice(),
		}, tx)
		if err != nil {
			return errors.Wrap(err, "querying attendances")
		}

		updated, created := merge(lessonID, entries, existing)
		if len(updated) > 0 {
			if updated, err = svc.repo.UpdateAttendances(ctx, updated, tx); err != nil {
				return errors.Wrap(err, "updating attendances")
			}
		}
		if len(created) > 0 {
			if created, err = svc.repo.CreateAttendances(ctx, created, tx); err != nil {
				return errors.Wrap(err, "creating attendances")
			}
		}

		saved = append(updated, created...)
		attachStudents(saved, roster)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inSubmissionOrder(entries, saved), nil
}

// FindAllByLesson returns the lesson's attendance with students populated.
func (svc *Service) FindAllByLesson(ctx context.Context, lessonID int) ([]Attendance, error) {
	if _, err := svc.getLesson(ctx, lessonID, nil); err != nil {
		return nil, svc.trapErr(err, "getting attendance records", map[string]interface{}{"lesson_id": lessonID})
	}
	atts, err := svc.repo.QueryAttendances(ctx, QueryFilter{LessonID: lessonID, IncludeStudent: true})
	if err != nil {
		return nil, svc.trapErr(err, "getting attendance records", map[string]interface{}{"lesson_id": lessonID})
	}
	return atts, nil
}

// RemoveAllByLesson soft-deletes all the attendance of the lesson.
func (svc *Service) RemoveAllByLesson(ctx context.Context, lessonID int) error {
	err := svc.db.WithTx(ctx, func(tx core.DBExecutor) error {
		if _, err := svc.getLesson(ctx, lessonID, tx); err != nil {
			return err
		}
		if _, err := svc.repo.DeleteAttendances(ctx, DeleteFilter{LessonID: lessonID}, tx); err != nil {
			return errors.Wrap(err, "deleting attendances")
		}
		return nil
	})
	return svc.trapErr(err, "removing attendance records", map[string]interface{}{"lesson_id": lessonID})
}

// Create records a single attendance. The student must be on the lesson's class roster.
func (svc *Service) Create(ctx context.Context, na NewAttendance) (Attendance, error) {
	fields := map[string]interface{}{"lesson_id": na.LessonID, "student_id": na.StudentID}

	les, err := svc.getLesson(ctx, na.LessonID, nil)
	if err != nil {
		return Attendance{}, svc.trapErr(err, "creating attendance record", fields)
	}
	std, err := svc.students.GetStudent(ctx, na.StudentID)
	if err != nil {
		if core.IsNotFound(err) {
			err = core.NewNotFoundError("Student with ID %d not found", na.StudentID)
		}
		return Attendance{}, svc.trapErr(err, "creating attendance record", fields)
	}
	roster, err := svc.roster.GetStudents(ctx, les.CourseClassID)
	if err != nil {
		return Attendance{}, svc.trapErr(err, "creating attendance record", fields)
	}
	entries := []Entry{{StudentID: na.StudentID, Present: na.Present, Notes: null.StringFromPtr(na.Notes)}}
	if err = checkEntries(entries, roster, false /* fullCoverage */); err != nil {
		return Attendance{}, err
	}

	saved, err := svc.repo.CreateAttendances(ctx, []Attendance{newRow(na.LessonID, entries[0])})
	if err != nil {
		return Attendance{}, svc.trapErr(errors.Wrap(err, "creating attendance"), "creating attendance record", fields)
	}
	att := saved[0]
	att.Student = &std
	att.Lesson = &les
	return att, nil
}

func (svc *Service) Get(ctx context.Context, id int) (Attendance, error) {
	att, err := svc.repo.GetAttendance(ctx, GetFilter{ID: id, IncludeRelations: true})
	if err != nil {
		return Attendance{}, svc.trapErr(svc.notFound(err, id), "getting attendance record", map[string]interface{}{"id": id})
	}
	return att, nil
}

func (svc *Service) Update(ctx context.Context, id int, ua UpdateAttendance) (Attendance, error) {
	var att Attendance
	err := svc.db.WithTx(ctx, func(tx core.DBExecutor) error {
		var err error
		if att, err = svc.repo.GetAttendance(ctx, GetFilter{ID: id}, tx); err != nil {
			return svc.notFound(err, id)
		}
		if ua.Present != nil {
			att.Present = *ua.Present
		}
		if ua.Notes != nil {
			att.Notes = null.NewString(*ua.Notes, *ua.Notes != "")
		}

		saved, err := svc.repo.UpdateAttendances(ctx, []Attendance{att}, tx)
		if err != nil {
			return errors.Wrap(err, "updating attendance")
		}
		att = saved[0]
		return nil
	})
	if err != nil {
		return Attendance{}, svc.trapErr(err, "updating attendance record", map[string]interface{}{"id": id})
	}
	return att, nil
}

// Delete soft-deletes a single attendance.
func (svc *Service) Delete(ctx context.Context, id int) error {
	n, err := svc.repo.DeleteAttendances(ctx, DeleteFilter{ID: id})
	if err != nil {
		return svc.trapErr(errors.Wrap(err, "deleting attendance"), "removing attendance record", map[string]interface{}{"id": id})
	}
	if n == 0 {
		return svc.notFound(ErrNotFound, id)
	}
	return nil
}

// getLesson resolves the lesson, locking it when running inside a transaction.
func (svc *Service) getLesson(ctx context.Context, id int, tx core.DBExecutor) (lesson.Lesson, error) {
	les, err := svc.lessons.GetLesson(ctx, lesson.GetFilter{ID: id, ForUpdate: tx != nil}, tx)
	if err != nil {
		if core.IsNotFound(err) {
			return lesson.Lesson{}, core.NewNotFoundError("Lesson with ID %d not found", id)
		}
		return lesson.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return les, nil
}

func (svc *Service) notFound(err error, id int) error {
	if core.IsNotFound(err) {
		return core.NewNotFoundError("Attendance record with ID %d not found", id)
	}
	return err
}

// trapErr lets domain errors through, turns unique violations into a Conflict and
// hides everything else behind an InternalError.
func (svc *Service) trapErr(err error, op string, fields map[string]interface{}) error {
	if err == nil {
		return nil
	}
	switch errors.Cause(err).(type) {
	case *core.NotFoundError, *core.InvalidOperationError, *core.ConflictError, *core.InternalError:
		return errors.Cause(err)
	}
	if core.IsUniqueViolation(err) {
		return errDuplicate
	}
	svc.logger.Error(fmt.Sprintf("attendance: %s", op), err, fields)
	return core.NewInternalError("Error " + op)
}
