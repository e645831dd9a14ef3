package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type ServiceInterface interface {
	AddStudent(ctx context.Context, classID, studentID int) error
	RemoveStudent(ctx context.Context, classID, studentID int) error
	GetStudents(ctx context.Context, classID int, exec ...core.DBExecutor) ([]student.Student, error)

	AddTeacher(ctx context.Context, classID, teacherID int) error
	RemoveTeacher(ctx context.Context, classID, teacherID int) error
	GetTeachers(ctx context.Context, classID int, exec ...core.DBExecutor) ([]user.User, error)
}

// Service is the membership manager of course classes.
type Service struct {
	db       core.Transactor
	repo     Repository
	classes  course.Repository
	students student.Repository
	users    user.Repository
	logger   core.Logger
}

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(
	db core.Transactor,
	repo Repository,
	classes course.Repository,
	students student.Repository,
	users user.Repository,
	logger core.Logger,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		classes:  classes,
		students: students,
		users:    users,
		logger:   logger,
	}
}

// members abstracts over the two kinds of roster edges.
type members struct {
	label  string // "Student" | "Teacher"
	get    func(ctx context.Context, id int, tx core.DBExecutor) error
	query  func(ctx context.Context, classID int, tx core.DBExecutor) ([]int, error)
	add    func(ctx context.Context, classID, id int, tx core.DBExecutor) error
	remove func(ctx context.Context, classID, id int, tx core.DBExecutor) (bool, error)
}

func (svc *Service) studentMembers() members {
	return members{
		label: "Student",
		get: func(ctx context.Context, id int, tx core.DBExecutor) error {
			_, err := svc.students.GetStudent(ctx, id, tx)
			return err
		},
		query: func(ctx context.Context, classID int, tx core.DBExecutor) ([]int, error) {
			students, err := svc.repo.QueryClassStudents(ctx, classID, tx)
			return student.IDs(students), err
		},
		add: func(ctx context.Context, classID, id int, tx core.DBExecutor) error {
			return svc.repo.AddClassStudent(ctx, classID, id, tx)
		},
		remove: func(ctx context.Context, classID, id int, tx core.DBExecutor) (bool, error) {
			return svc.repo.RemoveClassStudent(ctx, classID, id, tx)
		},
	}
}

func (svc *Service) teacherMembers() members {
	return members{
		label: "Teacher",
		get: func(ctx context.Context, id int, tx core.DBExecutor) error {
			_, err := svc.users.GetUser(ctx, id, tx)
			return err
		},
		query: func(ctx context.Context, classID int, tx core.DBExecutor) ([]int, error) {
			teachers, err := svc.repo.QueryClassTeachers(ctx, classID, tx)
			return user.IDs(teachers), err
		},
		add: func(ctx context.Context, classID, id int, tx core.DBExecutor) error {
			return svc.repo.AddClassTeacher(ctx, classID, id, tx)
		},
		remove: func(ctx context.Context, classID, id int, tx core.DBExecutor) (bool, error) {
			return svc.repo.RemoveClassTeacher(ctx, classID, id, tx)
		},
	}
}

func (svc *Service) AddStudent(ctx context.Context, classID, studentID int) error {
	return svc.add(ctx, svc.studentMembers(), classID, studentID)
}

func (svc *Service) RemoveStudent(ctx context.Context, classID, studentID int) error {
	return svc.remove(ctx, svc.studentMembers(), classID, studentID)
}

// GetStudents returns the full roster of students of the class.
// When exec is given, the class and its roster are read through it.
func (svc *Service) GetStudents(ctx context.Context, classID int, exec ...core.DBExecutor) ([]student.Student, error) {
	if err := svc.checkClass(ctx, classID, exec...); err != nil {
		return nil, svc.trapErr(err, "getting class students", map[string]interface{}{"class_id": classID})
	}
	students, err := svc.repo.QueryClassStudents(ctx, classID, exec...)
	if err != nil {
		return nil, svc.trapErr(err, "getting class students", map[string]interface{}{"class_id": classID})
	}
	return students, nil
}

func (svc *Service) AddTeacher(ctx context.Context, classID, teacherID int) error {
	return svc.add(ctx, svc.teacherMembers(), classID, teacherID)
}

func (svc *Service) RemoveTeacher(ctx context.Context, classID, teacherID int) error {
	return svc.remove(ctx, svc.teacherMembers(), classID, teacherID)
}

// GetTeachers returns the full list of teachers assigned to the class.
func (svc *Service) GetTeachers(ctx context.Context, classID int, exec ...core.DBExecutor) ([]user.User, error) {
	if err := svc.checkClass(ctx, classID, exec...); err != nil {
		return nil, svc.trapErr(err, "getting class teachers", map[string]interface{}{"class_id": classID})
	}
	teachers, err := svc.repo.QueryClassTeachers(ctx, classID, exec...)
	if err != nil {
		return nil, svc.trapErr(err, "getting class teachers", map[string]interface{}{"class_id": classID})
	}
	return teachers, nil
}

func (svc *Service) add(ctx context.Context, m members, classID, memberID int) error {
	err := svc.db.WithTx(ctx, func(tx core.DBExecutor) error {
		if err := svc.checkClass(ctx, classID, tx); err != nil {
			return err
		}
		if err := m.get(ctx, memberID, tx); err != nil {
			if core.IsNotFound(err) {
				return core.NewNotFoundError("%s with ID %d not found", m.label, memberID)
			}
			return errors.Wrapf(err, "getting %s", m.label)
		}

		ids, err := m.query(ctx, classID, tx)
		if err != nil {
			return errors.Wrap(err, "querying roster")
		}
		if core.NewIDSet(ids...).Has(memberID) {
			return alreadyMember(m, memberID)
		}

		if err = m.add(ctx, classID, memberID, tx); err != nil {
			// a concurrent add won the race
			if core.IsUniqueViolation(err) {
				return alreadyMember(m, memberID)
			}
			return errors.Wrap(err, "adding roster edge")
		}
		return nil
	})
	return svc.trapErr(err, fmt.Sprintf("adding %s to class", strings.ToLower(m.label)), map[string]interface{}{
		"class_id":  classID,
		"member_id": memberID,
	})
}

func (svc *Service) remove(ctx context.Context, m members, classID, memberID int) error {
	err := svc.db.WithTx(ctx, func(tx core.DBExecutor) error {
		if err := svc.checkClass(ctx, classID, tx); err != nil {
			return err
		}

		// the edge decides membership: soft-deleted students are hidden from rosters but still removable
		removed, err := m.remove(ctx, classID, memberID, tx)
		if err != nil {
			return errors.Wrap(err, "removing roster edge")
		}
		if !removed {
			return notMember(m, memberID)
		}
		return nil
	})
	return svc.trapErr(err, fmt.Sprintf("removing %s from class", strings.ToLower(m.label)), map[string]interface{}{
		"class_id":  classID,
		"member_id": memberID,
	})
}

func (svc *Service) checkClass(ctx context.Context, classID int, exec ...core.DBExecutor) error {
	if _, err := svc.classes.GetCourseClass(ctx, course.GetFilter{ID: classID}, exec...); err != nil {
		if core.IsNotFound(err) {
			return core.NewNotFoundError("Course class with ID %d not found", classID)
		}
		return errors.Wrap(err, "getting course class")
	}
	return nil
}

// trapErr lets domain errors through and hides everything else behind an InternalError.
func (svc *Service) trapErr(err error, op string, fields map[string]interface{}) error {
	if err == nil {
		return nil
	}
	switch errors.Cause(err).(type) {
	case *core.NotFoundError, *core.InvalidOperationError, *core.ConflictError, *core.InternalError:
		return errors.Cause(err)
	}
	svc.logger.Error("roster: "+op, err, fields)
	return core.NewInternalError("Error " + op)
}

func alreadyMember(m members, id int) error {
	return core.NewInvalidOperationError(fmt.Sprintf("%s with ID %d is already in this class.", m.label, id), id)
}

func notMember(m members, id int) error {
	return core.NewNotFoundError("%s with ID %d not found in this class.", m.label, id)
}
