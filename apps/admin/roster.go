package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) enroll(ctx context.Context, classID, studentID, teacherID int) error {
	if studentID > 0 {
		if err := cli.rosterSvc.AddStudent(ctx, classID, studentID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "student %d enrolled in class %d\n", studentID, classID)
		return nil
	}
	if err := cli.rosterSvc.AddTeacher(ctx, classID, teacherID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "teacher %d assigned to class %d\n", teacherID, classID)
	return nil
}

func (cli *commandLine) unenroll(ctx context.Context, classID, studentID, teacherID int) error {
	if studentID > 0 {
		if err := cli.rosterSvc.RemoveStudent(ctx, classID, studentID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "student %d removed from class %d\n", studentID, classID)
		return nil
	}
	if err := cli.rosterSvc.RemoveTeacher(ctx, classID, teacherID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "teacher %d removed from class %d\n", teacherID, classID)
	return nil
}

func (cli *commandLine) roster(ctx context.Context, classID int) error {
	teachers, err := cli.rosterSvc.GetTeachers(ctx, classID)
	if err != nil {
		return err
	}
	students, err := cli.rosterSvc.GetStudents(ctx, classID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cli.out, "teachers (%d):\n", len(teachers))
	for _, t := range teachers {
		_, _ = fmt.Fprintf(cli.out, "  %d\t%s\t%s\n", t.ID, t.Name, t.Email)
	}
	_, _ = fmt.Fprintf(cli.out, "students (%d):\n", len(students))
	for _, s := range students {
		_, _ = fmt.Fprintf(cli.out, "  %d\t%s\n", s.ID, s.Name)
	}
	return nil
}

func (cli *commandLine) clearAttendance(ctx context.Context, lessonID int) error {
	if err := cli.attSvc.RemoveAllByLesson(ctx, lessonID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "attendance of lesson %d cleared\n", lessonID)
	return nil
}
