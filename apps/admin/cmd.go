package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/roster"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db        *sqlx.DB
	rosterSvc roster.ServiceInterface
	attSvc    attendance.ServiceInterface
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                               - run a goose command (up, down, status, ...)")
	_, _ = fmt.Fprintln(cli.out, "  enroll -class ID (-student ID | -teacher ID)         - add a member to a course class")
	_, _ = fmt.Fprintln(cli.out, "  unenroll -class ID (-student ID | -teacher ID)       - remove a member from a course class")
	_, _ = fmt.Fprintln(cli.out, "  roster -class ID                                     - list the students & teachers of a course class")
	_, _ = fmt.Fprintln(cli.out, "  clearattendance -lesson ID                           - clear the attendance recorded for a lesson")
}

// memberFlags are the flags shared by enroll & unenroll.
type memberFlags struct {
	set       *flag.FlagSet
	classID   *int
	studentID *int
	teacherID *int
}

func (cli *commandLine) newMemberFlags(name string) memberFlags {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(cli.out)
	return memberFlags{
		set:       set,
		classID:   set.Int("class", 0, "The course class ID."),
		studentID: set.Int("student", 0, "The student ID."),
		teacherID: set.Int("teacher", 0, "The teacher (user) ID."),
	}
}

// parse returns errHelp unless exactly one of -student & -teacher is set along with -class.
func (mf memberFlags) parse(args []string) error {
	if err := mf.set.Parse(args); err != nil {
		return errHelp
	}
	if *mf.classID <= 0 || (*mf.studentID > 0) == (*mf.teacherID > 0) {
		mf.set.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "enroll":
		mf := cli.newMemberFlags("enroll")
		if err := mf.parse(args[2:]); err != nil {
			return err
		}
		return cli.enroll(ctx, *mf.classID, *mf.studentID, *mf.teacherID)
	case "unenroll":
		mf := cli.newMemberFlags("unenroll")
		if err := mf.parse(args[2:]); err != nil {
			return err
		}
		return cli.unenroll(ctx, *mf.classID, *mf.studentID, *mf.teacherID)
	case "roster":
		rosterCmd := flag.NewFlagSet("roster", flag.ContinueOnError)
		rosterCmd.SetOutput(cli.out)
		classID := rosterCmd.Int("class", 0, "The course class ID.")
		if err := rosterCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *classID <= 0 {
			rosterCmd.Usage()
			return errHelp
		}
		return cli.roster(ctx, *classID)
	case "clearattendance":
		clearCmd := flag.NewFlagSet("clearattendance", flag.ContinueOnError)
		clearCmd.SetOutput(cli.out)
		lessonID := clearCmd.Int("lesson", 0, "The lesson ID.")
		if err := clearCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *lessonID <= 0 {
			clearCmd.Usage()
			return errHelp
		}
		return cli.clearAttendance(ctx, *lessonID)
	default:
		cli.printUsage()
		return errHelp
	}
}
