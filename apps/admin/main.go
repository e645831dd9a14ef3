package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/roster"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	rootLogger, err := logsvc.New(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	logger := rootLogger.Named("admin")

	// set up DB
	db, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// set up services
	tx := database.NewTransactor(db)
	rosterSvc := roster.NewService(
		tx,
		sqlxrepos.NewRosterRepository(db),
		sqlxrepos.NewCourseRepository(db),
		sqlxrepos.NewStudentRepository(db),
		sqlxrepos.NewUserRepository(db),
		logger,
	)
	attSvc := attendance.NewService(
		tx,
		sqlxrepos.NewAttendanceRepository(db),
		sqlxrepos.NewLessonRepository(db),
		sqlxrepos.NewStudentRepository(db),
		rosterSvc,
		logger,
	)

	// start CLI
	cli := commandLine{
		db:        db,
		rosterSvc: rosterSvc,
		attSvc:    attSvc,
		out:       os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	_ = rootLogger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
