package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/user"
	emailsvc "github.com/trezcool/asistente/services/email"
	logsvc "github.com/trezcool/asistente/services/logger"
	"github.com/trezcool/asistente/storage/database"
	sqlxrepos "github.com/trezcool/asistente/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(false)
	validate := validator.New()
	courses := sqlxrepos.NewCourseRepository(db)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrSvc:     user.NewService(conf, sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(conf), validate),
		courses:    courses,
		activities: activity.NewService(sqlxrepos.NewActivityRepository(db), courses, validate, appLogger),
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
