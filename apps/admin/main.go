package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/core/quiz"
	logsvc "github.com/trezcool/mtihani/services/logger"
	notifysvc "github.com/trezcool/mtihani/services/notify"
	"github.com/trezcool/mtihani/storage/database"
	boiledrepos "github.com/trezcool/mtihani/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/mtihani/storage/database/sqlx"
)

var logger *logsvc.RollbarLogger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services; the CLI never notifies
	validate := validator.New()
	attemptRepo := boiledrepos.NewAttemptRepository(db)
	folderSvc := folder.NewService(boiledrepos.NewFolderRepository(db), validate)
	quizSvc := quiz.NewService(boiledrepos.NewQuizRepository(db), database.NewTxRunner(db), folderSvc, validate)
	analyticsSvc := analytics.NewService(sqlxrepos.NewAnalyticsRepository(db), attemptRepo, nil, logger)
	notifier := notifysvc.NewFanout(logger, conf.Notify.Timeout)

	// start CLI
	cli := commandLine{
		db:           db,
		conf:         conf,
		quizSvc:      quizSvc,
		attemptSvc:   attempt.NewService(attemptRepo, quizSvc, analyticsSvc, notifier, logger),
		analyticsSvc: analyticsSvc,
		out:          os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
