package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof handlers
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/mtihani/apps/api/echo"
	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/core/quiz"
	logsvc "github.com/trezcool/mtihani/services/logger"
	"github.com/trezcool/mtihani/services/metrics"
	notifysvc "github.com/trezcool/mtihani/services/notify"
	rediscache "github.com/trezcool/mtihani/storage/cache"
	"github.com/trezcool/mtihani/storage/database"
	boiledrepos "github.com/trezcool/mtihani/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/mtihani/storage/database/sqlx"
)

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up results cache
	var cache analytics.Cache
	if conf.Redis.Addr != "" {
		client, err := rediscache.Open(context.Background(), conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
		}
		defer client.Close()
		cache = rediscache.NewResultCache(client, conf.Redis.ResultTTL)
	}

	// set up notifications
	notifier, closers, err := notifysvc.New(conf, logger)
	for _, c := range closers {
		defer c.Close()
	}
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up notifications: %v", err), err)
	}
	// deliveries in flight finish before the sinks close
	defer notifier.Wait()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	quiz.InitValidators(validate, translator)

	// set up services
	attemptRepo := boiledrepos.NewAttemptRepository(db)

	folderSvc := folder.NewService(boiledrepos.NewFolderRepository(db), validate)
	quizSvc := quiz.NewService(boiledrepos.NewQuizRepository(db), database.NewTxRunner(db), folderSvc, validate)
	folderSvc.RegisterItemCounter(folder.KindQuiz, quizSvc)
	analyticsSvc := analytics.NewService(sqlxrepos.NewAnalyticsRepository(db), attemptRepo, cache, logger)
	attemptSvc := attempt.NewService(attemptRepo, quizSvc, analyticsSvc, notifier, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus collectors.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	http.DefaultServeMux.Handle("/metrics", metrics.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			FolderSvc:    folderSvc,
			QuizSvc:      quizSvc,
			AttemptSvc:   attemptSvc,
			AnalyticsSvc: analyticsSvc,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
