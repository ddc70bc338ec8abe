package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/core/quiz"
	logsvc "github.com/trezcool/mtihani/services/logger"
	notifysvc "github.com/trezcool/mtihani/services/notify"
	"github.com/trezcool/mtihani/storage/database"
	dummydb "github.com/trezcool/mtihani/storage/database/dummy"
)

// Respondents
var (
	Student  = core.Respondent{ID: "student-1", Username: "amani", Email: "amani@test.cd", Roles: []string{core.RoleStudent}}
	Student2 = core.Respondent{ID: "student-2", Username: "baraka", Email: "baraka@test.cd", Roles: []string{core.RoleStudent}}
	Teacher  = core.Respondent{ID: "teacher-1", Username: "mwalimu", Email: "mwalimu@test.cd", Roles: []string{core.RoleTeacher}}
	Admin    = core.Respondent{ID: "admin-1", Username: "admin", Email: "admin@test.cd", Roles: []string{core.RoleAdmin}}
)

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every app validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	quiz.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a silent logger, never reporting to rollbar.
func NewLogger() *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), &core.Config{Env: "test"})
	logger.Enable(false)
	return logger
}

// Env is a fully wired in-memory engine.
type Env struct {
	DB         *dummydb.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     core.Logger
	Sink       *notifysvc.RecordingSink
	Notifier   *notifysvc.Fanout

	FolderRepo   folder.Repository
	QuizRepo     quiz.Repository
	AttemptRepo  attempt.Repository
	Folders      *folder.Service
	Quizzes      *quiz.Service
	Attempts     *attempt.Service
	Analytics    *analytics.Service
	ResultsCache *MemCache
}

func NewEnv(t *testing.T) *Env {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	env := &Env{
		DB:           db,
		Logger:       NewLogger(),
		Sink:         notifysvc.NewRecordingSink(),
		FolderRepo:   dummydb.NewFolderRepository(db),
		QuizRepo:     dummydb.NewQuizRepository(db),
		AttemptRepo:  dummydb.NewAttemptRepository(db),
		ResultsCache: NewMemCache(),
	}
	env.Validate, env.Translator = NewValidator()
	env.Notifier = notifysvc.NewFanoutMock(env.Logger, env.Sink)

	env.Folders = folder.NewService(env.FolderRepo, env.Validate)
	env.Quizzes = quiz.NewService(env.QuizRepo, db, env.Folders, env.Validate)
	env.Folders.RegisterItemCounter(folder.KindQuiz, env.Quizzes)
	env.Analytics = analytics.NewService(dummydb.NewAnalyticsRepository(db), env.AttemptRepo, env.ResultsCache, env.Logger)
	env.Attempts = attempt.NewService(env.AttemptRepo, env.Quizzes, env.Analytics, env.Notifier, env.Logger)
	return env
}

// CreateFolder creates an active folder; parent may be nil.
func CreateFolder(t *testing.T, svc *folder.Service, kind folder.Kind, title string, parent *folder.Folder) folder.Folder {
	nf := folder.NewFolder{Kind: kind, Title: title}
	if parent != nil {
		nf.ParentID = &parent.ID
	}
	f, err := svc.Create(context.Background(), nf)
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	return f
}

// Question builds a question with one option per letter; correct names the correct one.
func Question(subject, difficulty, correct string, letters ...string) quiz.NewQuestion {
	if len(letters) == 0 {
		letters = []string{"a", "b", "c"}
	}
	q := quiz.NewQuestion{
		Prompt:     "Question on " + subject,
		Subject:    subject,
		Difficulty: difficulty,
	}
	for _, l := range letters {
		q.Options = append(q.Options, quiz.NewOption{Letter: l, Text: "option " + l, Correct: l == correct})
	}
	return q
}

func CreateQuiz(t *testing.T, svc *quiz.Service, author core.Respondent, questions ...quiz.NewQuestion) quiz.Quiz {
	qz, err := svc.Create(context.Background(), author, quiz.NewQuiz{Period: "March", Year: 2021, Questions: questions})
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}

// AnswerAll submits letters (one per question, in order) for respondent.
func AnswerAll(t *testing.T, svc *attempt.Service, respondent core.Respondent, qz quiz.Quiz, letters ...string) {
	for i, l := range letters {
		if _, _, err := svc.Submit(context.Background(), respondent, qz.ID, qz.Questions[i].ID, l); err != nil {
			t.Fatalf("AnswerAll() failed on question %d: %v", i+1, err)
		}
	}
}

// MemCache is an in-memory analytics.Cache.
type MemCache struct {
	entries map[string]analytics.Summary
	Gets    int
	Hits    int
}

var _ analytics.Cache = (*MemCache)(nil) // interface compliance check

func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]analytics.Summary)}
}

func (c *MemCache) Get(_ context.Context, key string) (analytics.Summary, error) {
	c.Gets++
	sum, ok := c.entries[key]
	if !ok {
		return analytics.Summary{}, analytics.ErrCacheMiss
	}
	c.Hits++
	return sum, nil
}

func (c *MemCache) Set(_ context.Context, key string, sum analytics.Summary) error {
	c.entries[key] = sum
	return nil
}

// PrepareDB opens the postgres database at TEST_DATABASE_URL, migrates it and empties every table.
// The test is skipped when TEST_DATABASE_URL is not set.
func PrepareDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.OpenURL(dsn)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	_, err = db.Exec("TRUNCATE completion, response, answer_option, question, quiz, folder CASCADE")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
