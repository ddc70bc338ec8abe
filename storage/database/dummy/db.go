package dummydb

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/core/quiz"
)

type (
	// DB is an in-memory database. A single lock guards all tables.
	DB struct {
		sync.RWMutex
		txMu sync.Mutex

		folders     map[string]folder.Folder
		quizzes     map[string]quiz.Quiz // rows only, no questions
		questions   map[string]quiz.Question
		options     map[string]quiz.AnswerOption
		responses   map[string]attempt.Response
		completions map[completionKey]attempt.Completion
	}

	completionKey struct{ respondentID, quizID string }

	snapshot struct {
		folders     map[string]folder.Folder
		quizzes     map[string]quiz.Quiz
		questions   map[string]quiz.Question
		options     map[string]quiz.AnswerOption
		responses   map[string]attempt.Response
		completions map[completionKey]attempt.Completion
	}
)

var _ core.TxRunner = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		folders:     make(map[string]folder.Folder),
		quizzes:     make(map[string]quiz.Quiz),
		questions:   make(map[string]quiz.Question),
		options:     make(map[string]quiz.AnswerOption),
		responses:   make(map[string]attempt.Response),
		completions: make(map[completionKey]attempt.Completion),
	}
	return db, nil
}

func newID() string { return uuid.New().String() }

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	cp := make(map[K]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func (db *DB) snapshot() snapshot {
	db.RLock()
	defer db.RUnlock()
	return snapshot{
		folders:     copyMap(db.folders),
		quizzes:     copyMap(db.quizzes),
		questions:   copyMap(db.questions),
		options:     copyMap(db.options),
		responses:   copyMap(db.responses),
		completions: copyMap(db.completions),
	}
}

func (db *DB) restore(s snapshot) {
	db.Lock()
	defer db.Unlock()
	db.folders = s.folders
	db.quizzes = s.quizzes
	db.questions = s.questions
	db.options = s.options
	db.responses = s.responses
	db.completions = s.completions
}

// RunInTx restores every table to its state before fn when fn fails.
// Transactions are serialized; reads outside them may observe uncommitted writes.
// The restore is a whole-store snapshot: writes made outside the transaction while fn ran are lost too.
func (db *DB) RunInTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	before := db.snapshot()
	if err := fn(nil); err != nil {
		db.restore(before)
		return err
	}
	return nil
}
