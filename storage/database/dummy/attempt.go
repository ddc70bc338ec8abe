package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
)

type attemptRepository struct {
	db *DB
}

var _ attempt.Repository = (*attemptRepository)(nil) // interface compliance check

func NewAttemptRepository(db *DB) attempt.Repository {
	return &attemptRepository{db: db}
}

func (repo *attemptRepository) UpsertResponse(_ context.Context, r attempt.Response, _ ...core.DBExecutor) (attempt.Response, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, existing := range repo.db.responses {
		if existing.RespondentID == r.RespondentID && existing.QuestionID == r.QuestionID {
			existing.Letter = r.Letter
			existing.UpdatedAt = r.UpdatedAt
			repo.db.responses[id] = existing
			return existing, nil
		}
	}
	r.ID = newID()
	repo.db.responses[r.ID] = r
	return r, nil
}

// InsertResponse stores r without the (respondent, question) uniqueness check.
// Used to reproduce duplicates left by older clients.
func (db *DB) InsertResponse(r attempt.Response) attempt.Response {
	db.Lock()
	defer db.Unlock()

	if r.ID == "" {
		r.ID = newID()
	}
	db.responses[r.ID] = r
	return r
}

func (repo *attemptRepository) QueryResponses(
	_ context.Context,
	respondentID string,
	questionIDs []string,
	_ ...core.DBExecutor,
) ([]attempt.Response, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.queryResponses(respondentID, questionIDs), nil
}

func (db *DB) queryResponses(respondentID string, questionIDs []string) []attempt.Response {
	wanted := make(map[string]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = struct{}{}
	}
	responses := make([]attempt.Response, 0, len(questionIDs))
	for _, r := range db.responses {
		if _, ok := wanted[r.QuestionID]; ok && r.RespondentID == respondentID {
			responses = append(responses, r)
		}
	}
	sort.Slice(responses, func(i, j int) bool {
		if !responses[i].CreatedAt.Equal(responses[j].CreatedAt) {
			return responses[i].CreatedAt.Before(responses[j].CreatedAt)
		}
		return responses[i].ID < responses[j].ID
	})
	return responses
}

func (repo *attemptRepository) UpsertCompletion(_ context.Context, c attempt.Completion, _ ...core.DBExecutor) (attempt.Completion, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.completions[completionKey{c.RespondentID, c.QuizID}] = c
	return c, nil
}

func (repo *attemptRepository) GetCompletion(_ context.Context, respondentID, quizID string, _ ...core.DBExecutor) (attempt.Completion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.completions[completionKey{respondentID, quizID}]; ok {
		return c, nil
	}
	return attempt.Completion{}, attempt.ErrNotCompleted
}

func (repo *attemptRepository) DeleteCompletion(_ context.Context, respondentID, quizID string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := completionKey{respondentID, quizID}
	if _, ok := repo.db.completions[key]; !ok {
		return attempt.ErrNotCompleted
	}
	delete(repo.db.completions, key)
	return nil
}

func (repo *attemptRepository) QueryCompletions(_ context.Context, quizID string, _ ...core.DBExecutor) ([]attempt.Completion, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	comps := make([]attempt.Completion, 0)
	for _, c := range repo.db.completions {
		if c.QuizID == quizID {
			comps = append(comps, c)
		}
	}
	sort.Slice(comps, func(i, j int) bool {
		if !comps[i].CompletedAt.Equal(comps[j].CompletedAt) {
			return comps[i].CompletedAt.After(comps[j].CompletedAt)
		}
		return comps[i].RespondentID < comps[j].RespondentID
	})
	return comps, nil
}
