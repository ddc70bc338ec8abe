package dummydb

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
)

func TestDB_RunInTx(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewFolderRepository(db)
	errFailed := errors.New("failed")

	kept, err := repo.CreateFolder(ctx, folder.Folder{Kind: folder.KindQuiz, Title: "kept"})
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		var created folder.Folder
		err := db.RunInTx(ctx, func(exec core.DBExecutor) error {
			var err error
			created, err = repo.CreateFolder(ctx, folder.Folder{Kind: folder.KindQuiz, Title: "committed"}, exec)
			return err
		})
		require.NoError(t, err)

		_, err = repo.GetFolder(ctx, created.ID)
		assert.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		var created folder.Folder
		err := db.RunInTx(ctx, func(exec core.DBExecutor) error {
			var err error
			if created, err = repo.CreateFolder(ctx, folder.Folder{Kind: folder.KindQuiz, Title: "rolled back"}, exec); err != nil {
				return err
			}
			return errFailed
		})
		assert.Equal(t, errFailed, err)

		_, err = repo.GetFolder(ctx, created.ID)
		assert.Equal(t, folder.ErrNotFound, errors.Cause(err))
		_, err = repo.GetFolder(ctx, kept.ID)
		assert.NoError(t, err)
	})

	t.Run("rollback discards writes made outside the transaction", func(t *testing.T) {
		var outside folder.Folder
		err := db.RunInTx(ctx, func(_ core.DBExecutor) error {
			var err error
			if outside, err = repo.CreateFolder(ctx, folder.Folder{Kind: folder.KindQuiz, Title: "outside"}); err != nil {
				return err
			}
			return errFailed
		})
		assert.Equal(t, errFailed, err)

		_, err = repo.GetFolder(ctx, outside.ID)
		assert.Equal(t, folder.ErrNotFound, errors.Cause(err))
	})
}
