package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
)

type folderRepository struct {
	db *DB
}

var _ folder.Repository = (*folderRepository)(nil) // interface compliance check

func NewFolderRepository(db *DB) folder.Repository {
	return &folderRepository{db: db}
}

func (repo *folderRepository) CreateFolder(_ context.Context, f folder.Folder, _ ...core.DBExecutor) (folder.Folder, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = newID()
	repo.db.folders[f.ID] = f
	return f, nil
}

func (repo *folderRepository) GetFolder(_ context.Context, id string, _ ...core.DBExecutor) (folder.Folder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.folders[id]; ok {
		return f, nil
	}
	return folder.Folder{}, folder.ErrNotFound
}

func (repo *folderRepository) QueryFolders(_ context.Context, filter folder.QueryFilter, _ ...core.DBExecutor) ([]folder.Folder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	parent := core.StringValue(filter.ParentID)
	folders := make([]folder.Folder, 0)
	for _, f := range repo.db.folders {
		if filter.Kind != "" && f.Kind != filter.Kind {
			continue
		}
		if core.StringValue(f.ParentID) != parent {
			continue
		}
		if filter.OnlyActive && !f.Active {
			continue
		}
		folders = append(folders, f)
	}
	sort.Slice(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return folders, nil
}

func (repo *folderRepository) UpdateFolder(_ context.Context, f folder.Folder, _ ...core.DBExecutor) (folder.Folder, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.folders[f.ID]; !ok {
		return folder.Folder{}, folder.ErrNotFound
	}
	repo.db.folders[f.ID] = f
	return f, nil
}

func (repo *folderRepository) DeleteFolder(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.folders[id]; !ok {
		return folder.ErrNotFound
	}
	delete(repo.db.folders, id)
	return nil
}

func (repo *folderRepository) CountChildren(_ context.Context, id string, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, f := range repo.db.folders {
		if core.StringValue(f.ParentID) == id {
			n++
		}
	}
	return n, nil
}
