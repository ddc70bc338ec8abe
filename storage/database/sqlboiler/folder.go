package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
)

type folderRow struct {
	ID          string      `boil:"id"`
	Kind        string      `boil:"kind"`
	Title       string      `boil:"title"`
	Description null.String `boil:"description"`
	ParentID    null.String `boil:"parent_id"`
	Position    int         `boil:"position"`
	Active      bool        `boil:"active"`
	CreatedAt   time.Time   `boil:"created_at"`
	UpdatedAt   time.Time   `boil:"updated_at"`
}

const folderColumns = "id, kind, title, description, parent_id, position, active, created_at, updated_at"

type folderRepository struct {
	baseRepository
}

var _ folder.Repository = (*folderRepository)(nil) // interface compliance check

func NewFolderRepository(exec core.DBExecutor) *folderRepository {
	return &folderRepository{baseRepository{exec: exec}}
}

func (repo folderRepository) boil(f folder.Folder) folderRow {
	return folderRow{
		ID:          f.ID,
		Kind:        string(f.Kind),
		Title:       f.Title,
		Description: null.NewString(f.Description, f.Description != ""),
		ParentID:    null.StringFromPtr(f.ParentID),
		Position:    f.Position,
		Active:      f.Active,
		CreatedAt:   f.CreatedAt.UTC(),
		UpdatedAt:   f.UpdatedAt.UTC(),
	}
}

func (repo folderRepository) unboil(row folderRow) folder.Folder {
	return folder.Folder{
		ID:          row.ID,
		Kind:        folder.Kind(row.Kind),
		Title:       row.Title,
		Description: row.Description.String,
		ParentID:    row.ParentID.Ptr(),
		Position:    row.Position,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo folderRepository) CreateFolder(ctx context.Context, f folder.Folder, exec ...core.DBExecutor) (folder.Folder, error) {
	f.ID = uuid.New().String()
	row := repo.boil(f)
	_, err := queries.Raw(
		"INSERT INTO "+folderTable+" ("+folderColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		row.ID, row.Kind, row.Title, row.Description, row.ParentID, row.Position, row.Active, row.CreatedAt, row.UpdatedAt,
	).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return folder.Folder{}, trapFKErr(err, folder.ErrNotFound, "inserting folder")
	}
	return repo.unboil(row), nil
}

func (repo folderRepository) GetFolder(ctx context.Context, id string, exec ...core.DBExecutor) (folder.Folder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return folder.Folder{}, folder.ErrNotFound
	}
	var row folderRow
	err := newQuery(
		qm.Select(folderColumns),
		qm.From(folderTable),
		qm.Where("id = ?", id),
	).Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return folder.Folder{}, trapNoRowsErr(err, folder.ErrNotFound, "finding folder")
	}
	return repo.unboil(row), nil
}

func (repo folderRepository) QueryFolders(ctx context.Context, filter folder.QueryFilter, exec ...core.DBExecutor) ([]folder.Folder, error) {
	if filter.ParentID != nil && !isUUID(*filter.ParentID) {
		return []folder.Folder{}, nil
	}
	mods := []qm.QueryMod{
		qm.Select(folderColumns),
		qm.From(folderTable),
	}
	if filter.Kind != "" {
		mods = append(mods, qm.Where("kind = ?", string(filter.Kind)))
	}
	if filter.ParentID != nil {
		mods = append(mods, qm.Where("parent_id = ?", *filter.ParentID))
	} else {
		mods = append(mods, qm.Where("parent_id IS NULL"))
	}
	if filter.OnlyActive {
		mods = append(mods, qm.Where("active = ?", true))
	}
	mods = append(mods, qm.OrderBy("position ASC, title ASC, id ASC"))

	var rows []folderRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying folders")
	}
	folders := make([]folder.Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, repo.unboil(row))
	}
	return folders, nil
}

func (repo folderRepository) UpdateFolder(ctx context.Context, f folder.Folder, exec ...core.DBExecutor) (folder.Folder, error) {
	row := repo.boil(f)
	res, err := queries.Raw(
		"UPDATE "+folderTable+
			" SET title = $2, description = $3, parent_id = $4, position = $5, active = $6, updated_at = $7 WHERE id = $1",
		row.ID, row.Title, row.Description, row.ParentID, row.Position, row.Active, row.UpdatedAt,
	).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return folder.Folder{}, trapFKErr(err, folder.ErrNotFound, "updating folder")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return folder.Folder{}, folder.ErrNotFound
	}
	return repo.unboil(row), nil
}

func (repo folderRepository) DeleteFolder(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := queries.Raw("DELETE FROM "+folderTable+" WHERE id = $1", id).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		// a quiz or sub-folder still references it
		return trapFKErr(err, folder.ErrNotEmpty, "deleting folder")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return folder.ErrNotFound
	}
	return nil
}

func (repo folderRepository) CountChildren(ctx context.Context, id string, exec ...core.DBExecutor) (int, error) {
	if !isUUID(id) {
		return 0, nil
	}
	var n int
	err := queries.Raw("SELECT COUNT(*) FROM "+folderTable+" WHERE parent_id = $1", id).
		QueryRowContext(ctx, repo.getExec(exec)).
		Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "counting sub-folders")
	}
	return n, nil
}
