package folder

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

// MaxDepth bounds breadcrumb traversal.
const MaxDepth = 64

var (
	// errors
	ErrNotFound = errors.New("folder not found")
	ErrNotEmpty = errors.New("folder is not empty")
	ErrCycle    = errors.New("folder hierarchy contains a cycle")
	ErrTooDeep  = errors.Errorf("folder hierarchy is deeper than %d levels", MaxDepth)
)

type (
	Repository interface {
		CreateFolder(ctx context.Context, f Folder, exec ...core.DBExecutor) (Folder, error)
		GetFolder(ctx context.Context, id string, exec ...core.DBExecutor) (Folder, error)
		// QueryFolders returns folders ordered by position, title then id.
		QueryFolders(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Folder, error)
		UpdateFolder(ctx context.Context, f Folder, exec ...core.DBExecutor) (Folder, error)
		DeleteFolder(ctx context.Context, id string, exec ...core.DBExecutor) error
		// CountChildren counts all direct children, active or not.
		CountChildren(ctx context.Context, id string, exec ...core.DBExecutor) (int, error)
	}

	// ItemCounter counts the items (quizzes, materials...) a folder owns.
	ItemCounter interface {
		CountInFolder(ctx context.Context, folderID string) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		counters map[Kind]ItemCounter
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		counters: make(map[Kind]ItemCounter),
	}
}

// RegisterItemCounter makes Delete refuse folders of kind owning items counted by c.
// Must be called during setup, before the service is used concurrently.
func (svc *Service) RegisterItemCounter(kind Kind, c ItemCounter) {
	svc.counters[kind] = c
}

func (svc *Service) Get(ctx context.Context, id string) (Folder, error) {
	return svc.repo.GetFolder(ctx, id)
}

// Children lists the active folders of kind directly under parentID (the roots when nil).
func (svc *Service) Children(ctx context.Context, kind Kind, parentID *string) ([]Folder, error) {
	folders, err := svc.repo.QueryFolders(ctx, QueryFilter{Kind: kind, ParentID: parentID, OnlyActive: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying folders")
	}
	if folders == nil {
		folders = []Folder{}
	}
	return folders, nil
}

// Breadcrumb returns the root-to-leaf path ending with the folder id. A nil id yields an empty path.
// Each step is one fetch by id; the walk fails with ErrCycle when a folder is met twice
// and with ErrTooDeep past MaxDepth levels.
func (svc *Service) Breadcrumb(ctx context.Context, id *string) ([]Folder, error) {
	path := make([]Folder, 0, 8)
	visited := make(map[string]struct{})

	for cursor := id; cursor != nil; {
		if _, seen := visited[*cursor]; seen {
			return nil, errors.Wrapf(ErrCycle, "folder %s reached twice", *cursor)
		}
		if len(path) == MaxDepth {
			return nil, ErrTooDeep
		}
		visited[*cursor] = struct{}{}

		f, err := svc.repo.GetFolder(ctx, *cursor)
		if err != nil {
			return nil, errors.Wrap(err, "getting folder")
		}
		path = append(path, f)
		cursor = f.ParentID
	}

	// leaf-to-root -> root-to-leaf
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// checkParent verifies that parentID is an existing folder of kind.
func (svc *Service) checkParent(ctx context.Context, kind Kind, parentID string) error {
	parent, err := svc.repo.GetFolder(ctx, parentID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "parent_id", Error: "parent folder not found"})
		}
		return errors.Wrap(err, "getting parent folder")
	}
	if parent.Kind != kind {
		return core.NewValidationError(nil, core.FieldError{
			Field: "parent_id",
			Error: fmt.Sprintf("parent folder must be a %s folder", kind),
		})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nf NewFolder) (Folder, error) {
	if err := nf.Validate(svc.validate); err != nil {
		return Folder{}, err
	}
	if nf.ParentID != nil {
		if err := svc.checkParent(ctx, nf.Kind, *nf.ParentID); err != nil {
			return Folder{}, err
		}
	}

	now := core.NowFunc()
	f := Folder{
		Kind:        nf.Kind,
		Title:       nf.Title,
		Description: nf.Description,
		ParentID:    nf.ParentID,
		Position:    nf.Position,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateFolder(ctx, f)
}

// Update renames, re-describes, reorders, (de)activates or moves a folder.
// Moving a folder under itself or one of its descendants is refused.
func (svc *Service) Update(ctx context.Context, id string, uf UpdateFolder) (Folder, error) {
	f, err := svc.repo.GetFolder(ctx, id)
	if err != nil {
		return Folder{}, errors.Wrap(err, "getting folder")
	}
	if err = uf.Validate(f, svc.validate); err != nil {
		return Folder{}, err
	}

	if moved, newParent := uf.movesParent(f); moved {
		if newParent != nil {
			if err = svc.checkParent(ctx, f.Kind, *newParent); err != nil {
				return Folder{}, err
			}
			ancestors, err := svc.Breadcrumb(ctx, newParent)
			if err != nil {
				return Folder{}, errors.Wrap(err, "resolving new parent path")
			}
			for _, a := range ancestors {
				if a.ID == f.ID {
					return Folder{}, core.NewValidationError(ErrCycle, core.FieldError{
						Field: "parent_id",
						Error: "a folder cannot be moved under itself or one of its sub-folders",
					})
				}
			}
		}
		f.ParentID = newParent
	}

	f.Title = uf.Title
	if uf.Description != nil {
		f.Description = *uf.Description
	}
	if uf.Position != nil {
		f.Position = *uf.Position
	}
	if uf.Active != nil {
		f.Active = *uf.Active
	}
	f.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateFolder(ctx, f)
}

// Delete removes an empty folder. Folders with sub-folders or owned items are refused with ErrNotEmpty,
// whatever their kind.
func (svc *Service) Delete(ctx context.Context, id string) error {
	f, err := svc.repo.GetFolder(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting folder")
	}

	children, err := svc.repo.CountChildren(ctx, f.ID)
	if err != nil {
		return errors.Wrap(err, "counting sub-folders")
	}
	if children > 0 {
		return errors.Wrapf(ErrNotEmpty, "%d sub-folder(s)", children)
	}

	if counter, ok := svc.counters[f.Kind]; ok {
		items, err := counter.CountInFolder(ctx, f.ID)
		if err != nil {
			return errors.Wrap(err, "counting folder items")
		}
		if items > 0 {
			return errors.Wrapf(ErrNotEmpty, "%d item(s)", items)
		}
	}

	return svc.repo.DeleteFolder(ctx, f.ID)
}
