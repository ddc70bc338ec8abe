package folder

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
)

// Kind separates folder namespaces: quiz folders and material folders never mix.
type Kind string

const (
	KindQuiz     Kind = "quiz"
	KindMaterial Kind = "material"
)

func (k Kind) Valid() bool {
	return k == KindQuiz || k == KindMaterial
}

type Folder struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ParentID    *string   `json:"parent_id"` // nil for roots
	Position    int       `json:"position"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (f Folder) IsRoot() bool { return f.ParentID == nil }

// NewFolder contains information needed to create a new Folder.
type NewFolder struct {
	Kind        Kind    `json:"kind" validate:"required,oneof=quiz material"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Position    int     `json:"position" validate:"gte=0"`
}

func (nf *NewFolder) Validate(validate *validator.Validate) error {
	nf.Kind = Kind(core.CleanString(string(nf.Kind), true /* lower */))
	nf.Title = core.CleanString(nf.Title)
	nf.Description = core.CleanString(nf.Description)
	if nf.ParentID != nil {
		pid := core.CleanString(*nf.ParentID)
		nf.ParentID = core.StringPtr(pid)
	}
	return validate.Struct(nf)
}

// UpdateFolder defines what information may be provided to modify an existing Folder.
// A nil ParentID keeps the current parent; an empty one moves the folder to the roots.
type UpdateFolder struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid|len=0"`
}

func (uf *UpdateFolder) Validate(orig Folder, validate *validator.Validate) error {
	if title := core.CleanString(uf.Title); title != "" {
		uf.Title = title
	} else {
		uf.Title = orig.Title
	}
	if uf.Description != nil {
		desc := core.CleanString(*uf.Description)
		uf.Description = &desc
	}
	if uf.ParentID != nil {
		pid := core.CleanString(*uf.ParentID)
		uf.ParentID = &pid
	}
	return validate.Struct(uf)
}

// movesParent reports whether the update changes orig's parent, and to which one (nil: roots).
func (uf UpdateFolder) movesParent(orig Folder) (bool, *string) {
	if uf.ParentID == nil {
		return false, nil
	}
	newParent := core.StringPtr(*uf.ParentID)
	return core.StringValue(newParent) != core.StringValue(orig.ParentID), newParent
}

type QueryFilter struct {
	Kind       Kind
	ParentID   *string // nil: roots
	OnlyActive bool
}
