package folder_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/core/quiz"
	"github.com/trezcool/mtihani/tests"
)

func ids(folders []folder.Folder) []string {
	res := make([]string, 0, len(folders))
	for _, f := range folders {
		res = append(res, f.ID)
	}
	return res
}

func quizIn(folderID string, questions ...quiz.NewQuestion) quiz.NewQuiz {
	return quiz.NewQuiz{Period: "March", Year: 2021, FolderID: &folderID, Questions: questions}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	root := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Term 1", nil)
	material := testutil.CreateFolder(t, env.Folders, folder.KindMaterial, "Notes", nil)
	missing := "0b9f6a1e-6c1b-4f55-8f0a-5e8d4c0e6f11"

	tests := []struct {
		name      string
		nf        folder.NewFolder
		wantField string
	}{
		{name: "missing title", nf: folder.NewFolder{Kind: folder.KindQuiz, Title: "  "}, wantField: "title"},
		{name: "unknown kind", nf: folder.NewFolder{Kind: "video", Title: "T"}, wantField: "kind"},
		{name: "negative position", nf: folder.NewFolder{Kind: folder.KindQuiz, Title: "T", Position: -1}, wantField: "position"},
		{name: "unknown parent", nf: folder.NewFolder{Kind: folder.KindQuiz, Title: "T", ParentID: &missing}, wantField: "parent_id"},
		{name: "parent of another kind", nf: folder.NewFolder{Kind: folder.KindQuiz, Title: "T", ParentID: &material.ID}, wantField: "parent_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Folders.Create(ctx, tt.nf)
			require.Error(t, err)

			switch cause := errors.Cause(err).(type) {
			case validator.ValidationErrors:
				fields := make([]string, 0, len(cause))
				for _, fe := range cause {
					fields = append(fields, fe.Field())
				}
				assert.Contains(t, fields, tt.wantField)
			case *core.ValidationError:
				require.NotEmpty(t, cause.Fields)
				assert.Equal(t, tt.wantField, cause.Fields[0].Field)
			default:
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	t.Run("valid", func(t *testing.T) {
		f, err := env.Folders.Create(ctx, folder.NewFolder{Kind: " QUIZ ", Title: " Week 1 ", ParentID: &root.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, folder.KindQuiz, f.Kind)
		assert.Equal(t, "Week 1", f.Title)
		assert.Equal(t, root.ID, core.StringValue(f.ParentID))
		assert.True(t, f.Active)
	})
}

func TestService_Children(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)

	newFolder := func(title string, position int, parent *string) folder.Folder {
		f, err := env.Folders.Create(ctx, folder.NewFolder{Kind: folder.KindQuiz, Title: title, Position: position, ParentID: parent})
		require.NoError(t, err)
		return f
	}

	rootB := newFolder("B", 1, nil)
	rootA := newFolder("A", 1, nil)
	rootZ := newFolder("Z", 0, nil)
	testutil.CreateFolder(t, env.Folders, folder.KindMaterial, "Material", nil)
	child := newFolder("Child", 0, &rootA.ID)
	hidden := newFolder("Hidden", 0, &rootA.ID)
	_, err := env.Folders.Update(ctx, hidden.ID, folder.UpdateFolder{Active: new(bool)})
	require.NoError(t, err)

	roots, err := env.Folders.Children(ctx, folder.KindQuiz, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{rootZ.ID, rootA.ID, rootB.ID}, ids(roots), "ordered by position then title")

	children, err := env.Folders.Children(ctx, folder.KindQuiz, &rootA.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{child.ID}, ids(children), "inactive folders are left out")

	leaves, err := env.Folders.Children(ctx, folder.KindQuiz, &child.ID)
	require.NoError(t, err)
	assert.NotNil(t, leaves)
	assert.Empty(t, leaves)
}

func TestService_Breadcrumb(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	root := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Root", nil)
	mid := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Mid", &root)
	leaf := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Leaf", &mid)

	t.Run("nil", func(t *testing.T) {
		path, err := env.Folders.Breadcrumb(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, path)
		assert.Empty(t, path)
	})

	t.Run("root", func(t *testing.T) {
		path, err := env.Folders.Breadcrumb(ctx, &root.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{root.ID}, ids(path))
	})

	t.Run("leaf", func(t *testing.T) {
		path, err := env.Folders.Breadcrumb(ctx, &leaf.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{root.ID, mid.ID, leaf.ID}, ids(path))
	})

	t.Run("unknown", func(t *testing.T) {
		id := "nope"
		_, err := env.Folders.Breadcrumb(ctx, &id)
		assert.Equal(t, folder.ErrNotFound, errors.Cause(err))
	})

	t.Run("cycle", func(t *testing.T) {
		// corrupt the hierarchy behind the service's back: root -> leaf -> mid -> root
		looped := root
		looped.ParentID = &leaf.ID
		_, err := env.FolderRepo.UpdateFolder(ctx, looped)
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = env.FolderRepo.UpdateFolder(ctx, root)
		})

		_, err = env.Folders.Breadcrumb(ctx, &leaf.ID)
		assert.Equal(t, folder.ErrCycle, errors.Cause(err))
	})
}

func TestService_Breadcrumb_tooDeep(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)

	parent := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "L0", nil)
	for i := 1; i < folder.MaxDepth; i++ {
		parent = testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "L", &parent)
	}
	path, err := env.Folders.Breadcrumb(ctx, &parent.ID)
	require.NoError(t, err)
	assert.Len(t, path, folder.MaxDepth)

	deeper := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "too deep", &parent)
	_, err = env.Folders.Breadcrumb(ctx, &deeper.ID)
	assert.Equal(t, folder.ErrTooDeep, errors.Cause(err))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	root := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Root", nil)
	mid := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Mid", &root)
	leaf := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Leaf", &mid)
	other := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Other", nil)

	t.Run("rename keeps parent", func(t *testing.T) {
		desc := " Algebra "
		f, err := env.Folders.Update(ctx, leaf.ID, folder.UpdateFolder{Title: "Leaf 2", Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "Leaf 2", f.Title)
		assert.Equal(t, "Algebra", f.Description)
		assert.Equal(t, mid.ID, core.StringValue(f.ParentID))
	})

	t.Run("blank title keeps the current one", func(t *testing.T) {
		f, err := env.Folders.Update(ctx, other.ID, folder.UpdateFolder{Title: " "})
		require.NoError(t, err)
		assert.Equal(t, "Other", f.Title)
	})

	t.Run("move under itself", func(t *testing.T) {
		_, err := env.Folders.Update(ctx, mid.ID, folder.UpdateFolder{ParentID: &mid.ID})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, folder.ErrCycle, errors.Cause(err).(*core.ValidationError).Err)
	})

	t.Run("move under a descendant", func(t *testing.T) {
		_, err := env.Folders.Update(ctx, root.ID, folder.UpdateFolder{ParentID: &leaf.ID})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, folder.ErrCycle, errors.Cause(err).(*core.ValidationError).Err)
	})

	t.Run("move", func(t *testing.T) {
		f, err := env.Folders.Update(ctx, mid.ID, folder.UpdateFolder{ParentID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, core.StringValue(f.ParentID))

		path, err := env.Folders.Breadcrumb(ctx, &leaf.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{other.ID, mid.ID, leaf.ID}, ids(path))
	})

	t.Run("move to the roots", func(t *testing.T) {
		empty := ""
		f, err := env.Folders.Update(ctx, mid.ID, folder.UpdateFolder{ParentID: &empty})
		require.NoError(t, err)
		assert.True(t, f.IsRoot())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := env.Folders.Update(ctx, "nope", folder.UpdateFolder{Title: "x"})
		assert.Equal(t, folder.ErrNotFound, errors.Cause(err))
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)

	t.Run("with sub-folders", func(t *testing.T) {
		for _, kind := range []folder.Kind{folder.KindQuiz, folder.KindMaterial} {
			parent := testutil.CreateFolder(t, env.Folders, kind, "Parent", nil)
			testutil.CreateFolder(t, env.Folders, kind, "Child", &parent)

			err := env.Folders.Delete(ctx, parent.ID)
			assert.Equal(t, folder.ErrNotEmpty, errors.Cause(err), string(kind))
		}
	})

	t.Run("with inactive sub-folders", func(t *testing.T) {
		parent := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Parent", nil)
		child := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Child", &parent)
		_, err := env.Folders.Update(ctx, child.ID, folder.UpdateFolder{Active: new(bool)})
		require.NoError(t, err)

		assert.Equal(t, folder.ErrNotEmpty, errors.Cause(env.Folders.Delete(ctx, parent.ID)))
	})

	t.Run("with quizzes", func(t *testing.T) {
		f := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Quizzes", nil)
		nq := testutil.Question("Math", "easy", "a")
		_, err := env.Quizzes.Create(ctx, testutil.Teacher, quizIn(f.ID, nq))
		require.NoError(t, err)

		assert.Equal(t, folder.ErrNotEmpty, errors.Cause(env.Folders.Delete(ctx, f.ID)))
	})

	t.Run("empty", func(t *testing.T) {
		f := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Empty", nil)
		require.NoError(t, env.Folders.Delete(ctx, f.ID))

		_, err := env.Folders.Get(ctx, f.ID)
		assert.Equal(t, folder.ErrNotFound, errors.Cause(err))
		assert.Equal(t, folder.ErrNotFound, errors.Cause(env.Folders.Delete(ctx, f.ID)))
	})
}
