package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/tests"
)

func Test_folderApi_read(t *testing.T) {
	app, env, conf := setup(t)

	root := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Term 1", nil)
	week := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Week 1", &root)
	material := testutil.CreateFolder(t, env.Folders, folder.KindMaterial, "Notes", nil)

	token := getToken(t, conf, testutil.Student)

	runHTTPTests(t, app, []httpTest{
		{name: "Auth required", path: "/v1/folders", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "quiz roots by default", path: "/v1/folders", token: token, wantData: marchallList(t, root)},
		{name: "material roots", path: "/v1/folders?kind=material", token: token, wantData: marchallList(t, material)},
		{
			name: "unknown kind", path: "/v1/folders?kind=video", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"kind": "must be one of: quiz material"}),
		},
		{name: "children", path: "/v1/folders?parent=" + root.ID, token: token, wantData: marchallList(t, week)},
		{name: "leaf children", path: "/v1/folders?parent=" + week.ID, token: token, wantData: marchallList(t)},
		{name: "retrieve", path: "/v1/folders/" + week.ID, token: token, wantData: marchallObj(t, week)},
		{
			name: "retrieve unknown", path: "/v1/folders/nope", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: folder.ErrNotFound.Error()}),
		},
		{name: "breadcrumb", path: "/v1/folders/" + week.ID + "/breadcrumb", token: token, wantData: marchallList(t, root, week)},
	})
}

func Test_folderApi_write(t *testing.T) {
	app, env, conf := setup(t)

	root := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Term 1", nil)
	testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Week 1", &root)
	empty := testutil.CreateFolder(t, env.Folders, folder.KindQuiz, "Empty", nil)

	studentToken := getToken(t, conf, testutil.Student)
	teacherToken := getToken(t, conf, testutil.Teacher)
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	runHTTPTests(t, app, []httpTest{
		{
			name: "create: author required", method: http.MethodPost, path: "/v1/folders", token: studentToken,
			body: []byte(`{"kind":"quiz","title":"Term 2"}`), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "create: invalid", method: http.MethodPost, path: "/v1/folders", token: teacherToken,
			body:     []byte(`{"kind":"quiz","title":" "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/folders", token: teacherToken,
			body: []byte(`{"kind":"quiz","title":"Term 2"}`), wantCode: http.StatusCreated,
		},
		{
			name: "update: author required", method: http.MethodPut, path: "/v1/folders/" + empty.ID, token: studentToken,
			body: []byte(`{"title":"Renamed"}`), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "update: move under itself", method: http.MethodPut, path: "/v1/folders/" + root.ID, token: teacherToken,
			body:     []byte(`{"parent_id":"` + root.ID + `"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"parent_id": "a folder cannot be moved under itself or one of its sub-folders"}),
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/folders/" + empty.ID, token: teacherToken,
			body: []byte(`{"title":"Renamed"}`),
		},
		{
			name: "delete: not empty", method: http.MethodDelete, path: "/v1/folders/" + root.ID, token: teacherToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: folder.ErrNotEmpty.Error()}),
		},
		{
			name: "delete: author required", method: http.MethodDelete, path: "/v1/folders/" + empty.ID, token: studentToken,
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/folders/" + empty.ID, token: teacherToken, wantCode: http.StatusNoContent},
		{
			name: "delete: gone", method: http.MethodDelete, path: "/v1/folders/" + empty.ID, token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: folder.ErrNotFound.Error()}),
		},
	})
}
