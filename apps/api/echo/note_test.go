package echoapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/note"
	"github.com/trezcool/asistente/tests"
)

func (a testApp) upload(t *testing.T, token, courseID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if courseID != "" {
		require.NoError(t, w.WriteField("courseId", courseID))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/notes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func Test_noteApi(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.users, "Ana", "ana@test.test", "", true)
	other := testutil.CreateUser(t, app.users, "Eva", "eva@test.test", "", true)
	token, otherToken := app.token(t, usr), app.token(t, other)
	crs := createCourse(t, app, token, course.Input{Name: "Álgebra", Code: "A", Professor: "P", Location: "L"})

	rec := app.upload(t, token, crs.ID, "", "")
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"file":"a file is required"}`)}, rec)

	rec = app.upload(t, token, "nope", "apuntes.pdf", "%PDF-")
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"courseId":"course not found"}`)}, rec)

	rec = app.upload(t, token, crs.ID, "apuntes.pdf", "%PDF-")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n note.Note
	unmarshalBody(t, rec, &n)
	assert.Equal(t, "apuntes.pdf", n.Name)
	assert.Equal(t, "application/pdf", n.MimeType)
	assert.Equal(t, int64(5), n.SizeBytes)
	assert.Equal(t, crs.ID, n.CourseID)

	runHTTPTests(t, app, []httpTest{
		{name: "query", path: "/v1/notes?course_id=" + crs.ID, token: token, wantCode: http.StatusOK, wantData: marshalObj(t, []note.Note{n})},
		{name: "query other course", path: "/v1/notes?course_id=other", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "retrieve", path: "/v1/notes/" + n.ID, token: token, wantCode: http.StatusOK, wantData: marshalObj(t, n)},
		{name: "foreign note", path: "/v1/notes/" + n.ID + "/content", token: otherToken, wantCode: http.StatusNotFound},
	})

	rec = app.do(http.MethodGet, "/v1/notes/"+n.ID+"/content", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "%PDF-", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="apuntes.pdf"`, rec.Header().Get("Content-Disposition"))

	// deleting the course removes its notes
	rec = app.do(http.MethodDelete, "/v1/courses/"+crs.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodGet, "/v1/notes/"+n.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_noteApi_destroy(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.users, "Ana", "ana@test.test", "", true)
	token := app.token(t, usr)
	crs := createCourse(t, app, token, course.Input{Name: "Álgebra", Code: "A", Professor: "P", Location: "L"})

	rec := app.upload(t, token, crs.ID, "a.pdf", "a")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n note.Note
	unmarshalBody(t, rec, &n)

	runHTTPTests(t, app, []httpTest{
		{name: "delete", method: http.MethodDelete, path: "/v1/notes/" + n.ID, token: token, wantCode: http.StatusNoContent},
		{name: "already deleted", method: http.MethodDelete, path: "/v1/notes/" + n.ID, token: token, wantCode: http.StatusNotFound},
		{name: "content gone", path: "/v1/notes/" + n.ID + "/content", token: token, wantCode: http.StatusNotFound},
	})
}
