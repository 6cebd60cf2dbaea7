package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/dashboard"
	"github.com/trezcool/asistente/core/feed"
	"github.com/trezcool/asistente/core/note"
	"github.com/trezcool/asistente/core/user"
	blobsvc "github.com/trezcool/asistente/services/blob"
	inmemdb "github.com/trezcool/asistente/storage/database/inmem"
	"github.com/trezcool/asistente/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type mailMock struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

type feedClientStub struct {
	news   []feed.News
	events []feed.CalendarEvent
	err    error
}

func (c *feedClientStub) FetchNews(context.Context) ([]feed.News, error) { return c.news, c.err }

func (c *feedClientStub) FetchCalendarEvents(context.Context) ([]feed.CalendarEvent, error) {
	return c.events, c.err
}

type testApp struct {
	server  *Server
	db      *inmemdb.DB
	users   user.Repository
	userSvc user.Service
	mail    *mailMock
	feed    *feedClientStub
}

func setup(t *testing.T) testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)

	blobs, err := blobsvc.NewBoltStorage(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	// set up services
	mail := new(mailMock)
	feedClient := new(feedClientStub)
	usrSvc := user.NewServiceMock(conf, usrRepo, mail, validate)
	noteSvc := note.NewService(inmemdb.NewNoteRepository(db), blobs, crsRepo, validate, logger)
	crsSvc := course.NewService(crsRepo, noteSvc, validate)
	actSvc := activity.NewService(inmemdb.NewActivityRepository(db), crsRepo, validate, logger)

	// set up server
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		CourseSvc:      crsSvc,
		ActivitySvc:    actSvc,
		NoteSvc:        noteSvc,
		FeedSvc:        feed.NewService(feedClient, logger),
		DashboardSvc:   dashboard.NewService(crsSvc, actSvc),
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = server.Close() })

	return testApp{
		server:  server,
		db:      db,
		users:   usrRepo,
		userSvc: usrSvc,
		mail:    mail,
		feed:    feedClient,
	}
}

func (a testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := a.server.auth.GenerateToken(a.server.auth.userClaims(usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// do serves the request and returns the recorder.
func (a testApp) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, body)
	a.server.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func unmarshalBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshalBody() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
