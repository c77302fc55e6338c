package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/qaboard/internal/common"
	"github.com/dmitrijs2005/qaboard/internal/logging"
	"github.com/dmitrijs2005/qaboard/internal/server/auth"
	"github.com/dmitrijs2005/qaboard/internal/server/config"
	"github.com/dmitrijs2005/qaboard/internal/server/mailer"
	"github.com/dmitrijs2005/qaboard/internal/server/repositories/memory"
	"github.com/dmitrijs2005/qaboard/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (s *fakeStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = b
	return nil
}

type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, e mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

type testEnv struct {
	app   *fiber.App
	rm    *memory.RepositoryManager
	store *fakeStore
	mail  *fakeMailer
	mock  sqlmock.Sqlmock
	logs  *bytes.Buffer
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                  testSecret,
		TokenValidityDuration:      time.Hour,
		CookieValidityDuration:     time.Hour,
		ResetTokenValidityDuration: 10 * time.Minute,
		Environment:                config.EnvironmentDevelopment,
		MaxUploadSize:              1000,
		CORSOrigins:                "*",
		PublicBaseURL:              "https://qa.example.com/",
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		rm:    memory.NewRepositoryManager(),
		store: &fakeStore{},
		mail:  &fakeMailer{},
		mock:  mock,
		logs:  &bytes.Buffer{},
	}

	us := services.NewUserService(db, env.rm, env.store, env.mail, cfg)
	qs := services.NewQuestionService(db, env.rm)
	cs := services.NewCommentService(db, env.rm)
	env.app = NewHTTPServer(cfg, logging.NewJSONLogger(env.logs), us, qs, cs).App()
	return env
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
	Token   string          `json:"token"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, response) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &out), string(b))
	return resp, out
}

func (e *testEnv) json(t *testing.T, method, path string, body any, token string) (*http.Response, response) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return e.do(t, req)
}

func (e *testEnv) register(t *testing.T, email string) (string, int64) {
	t.Helper()
	resp, out := e.json(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Msg)
	id, err := auth.GetUserIDFromToken(out.Token, []byte(testSecret))
	require.NoError(t, err)
	return out.Token, id
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	resp, out := env.json(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
	require.NotEmpty(t, out.Token)

	cookie := resp.Header.Get(fiber.HeaderSetCookie)
	assert.Contains(t, cookie, "token="+out.Token)
	assert.Contains(t, strings.ToLower(cookie), "httponly")
	assert.NotContains(t, strings.ToLower(cookie), "secure")

	resp, out = env.json(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Token)

	resp, out = env.json(t, http.MethodGet, "/api/v1/auth/me", nil, out.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]any](t, out.Data)
	assert.Equal(t, "a@x.com", me["email"])
	assert.NotContains(t, me, "passwordHash")
	assert.NotContains(t, me, "PasswordHash")
}

func TestRegister_DuplicateAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	resp, out := env.json(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{"email": "a@x.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Equal(t, "Duplicate field value entered", out.Msg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, out = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", out.Msg)
}

func TestLogin_IdenticalFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	resp1, out1 := env.json(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{"email": "a@x.com", "password": "wrong-one"}, "")
	resp2, out2 := env.json(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{"email": "nobody@x.com", "password": "secret123"}, "")

	assert.Equal(t, http.StatusUnauthorized, resp1.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	assert.Equal(t, "Invalid credentials", out1.Msg)
	assert.Equal(t, out1.Msg, out2.Msg)

	resp, out := env.json(t, http.MethodPost, "/api/v1/auth/login", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please provide an email and password", out.Msg)
}

func TestProtect(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "a@x.com")

	resp, out := env.json(t, http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authorized to access this route", out.Msg)

	resp, _ = env.json(t, http.MethodGet, "/api/v1/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: common.TokenCookieName, Value: token})
	resp, _ = env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "cookie auth")
}

func TestQuestionOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceID := env.register(t, "a@x.com")
	bob, _ := env.register(t, "b@x.com")

	resp, out := env.json(t, http.MethodPost, "/api/v1/questions", fiber.Map{"title": "Q1"}, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Msg)
	assert.Equal(t, "Question successfully created!", out.Msg)

	q := decode[struct {
		ID       int64  `json:"questionId"`
		Title    string `json:"title"`
		PostedBy struct {
			UserID int64  `json:"userId"`
			Email  string `json:"email"`
		} `json:"postedBy"`
	}](t, out.Data)
	assert.Equal(t, aliceID, q.PostedBy.UserID)
	assert.Equal(t, "a@x.com", q.PostedBy.Email)

	path := "/api/v1/questions/" + itoa(q.ID)

	resp, _ = env.json(t, http.MethodPut, path, fiber.Map{"title": "hijacked"}, bob)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.json(t, http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, out = env.json(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Q1", decode[map[string]any](t, out.Data)["title"])

	resp, out = env.json(t, http.MethodPut, path, fiber.Map{"title": "Q1 edited"}, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Question successfully updated!", out.Msg)
	assert.Equal(t, "Q1 edited", decode[map[string]any](t, out.Data)["title"])

	resp, out = env.json(t, http.MethodDelete, path, nil, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Question successfully deleted", out.Msg)

	resp, out = env.json(t, http.MethodDelete, path, nil, alice)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Question not found with id of "+itoa(q.ID), out.Msg)
}

func TestQuestions_ListSearchAndBadID(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "a@x.com")
	for _, title := range []string{"Go generics", "SQL joins"} {
		resp, _ := env.json(t, http.MethodPost, "/api/v1/questions", fiber.Map{"title": title}, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, out := env.json(t, http.MethodGet, "/api/v1/questions?search=sql", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Show all questions", out.Msg)
	assert.Len(t, decode[[]map[string]any](t, out.Data), 1)

	resp, out = env.json(t, http.MethodGet, "/api/v1/questions/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Question not found with id of abc", out.Msg)

	resp, _ = env.json(t, http.MethodPost, "/api/v1/questions", fiber.Map{"body": "no title"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register(t, "a@x.com")
	bob, _ := env.register(t, "b@x.com")

	resp, out := env.json(t, http.MethodPost, "/api/v1/questions", fiber.Map{"title": "Q"}, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	qid := int64(decode[map[string]any](t, out.Data)["questionId"].(float64))
	base := "/api/v1/questions/" + itoa(qid) + "/comments"

	resp, out = env.json(t, http.MethodPost, base, fiber.Map{"body": "nice question"}, bob)
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Msg)
	assert.Equal(t, "New comment successfully created!", out.Msg)
	cid := int64(decode[map[string]any](t, out.Data)["commentId"].(float64))

	resp, out = env.json(t, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, out.Data), 1)

	resp, _ = env.json(t, http.MethodPost, "/api/v1/questions/999/comments", fiber.Map{"body": "x"}, bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	path := "/api/v1/comments/" + itoa(cid)
	resp, _ = env.json(t, http.MethodPut, path, fiber.Map{"body": "edited by alice"}, alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, out = env.json(t, http.MethodPut, path, fiber.Map{"body": "edited"}, bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Comment with the id of "+itoa(cid)+" successfully updated!", out.Msg)

	resp, out = env.json(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "edited", decode[map[string]any](t, out.Data)["body"])

	resp, out = env.json(t, http.MethodDelete, path, nil, bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Comment with the id of "+itoa(cid)+" successfully deleted!", out.Msg)

	resp, _ = env.json(t, http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func uploadRequest(t *testing.T, path, token, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestUploadProfilePicture(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceID := env.register(t, "a@x.com")
	bob, _ := env.register(t, "b@x.com")
	path := "/api/v1/auth/" + itoa(aliceID) + "/profilepic"

	resp, out := env.do(t, uploadRequest(t, path, alice, "notes.txt", "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please upload an image file", out.Msg)

	resp, out = env.do(t, uploadRequest(t, path, alice, "fake.png", "image/png", []byte("plain text pretending")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please upload an image file", out.Msg)
	assert.Empty(t, env.store.saved, "rejected uploads must not be written")

	resp, out = env.do(t, uploadRequest(t, path, alice, "big.png", "image/png", append(append([]byte{}, pngHeader...), make([]byte, 1500)...)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please upload an image less than 1000", out.Msg)

	resp, _ = env.do(t, uploadRequest(t, path, bob, "me.png", "image/png", pngHeader))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out = env.do(t, uploadRequest(t, "/api/v1/auth/999/profilepic", alice, "me.png", "image/png", pngHeader))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found!", out.Msg)

	resp, out = env.do(t, uploadRequest(t, path, alice, "me.png", "image/png", pngHeader))
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Msg)
	name := decode[string](t, out.Data)
	assert.Equal(t, "photo_"+itoa(aliceID)+".png", name)
	assert.Equal(t, pngHeader, env.store.saved[name])

	req := httptest.NewRequest(http.MethodPut, path, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+alice)
	resp, out = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please upload a picture", out.Msg)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	resp, out := env.json(t, http.MethodPost, "/api/v1/auth/forgotpassword", fiber.Map{"email": "nobody@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "There is no user with that email", out.Msg)

	resp, out = env.json(t, http.MethodGet, "/api/v1/auth/forgotpassword?email=a@x.com", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Msg)
	assert.Equal(t, "Email Sent!", decode[string](t, out.Data))
	require.Len(t, env.mail.sent, 1)

	body := env.mail.sent[0].Body
	const marker = "/api/v1/auth/resetpassword/"
	require.Contains(t, body, marker)
	token := body[strings.Index(body, marker)+len(marker):]

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	resp, out = env.json(t, http.MethodPut, "/api/v1/auth/resetpassword/"+token, fiber.Map{"password": "brandnew1"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Msg)
	assert.NotEmpty(t, out.Token)

	resp, _ = env.json(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{"email": "a@x.com", "password": "brandnew1"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestForgotPassword_MailFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")
	env.mail.err = errors.New("smtp down")

	resp, out := env.json(t, http.MethodPost, "/api/v1/auth/forgotpassword", fiber.Map{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Email could not be sent", out.Msg)
}

func TestUpdatePasswordAndLogout(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "a@x.com")

	resp, out := env.json(t, http.MethodPut, "/api/v1/auth/updatepassword", fiber.Map{"currentPassword": "nope", "newPassword": "another1"}, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Password is incorrect", out.Msg)

	resp, out = env.json(t, http.MethodPut, "/api/v1/auth/updatepassword", fiber.Map{"currentPassword": "secret123", "newPassword": "another1"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.Token)

	resp, out = env.json(t, http.MethodGet, "/api/v1/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Success)
	assert.Contains(t, resp.Header.Get(fiber.HeaderSetCookie), "token=none")
}

func TestSecureCookieInProduction(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Environment = config.EnvironmentProduction })

	resp, _ := env.json(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{"email": "a@x.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, strings.ToLower(resp.Header.Get(fiber.HeaderSetCookie)), "secure")
}

func TestAuthRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.AuthRateLimit = 2 })

	for i := 0; i < 2; i++ {
		resp, _ := env.json(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{"email": "a@x.com", "password": "x"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, out := env.json(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{"email": "a@x.com", "password": "x"}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.False(t, out.Success)

	resp, _ = env.json(t, http.MethodGet, "/api/v1/questions", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "non-auth routes are not limited")
}

func TestUnexpectedErrorIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.rm.Store().FailWith(errors.New("connection refused"))

	resp, out := env.json(t, http.MethodGet, "/api/v1/questions", nil, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Server Error", out.Msg)
	assert.NotContains(t, out.Msg, "connection refused")
	assert.Contains(t, env.logs.String(), "connection refused")
}

func TestHealthRequestIDAndUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, out := env.json(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]any](t, out.Data)["status"])
	assert.NotEmpty(t, resp.Header.Get(common.RequestIDHeaderName))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(common.RequestIDHeaderName, "fixed-id")
	resp, _ = env.do(t, req)
	assert.Equal(t, "fixed-id", resp.Header.Get(common.RequestIDHeaderName))
	assert.Contains(t, env.logs.String(), `"request_id":"fixed-id"`)

	resp, out = env.json(t, http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, out.Success)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.NewError(common.ErrorValidation, "x"), http.StatusBadRequest},
		{common.NewError(common.ErrorForbidden, "x"), http.StatusBadRequest},
		{common.NewError(common.ErrorUnauthorized, "x"), http.StatusUnauthorized},
		{common.NewError(common.ErrorNotFound, "x"), http.StatusNotFound},
		{common.NewError(common.ErrorDelivery, "x"), http.StatusInternalServerError},
		{fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, 4*1024*1024, bodyLimit(1000))
	assert.Equal(t, 2*10_000_000+1024*1024, bodyLimit(10_000_000))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestForgotPassword_LinkIgnoresHostHeader(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	b, err := json.Marshal(fiber.Map{"email": "a@x.com"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgotpassword", bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Host = "evil.example"

	resp, _ := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, env.mail.sent, 1)

	body := env.mail.sent[0].Body
	assert.NotContains(t, body, "evil.example")
	assert.Contains(t, body, "https://qa.example.com/api/v1/auth/resetpassword/")
}

func TestPanicBecomesServerError(t *testing.T) {
	logs := &bytes.Buffer{}
	srv := NewHTTPServer(testConfig(), logging.NewJSONLogger(logs), nil, (*services.QuestionService)(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil)
	req.Header.Set(common.RequestIDHeaderName, "panic-id")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Equal(t, "Server Error", out.Msg)

	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"request_id":"panic-id"`)

	// the app keeps serving after a recovered panic
	resp, err = srv.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBodyTooLargeUsesEnvelope(t *testing.T) {
	srv := NewHTTPServer(testConfig(), logging.NewJSONLogger(io.Discard), nil, nil, nil)

	// the server body limit reaches the error handler as ErrRequestEntityTooLarge
	app := fiber.New(fiber.Config{ErrorHandler: srv.errorHandler})
	tooLarge := func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge }
	app.Put("/api/v1/auth/:userId/profilepic", tooLarge)
	app.Post("/api/v1/questions", tooLarge)

	resp, out := (&testEnv{app: app}).do(t, httptest.NewRequest(http.MethodPut, "/api/v1/auth/1/profilepic", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Equal(t, "Please upload an image less than 1000", out.Msg)

	resp, out = (&testEnv{app: app}).do(t, httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "Request body too large", out.Msg)
}
