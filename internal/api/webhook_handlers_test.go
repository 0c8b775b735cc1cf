package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/telegram"
)

type mockBot struct {
	mock.Mock
}

func (m *mockBot) HandleUpdate(ctx context.Context, update telegram.Update) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

type mockHealth struct {
	err error
}

func (h mockHealth) Healthy(context.Context) error { return h.err }

const updateJSON = `{"update_id":10,"message":{"message_id":3,"chat":{"id":99,"type":"private"},"date":1,"text":"hi"}}`

func newTestServer(bot *mockBot) *Server {
	return &Server{Bot: bot, DB: mockHealth{}, WebhookSecret: "s3cret"}
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	bot := new(mockBot)
	handler := newTestServer(bot).Routes()

	for _, target := range []string{"/webhook", "/webhook?secret=nope"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(updateJSON)))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, target)
		assert.Equal(t, "not allowed\n", rec.Body.String(), target)
	}
	bot.AssertNotCalled(t, "HandleUpdate", mock.Anything, mock.Anything)
}

func TestWebhook_EmptyConfiguredSecretRejectsAll(t *testing.T) {
	bot := new(mockBot)
	srv := newTestServer(bot)
	srv.WebhookSecret = ""

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook?secret=", strings.NewReader(updateJSON)))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	bot := new(mockBot)
	bot.On("HandleUpdate", mock.Anything, mock.MatchedBy(func(u telegram.Update) bool {
		return u.UpdateID == 10 && u.Message != nil && u.Message.Chat.ID == 99 && u.Message.Text == "hi"
	})).Return(nil).Once()

	rec := httptest.NewRecorder()
	newTestServer(bot).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook?secret=s3cret", strings.NewReader(updateJSON)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	bot.AssertExpectations(t)
}

func TestWebhook_HandlerErrorStillAcknowledged(t *testing.T) {
	bot := new(mockBot)
	bot.On("HandleUpdate", mock.Anything, mock.Anything).Return(errors.NewStorageError("insert note", errors.New("locked")))

	rec := httptest.NewRecorder()
	newTestServer(bot).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook?secret=s3cret", strings.NewReader(updateJSON)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_MalformedBody(t *testing.T) {
	bot := new(mockBot)

	rec := httptest.NewRecorder()
	newTestServer(bot).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook?secret=s3cret", strings.NewReader(`{"update_id":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.ErrCodeBadRequest)
	bot.AssertNotCalled(t, "HandleUpdate", mock.Anything, mock.Anything)
}

func TestWebhook_OnlyPost(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(new(mockBot)).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?secret=s3cret", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(new(mockBot))

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.DB = mockHealth{err: errors.New("database is closed")}
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), errors.ErrCodeStorageFailure)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddleware_KeepsRequestID(t *testing.T) {
	handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
