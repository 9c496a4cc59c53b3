package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/research-intelligence/internal/research"
	"github.com/ayush/research-intelligence/internal/session"
)

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newRegistry() *session.Registry {
	log := discardLog()
	return session.NewRegistry(session.NewMemoryStore(time.Hour), func() *research.Controller {
		return research.NewController(research.NewMockService(0), log, "")
	}, log)
}

func TestSession_SetsCookieForNewVisitor(t *testing.T) {
	var gotID string
	var gotCtrl *research.Controller
	h := Session(newRegistry(), time.Hour, discardLog())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		gotID, gotCtrl, ok = session.FromContext(r.Context())
		assert.True(t, ok)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, gotID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.NotNil(t, gotCtrl)
}

func TestSession_ReusesExistingSession(t *testing.T) {
	reg := newRegistry()
	var ctrls []*research.Controller
	h := Session(reg, time.Hour, discardLog())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ctrl, _ := session.FromContext(r.Context())
		ctrls = append(ctrls, ctrl)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := rr.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Empty(t, rr.Result().Cookies())
	require.Len(t, ctrls, 2)
	assert.Same(t, ctrls[0], ctrls[1])
}

func TestThrottle(t *testing.T) {
	limiter := NewSubmitLimiter(6)
	h := Throttle(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
}

func TestThrottle_Disabled(t *testing.T) {
	assert.Nil(t, NewSubmitLimiter(0))

	h := Throttle(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/submit", nil))
		require.Equal(t, http.StatusNoContent, rr.Code)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	h := chimw.RequestID(Logger(logrus.NewEntry(l))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/health"`)
	assert.Contains(t, out, `"request_id"`)
}
