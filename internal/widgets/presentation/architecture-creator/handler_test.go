// internal/widgets/presentation/architecture-creator/handler_test.go
package architecturecreator

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apperrors "solution-creator/internal/common/errors"
	"solution-creator/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testWidget struct {
	server   *httptest.Server
	client   *http.Client
	sessions *SessionRegistry
}

func createTestWidget(t *testing.T, sub Submitter, opts ...SessionOption) *testWidget {
	t.Helper()
	cfg := createTestConfig()
	log := logger.NewTestLogger(t)

	sessions := NewSessionRegistry(30*time.Minute, func(id string) *Controller {
		return NewController(cfg, sub, WithSessionID(id), WithLogger(log))
	}, log, opts...)
	presenter, err := NewPresenter(cfg, nil)
	require.NoError(t, err)

	server := httptest.NewServer(NewHandler(sessions, presenter, log, 30*time.Minute).Routes())
	t.Cleanup(server.Close)

	return &testWidget{
		server:   server,
		client:   newBrowser(t),
		sessions: sessions,
	}
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func (w *testWidget) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := w.client.Get(w.server.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (w *testWidget) submit(t *testing.T, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := w.client.PostForm(w.server.URL+"/submit", form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (w *testWidget) put(t *testing.T, field, value string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, w.server.URL+"/fields/"+field, strings.NewReader(value))
	require.NoError(t, err)
	resp, err := w.client.Do(req)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (w *testWidget) state(t *testing.T) stateResponse {
	t.Helper()
	resp, body := w.get(t, "/state")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st stateResponse
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	return st
}

func readBody(t *testing.T, resp *http.Response) (*http.Response, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func formValues(f FormData) url.Values {
	v := url.Values{}
	for name, value := range f.Values() {
		v.Set(name, value)
	}
	return v
}

// ==========================
// Endpoint Tests
// ==========================

func TestHandler_Index_WithoutSession(t *testing.T) {
	w := createTestWidget(t, &stubSubmitter{})

	for i := 0; i < 3; i++ {
		resp, body := w.get(t, "/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, "Create Solution Architecture")
		assert.Nil(t, sessionCookie(resp))
	}

	st := w.state(t)
	assert.Empty(t, st.SessionID)
	assert.Equal(t, PhaseIdle, st.State.Phase)
	assert.Equal(t, 0, w.sessions.Len())
}

func TestHandler_WriteOpensSession(t *testing.T) {
	w := createTestWidget(t, &stubSubmitter{})

	resp, _ := w.put(t, FieldCustomerName, "Acme Corporation")
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	resp, body := w.get(t, "/")
	assert.NotNil(t, sessionCookie(resp), "reads refresh an existing session")
	assert.Contains(t, body, `value="Acme Corporation"`)
	assert.Equal(t, 1, w.sessions.Len())
}

func TestHandler_SessionLimit(t *testing.T) {
	w := createTestWidget(t, &stubSubmitter{}, WithMaxSessions(1))

	resp, _ := w.put(t, FieldCustomerName, "Acme Corporation")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	other := &testWidget{server: w.server, client: newBrowser(t), sessions: w.sessions}
	resp, body := other.put(t, FieldCustomerName, "Globex")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var stdErr apperrors.StandardError
	require.NoError(t, json.Unmarshal([]byte(body), &stdErr))
	assert.Equal(t, apperrors.ErrCodeSessionLimitReached, stdErr.Code)

	// reads never count against the limit
	resp, _ = other.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = w.put(t, FieldNotes, "still open")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, w.sessions.Len())
}

func TestHandler_SetFieldAndState(t *testing.T) {
	w := createTestWidget(t, &stubSubmitter{})

	resp, _ := w.put(t, FieldCustomerName, "Acme Corporation")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	st := w.state(t)
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, PhaseIdle, st.State.Phase)
	assert.Equal(t, "Acme Corporation", st.Form.CustomerName)
}

func TestHandler_SetField_Unknown(t *testing.T) {
	w := createTestWidget(t, &stubSubmitter{})

	resp, body := w.put(t, "favouriteColour", "blue")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var stdErr apperrors.StandardError
	require.NoError(t, json.Unmarshal([]byte(body), &stdErr))
	assert.Equal(t, apperrors.ErrCodeUnknownField, stdErr.Code)
}

func TestHandler_Submit_Success(t *testing.T) {
	sub := &stubSubmitter{settlement: successSettlement()}
	w := createTestWidget(t, sub)

	resp, body := w.submit(t, formValues(createValidForm()))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, MessageSuccess)
	assert.Contains(t, body, "https://slides.example.com/pres-1")
	assert.Len(t, sub.Calls(), 1)

	st := w.state(t)
	assert.Equal(t, PhaseSettled, st.State.Phase)
	assert.Equal(t, FormData{}, st.Form)
}

func TestHandler_Submit_InvalidForm(t *testing.T) {
	sub := &stubSubmitter{settlement: successSettlement()}
	w := createTestWidget(t, sub)

	form := createValidForm()
	form.Notes = ""
	resp, body := w.submit(t, formValues(form))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "sac-field-error")
	assert.Contains(t, body, `value="Acme Corporation"`)
	assert.Empty(t, sub.Calls())
	assert.Equal(t, PhaseIdle, w.state(t).State.Phase)
}

func TestHandler_Submit_IgnoresUnknownFormKeys(t *testing.T) {
	sub := &stubSubmitter{settlement: Settlement{Outcome: Outcome{Kind: OutcomePartialSuccess}, StatusCode: 200}}
	w := createTestWidget(t, sub)

	values := formValues(createValidForm())
	values.Set("favouriteColour", "blue")
	resp, body := w.submit(t, values)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, MessagePartialSuccess)
	assert.Equal(t, createValidForm(), w.state(t).Form)
}

func TestHandler_Submit_WhilePending(t *testing.T) {
	sub := &stubSubmitter{
		settlement: successSettlement(),
		started:    make(chan struct{}, 1),
		block:      make(chan struct{}),
	}
	w := createTestWidget(t, sub)
	w.put(t, FieldNotes, "opens the session")

	done := make(chan int, 1)
	go func() {
		resp, err := w.client.PostForm(w.server.URL+"/submit", formValues(createValidForm()))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-sub.started

	resp, body := w.submit(t, formValues(createValidForm()))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Creating...")
	assert.Contains(t, body, "sac-loading-overlay")

	close(sub.block)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Len(t, sub.Calls(), 1)
}

func TestHandler_Submit_GuardUnavailable(t *testing.T) {
	cfg := createTestConfig()
	log := logger.NewTestLogger(t)
	sessions := NewSessionRegistry(time.Minute, func(id string) *Controller {
		return NewController(cfg, &stubSubmitter{}, WithSessionID(id), WithGuard(stubGuard{err: assert.AnError}))
	}, log)
	presenter, err := NewPresenter(cfg, nil)
	require.NoError(t, err)
	server := httptest.NewServer(NewHandler(sessions, presenter, log, time.Minute).Routes())
	defer server.Close()

	resp, err := http.PostForm(server.URL+"/submit", formValues(createValidForm()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
