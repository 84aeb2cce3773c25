// test/e2e/e2e_test.go
package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solution-creator/internal/common/logger"
	sac "solution-creator/internal/widgets/presentation/architecture-creator"
)

// ==========================
// Test Helper Functions
// ==========================

type widgetClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

// startWidget serves the widget in front of webhookURL, wired like the server.
func startWidget(t *testing.T, webhookURL string) *widgetClient {
	t.Helper()
	log := logger.NewTestLogger(t)

	cfg := sac.DefaultConfig()
	cfg.WebhookURL = webhookURL
	cfg.PortalID = "4242"
	cfg.Timeout = 2 * time.Second

	service := sac.NewService(sac.ServiceDependencies{Logger: log}, cfg)
	guard := sac.NewLocalGuard()
	sessions := sac.NewSessionRegistry(time.Hour, func(id string) *sac.Controller {
		return sac.NewController(cfg, service,
			sac.WithSessionID(id),
			sac.WithGuard(guard),
			sac.WithObserver(sac.Observers{sac.NewLoggingObserver(log)}),
			sac.WithLogger(log),
		)
	}, log)

	presenter, err := sac.NewPresenter(cfg, nil)
	require.NoError(t, err)

	server := httptest.NewServer(sac.NewHandler(sessions, presenter, log, time.Hour).Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &widgetClient{t: t, base: server.URL, client: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

func (c *widgetClient) submit(form url.Values) (int, string) {
	resp, err := c.client.PostForm(c.base+"/submit", form)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(body)
}

type widgetState struct {
	State struct {
		Phase   string `json:"phase"`
		Message string `json:"message"`
		Outcome *struct {
			Kind            string `json:"kind"`
			Reason          string `json:"reason"`
			PresentationID  string `json:"presentationId"`
			PresentationURL string `json:"presentationUrl"`
		} `json:"outcome"`
	} `json:"state"`
	Form map[string]string `json:"form"`
}

func (c *widgetClient) state() widgetState {
	resp, err := c.client.Get(c.base + "/state")
	require.NoError(c.t, err)
	defer resp.Body.Close()
	var st widgetState
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func validForm() url.Values {
	return url.Values{
		"submitterEmail": {"jane.doe@example.com"},
		"customerName":   {"Acme Corporation"},
		"customerDomain": {"acmecorp.com"},
		"context":        {"Digital transformation"},
		"audienceType":   {"Technical"},
		"solutionFormat": {"Document"},
		"solutionIdeas":  {"Streaming ingestion"},
		"notes":          {"Needs SSO"},
	}
}

func webhook(t *testing.T, status int, body string, received chan<- map[string]interface{}) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && received != nil {
			received <- payload
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// ==========================
// Scenarios
// ==========================

func TestE2E_Success(t *testing.T) {
	received := make(chan map[string]interface{}, 1)
	hook := webhook(t, http.StatusOK, `{"status":"OK","presentation_id":"p1","presentation_url":"https://x/y"}`, received)
	c := startWidget(t, hook.URL)

	status, body := c.submit(validForm())

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, sac.MessageSuccess)
	assert.Contains(t, body, `href="https://x/y"`)
	assert.Contains(t, body, "Presentation ID: p1")

	payload := <-received
	metadata := payload["metadata"].(map[string]interface{})
	customer := payload["customer"].(map[string]interface{})
	assert.Equal(t, "jane.doe", metadata["submittedBy"])
	assert.Equal(t, "4242", customer["portalId"])

	st := c.state()
	assert.Equal(t, "settled", st.State.Phase)
	require.NotNil(t, st.State.Outcome)
	assert.Equal(t, "success", st.State.Outcome.Kind)
	assert.Equal(t, "p1", st.State.Outcome.PresentationID)
	for name, value := range st.Form {
		assert.Empty(t, value, name)
	}
}

func TestE2E_PartialSuccess(t *testing.T) {
	hook := webhook(t, http.StatusOK, `{"status":"OK"}`, nil)
	c := startWidget(t, hook.URL)

	status, body := c.submit(validForm())

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, sac.MessagePartialSuccess)
	assert.NotContains(t, body, "Open Your Presentation")

	st := c.state()
	assert.Equal(t, "partial_success", st.State.Outcome.Kind)
	assert.Equal(t, "Acme Corporation", st.Form["customerName"])
}

func TestE2E_RequestFailed(t *testing.T) {
	hook := webhook(t, http.StatusInternalServerError, `{"error":"boom"}`, nil)
	c := startWidget(t, hook.URL)

	status, body := c.submit(validForm())

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, sac.MessageRequestFailed)

	st := c.state()
	assert.Equal(t, "failure", st.State.Outcome.Kind)
	assert.Equal(t, "request failed", st.State.Outcome.Reason)
	assert.Equal(t, "Acme Corporation", st.Form["customerName"])
}

func TestE2E_NetworkError(t *testing.T) {
	hook := webhook(t, http.StatusOK, `{}`, nil)
	hookURL := hook.URL
	hook.Close()
	c := startWidget(t, hookURL)

	status, body := c.submit(validForm())

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, sac.MessageNetworkError)

	st := c.state()
	assert.Equal(t, "failure", st.State.Outcome.Kind)
	assert.Equal(t, "network error", st.State.Outcome.Reason)
	assert.Equal(t, "Acme Corporation", st.Form["customerName"])
}

func TestE2E_RetryAfterFailure(t *testing.T) {
	hook := webhook(t, http.StatusBadGateway, ``, nil)
	c := startWidget(t, hook.URL)

	_, body := c.submit(validForm())
	assert.Contains(t, body, sac.MessageRequestFailed)

	// the form is still filled, so an empty resubmit goes out again
	_, body = c.submit(url.Values{})
	assert.Contains(t, body, sac.MessageRequestFailed)
	assert.Equal(t, "settled", c.state().State.Phase)
}
