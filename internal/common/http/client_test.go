package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solution-creator/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON_SendsBodyAndHeaders(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	resp, err := c.PostJSON(context.Background(), srv.URL, []byte(`{"a":1}`), map[string]string{"X-Submission-Id": "abc"})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.JSONEq(t, `{"status":"OK"}`, string(resp.Body))
	assert.JSONEq(t, `{"a":1}`, string(gotBody))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "abc", gotHeader.Get("X-Submission-Id"))
}

func TestPostJSON_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second).PostJSON(context.Background(), srv.URL, []byte(`{}`), nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPostJSON_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(50*time.Millisecond).PostJSON(context.Background(), srv.URL, []byte(`{}`), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWebhookTimeout, errors.CodeOf(err))
}

func TestPostJSON_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(time.Second).PostJSON(context.Background(), url, []byte(`{}`), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWebhookNetworkError, errors.CodeOf(err))
}
