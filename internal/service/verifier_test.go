package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa911/portfolio/internal/config"
)

// providerRecorder captures what the fake siteverify endpoint received
type providerRecorder struct {
	mu          sync.Mutex
	calls       int
	method      string
	contentType string
	form        url.Values
}

func (r *providerRecorder) snapshot() (int, string, string, url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.method, r.contentType, r.form
}

// newProvider starts a fake siteverify endpoint answering with body
func newProvider(t *testing.T, status int, body string) (*httptest.Server, *providerRecorder) {
	t.Helper()
	rec := &providerRecorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		assert.NoError(t, err)

		rec.mu.Lock()
		rec.calls++
		rec.method = r.Method
		rec.contentType = r.Header.Get("Content-Type")
		rec.form = r.PostForm
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestRecaptchaVerify_Success(t *testing.T) {
	srv, rec := newProvider(t, http.StatusOK, `{"success": true, "hostname": "example.com"}`)
	svc := NewRecaptchaService("secret", 0, WithEndpoint(srv.URL))

	result := svc.Verify(context.Background(), "token", "198.51.100.1")

	assert.True(t, result.Success)
	assert.Equal(t, "example.com", result.Hostname)

	calls, method, contentType, form := rec.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "secret", form.Get("secret"))
	assert.Equal(t, "token", form.Get("response"))
	assert.Equal(t, "198.51.100.1", form.Get("remoteip"))
	assert.True(t, strings.HasPrefix(contentType, "application/x-www-form-urlencoded"))
}

func TestRecaptchaVerify_OmitsEmptyRemoteIP(t *testing.T) {
	srv, rec := newProvider(t, http.StatusOK, `{"success": true}`)
	svc := NewRecaptchaService("secret", 0, WithEndpoint(srv.URL))

	svc.Verify(context.Background(), "token", "")
	_, _, _, form := rec.snapshot()
	_, present := form["remoteip"]
	assert.False(t, present)
}

func TestRecaptchaVerify_Rejected(t *testing.T) {
	srv, _ := newProvider(t, http.StatusOK, `{"success": false, "error-codes": ["invalid-input-response", "timeout-or-duplicate"]}`)
	svc := NewRecaptchaService("secret", 0, WithEndpoint(srv.URL))

	result := svc.Verify(context.Background(), "token", "")

	assert.False(t, result.Success)
	assert.Equal(t, []string{"invalid-input-response", "timeout-or-duplicate"}, result.ErrorCodes)
}

func TestRecaptchaVerify_MinScore(t *testing.T) {
	tests := []struct {
		name     string
		minScore float64
		want     bool
	}{
		{"score check disabled", 0, true},
		{"score above minimum", 0.5, true},
		{"score below minimum", 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newProvider(t, http.StatusOK, `{"success": true, "score": 0.7}`)
			svc := NewRecaptchaService("secret", tt.minScore, WithEndpoint(srv.URL))

			result := svc.Verify(context.Background(), "token", "")
			assert.Equal(t, tt.want, result.Success)
			assert.InDelta(t, 0.7, result.Score, 0.0001)
			if !tt.want {
				require.NotEmpty(t, result.ErrorCodes)
				assert.Contains(t, result.ErrorCodes[0], ErrorCodeScoreTooLow)
			}
		})
	}
}

func TestVerify_MissingSecretMakesNoRequest(t *testing.T) {
	srv, rec := newProvider(t, http.StatusOK, `{"success": true}`)

	verifiers := []Verifier{
		NewRecaptchaService("", 0, WithEndpoint(srv.URL)),
		NewTurnstileService("", WithEndpoint(srv.URL)),
	}
	for _, v := range verifiers {
		t.Run(v.Name(), func(t *testing.T) {
			result := v.Verify(context.Background(), "token", "")
			assert.False(t, result.Success)
			assert.Equal(t, []string{ErrorCodeMissingSecret}, result.ErrorCodes)
		})
	}
	calls, _, _, _ := rec.snapshot()
	assert.Zero(t, calls)
}

func TestVerify_TimeoutIsNegativeResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	svc := NewTurnstileService("secret", WithEndpoint(srv.URL), WithTimeout(50*time.Millisecond))
	result := svc.Verify(context.Background(), "token", "")

	assert.False(t, result.Success)
	require.Len(t, result.ErrorCodes, 1)
	assert.True(t, strings.HasPrefix(result.ErrorCodes[0], ErrorCodeRequestError))
}

func TestVerify_UnreachableIsNegativeResult(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	result := NewTurnstileService("secret", WithEndpoint(endpoint)).Verify(context.Background(), "token", "")
	assert.False(t, result.Success)
	require.Len(t, result.ErrorCodes, 1)
	assert.True(t, strings.HasPrefix(result.ErrorCodes[0], ErrorCodeRequestError))
}

func TestVerify_BadResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"success": true}`},
		{"not json", http.StatusOK, `<html>nope</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newProvider(t, tt.status, tt.body)
			result := NewTurnstileService("secret", WithEndpoint(srv.URL)).Verify(context.Background(), "token", "")

			assert.False(t, result.Success)
			require.Len(t, result.ErrorCodes, 1)
			assert.True(t, strings.HasPrefix(result.ErrorCodes[0], ErrorCodeInvalidResponse))
		})
	}
}

func TestTurnstileVerify_Success(t *testing.T) {
	srv, rec := newProvider(t, http.StatusOK, `{"success": true, "error-codes": []}`)
	svc := NewTurnstileService("ts-secret", WithEndpoint(srv.URL))

	result := svc.Verify(context.Background(), "cf-token", "")
	assert.True(t, result.Success)

	_, _, _, form := rec.snapshot()
	assert.Equal(t, "ts-secret", form.Get("secret"))
	assert.Equal(t, "cf-token", form.Get("response"))
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(config.CaptchaConfig{Provider: config.CaptchaProviderRecaptcha, Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &RecaptchaService{}, v)

	v, err = NewVerifier(config.CaptchaConfig{Provider: config.CaptchaProviderTurnstile, Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &TurnstileService{}, v)

	_, err = NewVerifier(config.CaptchaConfig{Provider: "hcaptcha"})
	assert.Error(t, err)
}
