package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"distilled/internal/handlers"
	"distilled/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type countingPoller struct{ calls int }

func (p *countingPoller) PollMessageStatus(ctx context.Context) (*services.StatusPollResult, error) {
	p.calls++
	return &services.StatusPollResult{}, nil
}

func (p *countingPoller) PollInteractions(ctx context.Context) (*services.InteractionPollResult, error) {
	p.calls++
	return &services.InteractionPollResult{}, nil
}

type noopDigest struct{}

func (noopDigest) Run(ctx context.Context) (*services.DigestResult, error) {
	return &services.DigestResult{Message: "No posts to send"}, nil
}

func TestCronRoutesRequireSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	poller := &countingPoller{}
	r := gin.New()
	RegisterRoutes(r, handlers.NewCronHandler(noopDigest{}, poller), "top-secret")

	for _, path := range []string{"/api/cron/digest", "/api/cron/recopilation", "/api/cron/poll-messages", "/api/cron/poll-interactions"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer top-secret")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, 2, poller.calls)
}

func TestPublicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, handlers.NewCronHandler(noopDigest{}, &countingPoller{}), "")

	for _, path := range []string{"/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
