package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainHealth "github.com/hansai/wa-bridge/domains/health"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHealthService struct {
	health domainHealth.Status
	status domainHealth.ExtendedStatus
}

func (f *fakeHealthService) GetHealth(_ context.Context) domainHealth.Status {
	return f.health
}

func (f *fakeHealthService) GetStatus(_ context.Context) domainHealth.ExtendedStatus {
	return f.status
}

func TestHealthEndpoint_BodyShape(t *testing.T) {
	app := fiber.New()
	cfg := &coreconfig.Config{}
	service := &fakeHealthService{
		health: domainHealth.Status{
			Status:             "healthy",
			Service:            "whatsapp-webhook",
			WhatsappConfigured: true,
			OpenClawConfigured: false,
		},
	}
	InitRestHealth(app, cfg, service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{
		"status": "healthy",
		"service": "whatsapp-webhook",
		"whatsapp_configured": true,
		"openclaw_configured": false
	}`, string(body))
}

func TestStatusEndpoint(t *testing.T) {
	app := fiber.New()
	cfg := &coreconfig.Config{}
	service := &fakeHealthService{
		status: domainHealth.ExtendedStatus{
			Status:             "running",
			Version:            "v1.0.0",
			InstanceID:         "instance-1",
			WebhookConfigured:  true,
			OpenClawConfigured: true,
		},
	}
	InitRestHealth(app, cfg, service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var parsed map[string]any
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "running", parsed["status"])
	assert.Equal(t, "instance-1", parsed["instance_id"])
}

func TestRootEndpoint_Banner(t *testing.T) {
	app := fiber.New()
	cfg := &coreconfig.Config{}
	cfg.App.Version = "v1.0.0"
	InitRestHealth(app, cfg, &fakeHealthService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var parsed map[string]any
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "v1.0.0", parsed["version"])
	assert.Contains(t, parsed, "endpoints")
}
