package openclaw

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	pkgError "github.com/hansai/wa-bridge/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayClient(baseURL string) *Client {
	cfg := &coreconfig.Config{}
	cfg.OpenClaw.BaseURL = baseURL
	cfg.OpenClaw.MessageTimeout = 5 * time.Second
	return NewClient(cfg, &http.Client{})
}

func TestForward_SchemaAndPath(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hi there"}`))
	}))
	defer server.Close()

	client := newGatewayClient(server.URL)
	client.cfg.OpenClaw.APIKey = "secret"

	reply, err := client.Forward(context.Background(), domainMessage.CanonicalMessage{
		Sender:    "15551234567",
		Text:      "hello",
		MessageID: "wamid.1",
		Metadata:  map[string]string{"type": "text"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"hi there"}, reply.Texts())

	assert.Equal(t, "/webhook/whatsapp", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["channel"])
	assert.Equal(t, "15551234567", gotBody["from"])
	assert.Equal(t, "hello", gotBody["message"])
	assert.Equal(t, "wamid.1", gotBody["message_id"])
	assert.Equal(t, map[string]any{"type": "text"}, gotBody["metadata"])
}

func TestForward_NilMetadataSentAsEmptyObject(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newGatewayClient(server.URL)
	_, err := client.Forward(context.Background(), domainMessage.CanonicalMessage{Sender: "1555", Text: "hi"})
	require.NoError(t, err)

	require.Contains(t, gotBody, "metadata")
	assert.Equal(t, map[string]any{}, gotBody["metadata"])
}

func TestForward_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newGatewayClient(server.URL)
	reply, err := client.Forward(context.Background(), domainMessage.CanonicalMessage{Sender: "1555", Text: "hi"})

	assert.Nil(t, reply)
	require.Error(t, err)
	var gatewayErr pkgError.GatewayError
	assert.ErrorAs(t, err, &gatewayErr)
	assert.Contains(t, err.Error(), "503")
}

func TestForward_TimeoutBoundedByMessageTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{"response":"too late"}`))
	}))
	defer server.Close()

	client := newGatewayClient(server.URL)
	client.cfg.OpenClaw.MessageTimeout = 50 * time.Millisecond

	start := time.Now()
	reply, err := client.Forward(context.Background(), domainMessage.CanonicalMessage{Sender: "1555", Text: "hi"})
	elapsed := time.Since(start)

	assert.Nil(t, reply)
	require.Error(t, err)
	assert.Less(t, elapsed, 400*time.Millisecond, "forward must give up at the message timeout")
}

func TestGatewayReply_Texts(t *testing.T) {
	cases := []struct {
		name  string
		reply *GatewayReply
		want  []string
	}{
		{"nil reply", nil, nil},
		{"response string wins", &GatewayReply{Response: "one", Messages: []string{"two"}}, []string{"one"}},
		{"messages array", &GatewayReply{Messages: []string{"a", "", "  ", "b"}}, []string{"a", "b"}},
		{"empty reply", &GatewayReply{}, nil},
		{"blank response falls through", &GatewayReply{Response: "   ", Messages: []string{"a"}}, []string{"a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.reply.Texts())
		})
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newGatewayClient(server.URL)
	assert.True(t, client.HealthCheck(context.Background()))

	unconfigured := newGatewayClient("")
	assert.False(t, unconfigured.HealthCheck(context.Background()))
}
