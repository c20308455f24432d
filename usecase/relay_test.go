package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	coreconfig "github.com/hansai/wa-bridge/core/config"
	domainMessage "github.com/hansai/wa-bridge/domains/message"
	"github.com/hansai/wa-bridge/infrastructure/openclaw"
	"github.com/hansai/wa-bridge/infrastructure/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path string
	body map[string]any
}

type requestLog struct {
	mu       sync.Mutex
	requests []capturedRequest
}

func (l *requestLog) add(path string, body map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, capturedRequest{path: path, body: body})
}

func (l *requestLog) all() []capturedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]capturedRequest(nil), l.requests...)
}

func captureHandler(log *requestLog, response string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		log.add(r.URL.Path, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}
}

func newRelayFixture(t *testing.T, gatewayResponse string, gatewayStatus int) (domainMessage.IRelayUsecase, *requestLog, *requestLog) {
	t.Helper()

	gatewayLog := &requestLog{}
	gatewayServer := httptest.NewServer(captureHandler(gatewayLog, gatewayResponse, gatewayStatus))
	t.Cleanup(gatewayServer.Close)

	graphLog := &requestLog{}
	graphResponse := `{"contacts":[{"input":"15551234567"}],"messages":[{"id":"wamid.out1"}]}`
	graphServer := httptest.NewServer(captureHandler(graphLog, graphResponse, http.StatusOK))
	t.Cleanup(graphServer.Close)

	cfg := &coreconfig.Config{}
	cfg.OpenClaw.BaseURL = gatewayServer.URL
	cfg.OpenClaw.MessageTimeout = 5 * time.Second
	cfg.Whatsapp.GraphBaseURL = graphServer.URL
	cfg.Whatsapp.APIVersion = "v18.0"
	cfg.Whatsapp.PhoneID = "12345"
	cfg.Whatsapp.AccessToken = "test-token"

	httpClient := &http.Client{Timeout: 10 * time.Second}
	gateway := openclaw.NewClient(cfg, httpClient)
	sender := whatsapp.NewClient(cfg, httpClient)

	return NewRelayService(cfg, gateway, sender), gatewayLog, graphLog
}

// Full round trip: inbound "hello" hits the gateway, the gateway's
// "hi there" goes back out over the Graph API to the original sender.
func TestRelay_EndToEnd(t *testing.T) {
	relay, gatewayLog, graphLog := newRelayFixture(t, `{"response":"hi there"}`, http.StatusOK)

	err := relay.Relay(context.Background(), domainMessage.CanonicalMessage{
		Sender:    "15551234567",
		Text:      "hello",
		MessageID: "wamid.1",
		Metadata:  map[string]string{"type": "text"},
	})
	require.NoError(t, err)

	gatewayRequests := gatewayLog.all()
	require.Len(t, gatewayRequests, 1)
	assert.Equal(t, "/webhook/whatsapp", gatewayRequests[0].path)
	assert.Equal(t, "hello", gatewayRequests[0].body["message"])
	assert.Equal(t, "15551234567", gatewayRequests[0].body["from"])

	graphRequests := graphLog.all()
	require.Len(t, graphRequests, 1)
	assert.Equal(t, "15551234567", graphRequests[0].body["to"])
	assert.Equal(t, "hi there", graphRequests[0].body["text"].(map[string]any)["body"])
}

func TestRelay_MultipleReplyMessages(t *testing.T) {
	relay, _, graphLog := newRelayFixture(t, `{"messages":["first","second"]}`, http.StatusOK)

	err := relay.Relay(context.Background(), domainMessage.CanonicalMessage{Sender: "15551234567", Text: "hello"})
	require.NoError(t, err)

	graphRequests := graphLog.all()
	require.Len(t, graphRequests, 2)
	assert.Equal(t, "first", graphRequests[0].body["text"].(map[string]any)["body"])
	assert.Equal(t, "second", graphRequests[1].body["text"].(map[string]any)["body"])
}

func TestRelay_EmptyReplySendsNothing(t *testing.T) {
	relay, gatewayLog, graphLog := newRelayFixture(t, `{}`, http.StatusOK)

	err := relay.Relay(context.Background(), domainMessage.CanonicalMessage{Sender: "15551234567", Text: "hello"})
	require.NoError(t, err)

	assert.Len(t, gatewayLog.all(), 1)
	assert.Empty(t, graphLog.all(), "no reply text means no outbound send")
}

func TestRelay_GatewayErrorSendsNothing(t *testing.T) {
	relay, _, graphLog := newRelayFixture(t, `{"detail":"boom"}`, http.StatusInternalServerError)

	err := relay.Relay(context.Background(), domainMessage.CanonicalMessage{Sender: "15551234567", Text: "hello"})
	require.Error(t, err)

	assert.Empty(t, graphLog.all())
}

func TestRelay_UnconfiguredGatewayIsNoOp(t *testing.T) {
	graphLog := &requestLog{}
	graphServer := httptest.NewServer(captureHandler(graphLog, `{}`, http.StatusOK))
	t.Cleanup(graphServer.Close)

	cfg := &coreconfig.Config{}
	cfg.Whatsapp.GraphBaseURL = graphServer.URL
	cfg.Whatsapp.APIVersion = "v18.0"
	cfg.Whatsapp.PhoneID = "12345"
	cfg.Whatsapp.AccessToken = "test-token"

	httpClient := &http.Client{}
	relay := NewRelayService(cfg, openclaw.NewClient(cfg, httpClient), whatsapp.NewClient(cfg, httpClient))

	err := relay.Relay(context.Background(), domainMessage.CanonicalMessage{Sender: "15551234567", Text: "hello"})
	require.NoError(t, err)
	assert.Empty(t, graphLog.all())
}

func TestPreviewText_RuneSafeTruncation(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, previewText(short))

	long := strings.Repeat("é", 60)
	got := previewText(long)
	assert.True(t, utf8.ValidString(got), "truncation must not split a multibyte rune")
	assert.Equal(t, strings.Repeat("é", 50)+"...", got)

	exact := strings.Repeat("日", 50)
	assert.Equal(t, exact, previewText(exact))
}

// A failed delivery for one reply must not stop the remaining ones.
func TestRelay_SendFailureDoesNotAbortRemainingReplies(t *testing.T) {
	gatewayLog := &requestLog{}
	gatewayServer := httptest.NewServer(captureHandler(gatewayLog, `{"messages":["a","b"]}`, http.StatusOK))
	t.Cleanup(gatewayServer.Close)

	graphLog := &requestLog{}
	var graphCalls int
	var mu sync.Mutex
	graphServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		graphLog.add(r.URL.Path, body)

		mu.Lock()
		graphCalls++
		first := graphCalls == 1
		mu.Unlock()

		if first {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.out2"}]}`))
	}))
	t.Cleanup(graphServer.Close)

	cfg := &coreconfig.Config{}
	cfg.OpenClaw.BaseURL = gatewayServer.URL
	cfg.OpenClaw.MessageTimeout = 5 * time.Second
	cfg.Whatsapp.GraphBaseURL = graphServer.URL
	cfg.Whatsapp.APIVersion = "v18.0"
	cfg.Whatsapp.PhoneID = "12345"
	cfg.Whatsapp.AccessToken = "test-token"

	httpClient := &http.Client{}
	relay := NewRelayService(cfg, openclaw.NewClient(cfg, httpClient), whatsapp.NewClient(cfg, httpClient))

	err := relay.Relay(context.Background(), domainMessage.CanonicalMessage{Sender: "15551234567", Text: "hello"})
	require.NoError(t, err)

	assert.Len(t, graphLog.all(), 2, "second reply must still be attempted")
}
