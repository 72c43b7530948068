package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionflow/internal/cache"
	"questionflow/internal/config"
	"questionflow/internal/metrics"
	"questionflow/internal/repository"
	"questionflow/internal/service"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesOnlyThatQuestionnaire(t *testing.T) {
	h := NewHub(quietLogger(), nil)
	defer h.Close()

	a := &Connection{QuestionnaireID: "q1", Send: make(chan []byte, 4)}
	b := &Connection{QuestionnaireID: "q1", Send: make(chan []byte, 4)}
	other := &Connection{QuestionnaireID: "q2", Send: make(chan []byte, 4)}
	h.Register(a)
	h.Register(b)
	h.Register(other)
	waitFor(t, func() bool { return h.Subscribers("q1") == 2 })

	h.Broadcast("q1", "node_moved", map[string]string{"nodeId": "n1"})

	for _, c := range []*Connection{a, b} {
		msg := receive(t, c.Send)
		assert.Equal(t, "node_moved", msg.Type)
		assert.Equal(t, "q1", msg.QuestionnaireID)
		assert.JSONEq(t, `{"nodeId":"n1"}`, string(msg.Payload))
	}
	assert.Empty(t, other.Send)
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	h := NewHub(quietLogger(), nil)
	defer h.Close()

	slow := &Connection{QuestionnaireID: "q1", Send: make(chan []byte, 1)}
	h.Register(slow)
	waitFor(t, func() bool { return h.Subscribers("q1") == 1 })

	h.Broadcast("q1", "a", nil)
	h.Broadcast("q1", "b", nil)
	h.Broadcast("q1", "c", nil)
	h.Disconnect("q1")

	var got []string
	for data := range slow.Send {
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		got = append(got, msg.Type)
	}
	assert.Equal(t, []string{"a"}, got)
}

func TestHub_DisconnectAndGauge(t *testing.T) {
	m := metrics.New()
	h := NewHub(quietLogger(), m)
	defer h.Close()

	a := &Connection{QuestionnaireID: "q1", Send: make(chan []byte, 1)}
	b := &Connection{QuestionnaireID: "q2", Send: make(chan []byte, 1)}
	h.Register(a)
	h.Register(b)
	waitFor(t, func() bool { return h.Subscribers("q1") == 1 && h.Subscribers("q2") == 1 })

	h.Disconnect("q1")
	waitFor(t, func() bool { return h.Subscribers("q1") == 0 })

	_, ok := <-a.Send
	assert.False(t, ok, "send channel closed")
	assert.Equal(t, 1, h.Subscribers("q2"))

	// unregistering an already dropped connection is a no-op
	h.Unregister(a)
	h.Unregister(b)
	waitFor(t, func() bool { return h.Subscribers("q2") == 0 })

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "questionflow_ws_connections" {
			assert.Equal(t, 0.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestHub_CloseStopsEverything(t *testing.T) {
	h := NewHub(quietLogger(), nil)
	a := &Connection{QuestionnaireID: "q1", Send: make(chan []byte, 1)}
	h.Register(a)
	waitFor(t, func() bool { return h.Subscribers("q1") == 1 })

	h.Close()
	_, ok := <-a.Send
	assert.False(t, ok)

	// calls after Close return instead of blocking
	h.Broadcast("q1", "late", nil)
	h.Disconnect("q1")
	h.Close()
}

type feedServer struct {
	srv            *httptest.Server
	hub            *Hub
	auth           *service.AuthService
	questionnaires *service.QuestionnaireService
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	m := metrics.New()
	hub := NewHub(quietLogger(), m)
	t.Cleanup(hub.Close)

	cfg := config.Default()
	auth := service.NewAuthService(cfg.Auth, cache.NewTokenCache(rdb))
	questionnaires := service.NewQuestionnaireService(repository.NewMemoryQuestionnaireRepo(), quietLogger())
	questionnaires.SetBroadcaster(hub)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/questionnaires/{id}", NewHandler(hub, auth, questionnaires, "*", quietLogger()).QuestionnaireFeed)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &feedServer{srv: srv, hub: hub, auth: auth, questionnaires: questionnaires}
}

func (f *feedServer) url(id, token string) string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/v1/ws/questionnaires/" + id + "?token=" + token
}

func TestHandler_StreamsQuestionnaireChanges(t *testing.T) {
	f := newFeedServer(t)
	ctx := context.Background()

	login, err := f.auth.Login("admin", "password123")
	require.NoError(t, err)
	q, err := f.questionnaires.Create(ctx, login.HostID, "Feed", "")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(f.url(q.ID, login.Token), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, func() bool { return f.hub.Subscribers(q.ID) == 1 })

	_, err = f.questionnaires.UpdateMeta(ctx, login.HostID, q.ID, "Renamed", "")
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, service.EventQuestionnaireUpdated, msg.Type)
	assert.Contains(t, string(msg.Payload), "Renamed")

	require.NoError(t, f.questionnaires.Delete(ctx, login.HostID, q.ID))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, service.EventQuestionnaireDeleted, msg.Type)

	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "feed closed after delete")
}

func TestHandler_RejectsBadRequests(t *testing.T) {
	f := newFeedServer(t)
	ctx := context.Background()

	owner, err := f.auth.Login("admin", "password123")
	require.NoError(t, err)
	other, err := f.auth.Login("root", "root-password")
	require.NoError(t, err)
	q, err := f.questionnaires.Create(ctx, owner.HostID, "Private", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     string
		token  string
		status int
	}{
		{"missing token", q.ID, "", http.StatusUnauthorized},
		{"garbage token", q.ID, "not-a-jwt", http.StatusUnauthorized},
		{"unknown questionnaire", "missing", owner.Token, http.StatusNotFound},
		{"other host", q.ID, other.Token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(f.url(tt.id, tt.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
