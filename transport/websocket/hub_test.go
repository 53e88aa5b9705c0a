package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/memorygame/game/controller"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// mockInput records actions received from sockets
type mockInput struct {
	flips    chan int
	restarts chan string
	reject   bool
	err      error
}

func newMockInput() *mockInput {
	return &mockInput{
		flips:    make(chan int, 8),
		restarts: make(chan string, 8),
	}
}

func (m *mockInput) Flip(ctx context.Context, sessionID string, cardID int) (*service.FlipResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.flips <- cardID
	result := engine.FlipResult{Outcome: engine.OutcomeFlipped, CardID: cardID}
	if m.reject {
		result = engine.FlipResult{Outcome: engine.OutcomeRejected, Reason: engine.RejectResolutionPending, CardID: cardID}
	}
	return &service.FlipResponse{Result: result, Message: "ok"}, nil
}

func (m *mockInput) Restart(ctx context.Context, sessionID string) (*engine.GameView, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.restarts <- sessionID
	return &engine.GameView{}, nil
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

// drain delivers everything queued on the hub without running its loop
func drain(hub *Hub) {
	for {
		select {
		case message := <-hub.broadcast:
			hub.broadcastMessage(message)
		default:
			return
		}
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != bufferSize {
		t.Errorf("Expected broadcast buffer of %d, got %d", bufferSize, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	client := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other-session")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastEvent(sessionID, EventStats, controller.Stats{Moves: 4, Elapsed: "00:07"})
	drain(hub)

	message := receive(t, client)
	if message.SessionID != sessionID {
		t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
	}
	if message.Event != EventStats {
		t.Errorf("Expected event %q, got %q", EventStats, message.Event)
	}
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", message.Data)
	}
	if data["moves"] != float64(4) || data["elapsed"] != "00:07" {
		t.Errorf("Stats not correctly transmitted: %v", data)
	}

	if len(other.send) != 0 {
		t.Error("Clients of other sessions should not receive the event")
	}
}

func TestHubReplyTargetsOneClient(t *testing.T) {
	hub := NewHub()
	sessionID := "reply-test"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	hub.reply(client1, EventError, "nope")
	drain(hub)

	message := receive(t, client1)
	if message.Event != EventError || message.Data != "nope" {
		t.Errorf("Unexpected reply: %+v", message)
	}
	if len(client2.send) != 0 {
		t.Error("Reply leaked to another client of the same session")
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		// Nothing consumes the queue, so the overflow must be dropped
		for i := 0; i < bufferSize+10; i++ {
			hub.BroadcastEvent("full", EventBoard, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastEvent blocked on a full queue")
	}
	if len(hub.broadcast) != bufferSize {
		t.Errorf("Expected a full queue of %d, got %d", bufferSize, len(hub.broadcast))
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.BroadcastEvent("slow", EventBoard, nil)
	drain(hub)

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected client with a full send channel to be dropped")
	}
}

func TestSessionPresenter(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "presenter")
	hub.registerClient(client)

	presenter := hub.PresenterFor("presenter")
	presenter.RenderBoard(engine.GameView{GameID: "g1", Moves: 2})
	presenter.UpdateStats(controller.Stats{GameID: "g1", Moves: 2})
	presenter.ShowVictory(engine.Summary{GameID: "g1", Moves: 8, Elapsed: "00:42"})
	presenter.HideVictory()
	drain(hub)

	expected := []string{EventBoard, EventStats, EventVictory, EventVictoryHidden}
	for _, event := range expected {
		message := receive(t, client)
		if message.Event != event {
			t.Errorf("Expected event %q, got %q", event, message.Event)
		}
	}
}

func startServer(t *testing.T, hub *Hub, initial ...*Message) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID, initial...)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	server := startServer(t, hub)

	conn := dial(t, server, "ws-test")
	waitFor(t, "registration", func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()
	waitFor(t, "cleanup", func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketInitialMessages(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	server := startServer(t, hub,
		&Message{Event: EventBoard, Data: engine.GameView{GameID: "first"}},
		&Message{Event: EventStats, Data: controller.Stats{GameID: "first"}},
	)

	conn := dial(t, server, "init")

	board := readMessage(t, conn)
	if board.Event != EventBoard || board.SessionID != "init" {
		t.Errorf("Expected initial board for session init, got %+v", board)
	}
	stats := readMessage(t, conn)
	if stats.Event != EventStats {
		t.Errorf("Expected initial stats, got %q", stats.Event)
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	server := startServer(t, hub)

	conn := dial(t, server, "msg-test")
	waitFor(t, "registration", func() bool { return hub.ClientCount("msg-test") == 1 })

	hub.PresenterFor("msg-test").RenderBoard(engine.GameView{
		GameID: "g1",
		Cards:  []engine.CardView{{ID: 0, State: engine.Flipped, Symbol: "A"}, {ID: 1, State: engine.Hidden}},
		Moves:  3,
	})

	message := readMessage(t, conn)
	if message.SessionID != "msg-test" || message.Event != EventBoard {
		t.Fatalf("Unexpected message: %+v", message)
	}
	data := message.Data.(map[string]interface{})
	if data["moves"] != float64(3) {
		t.Errorf("Expected moves 3, got %v", data["moves"])
	}
	if cards := data["cards"].([]interface{}); len(cards) != 2 {
		t.Errorf("Expected 2 cards, got %d", len(cards))
	}
}

func TestWebSocketInput(t *testing.T) {
	hub := NewHub()
	input := newMockInput()
	hub.SetInputHandler(input)
	go hub.Run()
	server := startServer(t, hub)

	conn := dial(t, server, "input")

	if err := conn.WriteJSON(map[string]interface{}{"action": "flip", "card_id": 5}); err != nil {
		t.Fatalf("Failed to send flip: %v", err)
	}
	select {
	case cardID := <-input.flips:
		if cardID != 5 {
			t.Errorf("Expected card 5, got %d", cardID)
		}
	case <-time.After(time.Second):
		t.Fatal("Flip never reached the input handler")
	}

	if err := conn.WriteJSON(map[string]string{"action": "restart"}); err != nil {
		t.Fatalf("Failed to send restart: %v", err)
	}
	select {
	case sessionID := <-input.restarts:
		if sessionID != "input" {
			t.Errorf("Expected restart for session input, got %s", sessionID)
		}
	case <-time.After(time.Second):
		t.Fatal("Restart never reached the input handler")
	}
}

func TestWebSocketInputErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		setup   func(*mockInput)
		event   string
	}{
		{name: "malformed", payload: "{not json", event: EventError},
		{name: "missing card", payload: `{"action":"flip"}`, event: EventError},
		{name: "unknown action", payload: `{"action":"dance"}`, event: EventError},
		{
			name:    "service error",
			payload: `{"action":"flip","card_id":1}`,
			setup:   func(m *mockInput) { m.err = errors.New("session not found") },
			event:   EventError,
		},
		{
			name:    "rejected flip",
			payload: `{"action":"flip","card_id":1}`,
			setup:   func(m *mockInput) { m.reject = true },
			event:   EventRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			input := newMockInput()
			if tt.setup != nil {
				tt.setup(input)
			}
			hub.SetInputHandler(input)
			go hub.Run()
			server := startServer(t, hub)

			conn := dial(t, server, "errors")
			waitFor(t, "registration", func() bool { return hub.ClientCount("errors") == 1 })

			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("Failed to send message: %v", err)
			}
			message := readMessage(t, conn)
			if message.Event != tt.event {
				t.Errorf("Expected %q event, got %q (%v)", tt.event, message.Event, message.Data)
			}
		})
	}
}

func TestWebSocketInputWithoutHandler(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	server := startServer(t, hub)

	conn := dial(t, server, "no-handler")
	waitFor(t, "registration", func() bool { return hub.ClientCount("no-handler") == 1 })

	conn.WriteJSON(map[string]string{"action": "restart"})
	message := readMessage(t, conn)
	if message.Event != EventError {
		t.Errorf("Expected error event, got %q", message.Event)
	}
}
