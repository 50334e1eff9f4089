package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/tulip-mania/game/engine"
)

func testState() *engine.GameState {
	return engine.Apply(nil, engine.StartGame{PartyCount: 2, Seed: 4})
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "test-session", send: make(chan []byte, 8)}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "test-session", send: make(chan []byte, 8)}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected the send channel to be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 8)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 8)}
	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)
	if len(hub.sessions[sessionID]) != 1 || !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastOnlyReachesSession(t *testing.T) {
	hub := NewHub()
	inside := &Client{hub: hub, sessionID: "ab12", send: make(chan []byte, 8)}
	outside := &Client{hub: hub, sessionID: "cd34", send: make(chan []byte, 8)}
	hub.registerClient(inside)
	hub.registerClient(outside)

	hub.broadcastMessage(&Message{SessionID: "AB12", GameState: testState(), Event: EventStateUpdate})

	select {
	case data := <-inside.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event '%s', got %s", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || len(message.GameState.Parties) != 2 {
			t.Error("GameState not correctly transmitted")
		}
	default:
		t.Error("Expected the session client to receive the message")
	}

	select {
	case <-outside.send:
		t.Error("Expected other sessions not to receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "ping"})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Expected a client with a full buffer to be dropped")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	hub.BroadcastEvent("event-test", "round_end", "Round 2 is over")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "round_end" {
			t.Errorf("Expected event 'round_end', got %s", message.Event)
		}
		if message.Data != "Round 2 is over" {
			t.Errorf("Expected data 'Round 2 is over', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Stop()
	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Run to return after Stop")
	}

	// must not block once stopped
	hub.BroadcastEvent("any", "late", nil)
	if n := hub.ClientCount("any"); n != 0 {
		t.Errorf("Expected 0 clients after stop, got %d", n)
	}
}

func newWSServer(t *testing.T, hub *Hub, initial *engine.GameState) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID, initial)
	}))
	t.Cleanup(server.Close)
	return server
}

func waitForClients(hub *Hub, sessionID string, want int) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := newWSServer(t, hub, nil)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	if !waitForClients(hub, "ws-test", 1) {
		t.Fatalf("Expected 1 client in session, got %d", hub.ClientCount("ws-test"))
	}

	conn.Close()

	if !waitForClients(hub, "ws-test", 0) {
		t.Error("Session should have been cleaned up after WebSocket close")
	}
}

func TestWebSocketReceivesStates(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	initial := testState()
	server := newWSServer(t, hub, initial)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	read := func() Message {
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

	first := read()
	if first.Event != EventStateUpdate || first.GameState == nil || first.GameState.Round != 1 {
		t.Errorf("Expected the initial snapshot, got %+v", first)
	}

	if !waitForClients(hub, "msg-test", 1) {
		t.Fatal("Expected the client to be registered")
	}

	next := engine.Apply(initial, engine.PerformAction{Kind: engine.Buy, Variety: engine.Common})
	hub.BroadcastToSession("msg-test", next)

	update := read()
	if update.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", update.SessionID)
	}
	if update.GameState.Parties[0].Cash != 70 {
		t.Errorf("Expected cash 70 after the buy, got %d", update.GameState.Parties[0].Cash)
	}
}
