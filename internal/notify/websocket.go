package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Broadcaster pushes analysis lifecycle messages to connected WebSocket
// clients. It is push-only: the only inbound message it answers is a ping.
type Broadcaster struct {
	connections map[*websocket.Conn]bool
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader
}

// Message is one WebSocket frame sent to clients
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewBroadcaster creates a WebSocket broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		connections: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades the request and keeps the connection registered
// until the client disconnects.
func (b *Broadcaster) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %s", err.Error())
		return
	}
	defer conn.Close()

	b.mutex.Lock()
	b.connections[conn] = true
	b.mutex.Unlock()

	log.Println("WebSocket client connected")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %s", err.Error())
			}
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			b.send(conn, Message{
				Type:      "pong",
				Timestamp: time.Now(),
				Data:      map[string]interface{}{"status": "ok"},
			})
		}
	}

	log.Println("WebSocket client disconnected")

	b.mutex.Lock()
	delete(b.connections, conn)
	b.mutex.Unlock()
}

// Publish broadcasts one message to every connected client. Delivery is
// best-effort; dead connections are dropped.
func (b *Broadcaster) Publish(_ context.Context, msgType string, _ string, data map[string]interface{}) error {
	msg := Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	for conn := range b.connections {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(b.connections, conn)
		}
	}
	return nil
}

// send writes one message to a single connection
func (b *Broadcaster) send(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Failed to send WebSocket message: %s", err.Error())
	}
}
