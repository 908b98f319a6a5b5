// Package tap streams decoded webhook payloads to WebSocket clients for
// local debugging. The Broadcaster side runs next to the bot; the Client
// side is used by tooling that wants to watch events as they arrive.
package tap

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Broadcaster accepts WebSocket connections and fans every broadcast
// payload out to all of them. A connected client that fails a write is
// dropped.
type Broadcaster struct {
	// Token, when set, is required from clients as a Bearer Authorization
	// header on the upgrade request.
	Token string

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewBroadcaster creates a Broadcaster with no connected clients.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.Token != "" && r.Header.Get("Authorization") != "Bearer "+b.Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	// Drain the read side so close frames are processed; the tap is
	// write-only from the server's point of view.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.drop(conn)
				return
			}
		}
	}()
}

// Broadcast sends v as a JSON text frame to every connected client.
func (b *Broadcaster) Broadcast(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(b.conns, conn)
			_ = conn.Close()
		}
	}
	return nil
}

// Close disconnects every client.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		_ = conn.Close()
		delete(b.conns, conn)
	}
	return nil
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.conns, conn)
	b.mu.Unlock()
	_ = conn.Close()
}

// Client is a WebSocket connection to a Broadcaster.
type Client struct {
	url   string
	token string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient creates a tap client for the given ws:// URL. The token may be
// empty when the broadcaster does not require one.
func NewClient(url, token string) *Client {
	return &Client{url: url, token: token}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	header := make(http.Header)
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(c.url, header)
	if err != nil {
		return fmt.Errorf("connect to tap: %w", err)
	}

	c.conn = conn
	return nil
}

// Next blocks for the next broadcast payload and decodes it into v.
func (c *Client) Next(v interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("not connected to tap")
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
