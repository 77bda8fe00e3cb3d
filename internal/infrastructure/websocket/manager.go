package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gogotalk/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event is the envelope pushed to UI connections.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// InboundHandler processes a frame sent by a UI connection.
type InboundHandler func(client *Client, message []byte)

// Client is one UI connection.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:      id,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Track stores the cancel func of a per-connection watch under name,
// cancelling any watch previously tracked under the same name.
func (c *Client) Track(name string, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.cancels[name]; ok {
		prev()
	}
	c.cancels[name] = cancel
}

func (c *Client) Untrack(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.cancels[name]; ok {
		cancel()
		delete(c.cancels, name)
	}
}

func (c *Client) cancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, cancel := range c.cancels {
		cancel()
		delete(c.cancels, name)
	}
}

// Manager fans events out to every connected UI.
type Manager struct {
	clients    map[string]*Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopped    bool
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case client := <-m.unregister:
				m.remove(client)
				logger.Info("Client unregistered: %s", client.ID)

			case message := <-m.broadcast:
				m.mutex.RLock()
				var slow []*Client
				for _, client := range m.clients {
					select {
					case client.Send <- message:
					default:
						slow = append(slow, client)
					}
				}
				m.mutex.RUnlock()
				for _, client := range slow {
					m.remove(client)
				}

			case <-ctx.Done():
				m.mutex.Lock()
				m.stopped = true
				for id, client := range m.clients {
					client.cancelAll()
					close(client.Send)
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Done is closed once the manager has shut down.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Add registers client. The client can receive SendTo events as soon as Add
// returns. It reports false once the manager has shut down.
func (m *Manager) Add(client *Client) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.stopped {
		return false
	}
	m.clients[client.ID] = client
	logger.Info("Client registered: %s", client.ID)
	return true
}

// Remove hands client to the manager loop for cleanup. After shutdown the
// loop has already dropped every client, so Remove returns at once.
func (m *Manager) Remove(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.clients[client.ID]; ok {
		client.cancelAll()
		delete(m.clients, client.ID)
		close(client.Send)
	}
}

// Publish sends an event to every connected UI. It never blocks the caller
// for longer than it takes to queue the frame.
func (m *Manager) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.Error("Failed to encode %s event: %v", eventType, err)
		return
	}

	select {
	case m.broadcast <- payload:
	default:
		logger.Warn("Dropping %s event: broadcast queue full", eventType)
	}
}

// SendTo queues an event for a single connection.
func (m *Manager) SendTo(clientID, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.Error("Failed to encode %s event: %v", eventType, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	client, ok := m.clients[clientID]
	if !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
		logger.Warn("Dropping %s event for %s: send buffer full", eventType, clientID)
	}
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

func (c *Client) ReadPump(m *Manager, handle InboundHandler) {
	defer func() {
		m.Remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read: %v", err)
			}
			break
		}

		if handle != nil {
			handle(c, message)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("websocket write: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
