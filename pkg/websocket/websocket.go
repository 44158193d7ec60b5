package websocketPkg

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// agentRequestTimeout bounds every request routed to the desktop agent.
// The agent may be offline at any moment; a pending request is resolved to a
// nil sentinel instead of blocking a user turn.
const agentRequestTimeout = 5 * time.Second

const (
	EventVoiceData     = "voice-data"
	EventChatMessage   = "chat-message"
	EventWakeWord      = "wake-word-detected"
	EventTranscript    = "transcript"
	EventResponseText  = "response-text"
	EventVoiceResponse = "voice-response"
	EventChatResponse  = "chat-response"

	eventScreenshotRequest  = "screenshot-request"
	eventScreenshotResponse = "screenshot-response"
)

type Envelope struct {
	Event         string          `json:"event"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// ScreenshotResult is the agent's answer to a screen-capture request.
type ScreenshotResult struct {
	ImageBase64 string `json:"image_base64"`
	CapturedAt  string `json:"captured_at"`
}

type EventHandler func(event string, payload json.RawMessage)

type IAgentClient interface {
	RequestScreenshot() *ScreenshotResult
	SendEvent(event string, payload interface{}) error
	OnEvent(handler EventHandler)
	IsConnected() bool
	Reconnect() error
	Close()
}

type agentClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	pending      *pendingRequests
	handler      EventHandler
	pingInterval time.Duration
	writeTimeout time.Duration
}

func NewAgentClient() IAgentClient {
	client := &agentClient{
		pending:      newPendingRequests(),
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go func() {
		if err := client.Reconnect(); err != nil {
			log.Printf("Initial connection to desktop agent failed: %v. Will retry on demand.", err)
		} else {
			log.Printf("Successfully connected to desktop agent")
		}
	}()

	return client
}

// pendingRequests correlates in-flight request ids with the goroutines
// waiting for their responses.
type pendingRequests struct {
	mu      sync.Mutex
	waiting map[string]chan json.RawMessage
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{
		waiting: make(map[string]chan json.RawMessage),
	}
}

func (p *pendingRequests) add(id string) chan json.RawMessage {
	ch := make(chan json.RawMessage, 1)
	p.mu.Lock()
	p.waiting[id] = ch
	p.mu.Unlock()
	return ch
}

// resolve delivers a response to the waiter, if one is still registered.
func (p *pendingRequests) resolve(id string, payload json.RawMessage) bool {
	p.mu.Lock()
	ch, ok := p.waiting[id]
	if ok {
		delete(p.waiting, id)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	ch <- payload
	return true
}

func (p *pendingRequests) drop(id string) {
	p.mu.Lock()
	delete(p.waiting, id)
	p.mu.Unlock()
}

func (c *agentClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *agentClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := os.Getenv("DESKTOP_AGENT_URL")
	if url == "" {
		url = "ws://localhost:8200/agent/ws"
	}

	log.Printf("Connecting to desktop agent at %s", url)

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn

	go c.readLoop(conn)
	go c.keepAlive()

	return nil
}

func (c *agentClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *agentClient) OnEvent(handler EventHandler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

func (c *agentClient) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Agent read failed, marking connection as dead: %v", err)
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			conn.Close()
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			log.Printf("Dropping unreadable agent message: %v", err)
			continue
		}

		if envelope.Event == eventScreenshotResponse && envelope.CorrelationID != "" {
			if c.pending.resolve(envelope.CorrelationID, envelope.Payload) {
				continue
			}
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(envelope.Event, envelope.Payload)
		}
	}
}

func (c *agentClient) keepAlive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		conn := c.conn
		if conn == nil {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(
			websocket.PingMessage,
			[]byte{},
			time.Now().Add(c.writeTimeout),
		)
		c.mu.Unlock()

		if err != nil {
			log.Printf("Ping failed, marking agent connection as dead: %v", err)
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			conn.Close()
			return
		}
	}
}

func (c *agentClient) writeEnvelope(envelope Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected to desktop agent")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteJSON(envelope); err != nil {
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("error sending agent message: %w", err)
	}
	c.conn.SetWriteDeadline(time.Time{})

	return nil
}

// RequestScreenshot asks the agent for a screen capture, pairing the request
// with a correlation id. A nil result means the agent did not answer within
// the timeout; it never blocks indefinitely.
func (c *agentClient) RequestScreenshot() *ScreenshotResult {
	correlationID := uuid.NewString()
	ch := c.pending.add(correlationID)

	err := c.writeEnvelope(Envelope{
		Event:         eventScreenshotRequest,
		CorrelationID: correlationID,
	})
	if err != nil {
		c.pending.drop(correlationID)
		log.Printf("Screenshot request not sent: %v", err)
		return nil
	}

	select {
	case payload := <-ch:
		var result ScreenshotResult
		if err := json.Unmarshal(payload, &result); err != nil {
			log.Printf("Error unmarshaling screenshot response: %v", err)
			return nil
		}
		return &result
	case <-time.After(agentRequestTimeout):
		c.pending.drop(correlationID)
		log.Printf("Screenshot request %s timed out", correlationID)
		return nil
	}
}

func (c *agentClient) SendEvent(event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling event payload: %w", err)
	}

	return c.writeEnvelope(Envelope{
		Event:   event,
		Payload: raw,
	})
}
