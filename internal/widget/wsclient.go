package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"propertybot/internal/models"
)

// WSClient speaks the chat protocol over a single websocket connection to
// <baseURL>/api/chat/ws. Sends are serialised on the connection; a failed
// exchange drops the connection so the next Send dials again.
type WSClient struct {
	endpoint string
	dialer   *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn

	afterExchange func() // test hook
}

// NewWSClient accepts an http(s) or ws(s) base URL.
func NewWSClient(baseURL string) (*WSClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	u.Path += "/api/chat/ws"

	return &WSClient{
		endpoint: u.String(),
		dialer:   websocket.DefaultDialer,
	}, nil
}

func (c *WSClient) Send(ctx context.Context, message string) (*models.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("websocket dial failed: %w", err)
		}
		c.conn = conn
	}

	// Unblock the read below when the caller gives up.
	conn := c.conn
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})

	resp, err := c.exchange(message)
	if c.afterExchange != nil {
		c.afterExchange()
	}
	if !stop() {
		// ctx ended after the exchange started; conn is closed or about
		// to be, even when the reply arrived.
		c.conn = nil
	}
	if err != nil {
		conn.Close()
		c.conn = nil
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return resp, nil
}

func (c *WSClient) exchange(message string) (*models.ChatResponse, error) {
	if err := c.conn.WriteJSON(models.ChatRequest{Message: message}); err != nil {
		return nil, fmt.Errorf("websocket write failed: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("websocket read failed: %w", err)
	}

	var frame struct {
		models.ChatResponse
		Error *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("failed to decode chat frame: %w", err)
	}
	if frame.Error != nil {
		return nil, errors.New(frame.Error.Message)
	}
	return &frame.ChatResponse, nil
}

// Close releases the underlying connection, if any.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
