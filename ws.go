package stakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// DefaultLiveWSURL is the GraphQL subscription endpoint.
const DefaultLiveWSURL = "wss://stake.com/_api/websockets"

// graphql-transport-ws frame types.
const (
	wsMsgConnectionInit = "connection_init"
	wsMsgConnectionAck  = "connection_ack"
	wsMsgSubscribe      = "subscribe"
	wsMsgNext           = "next"
	wsMsgError          = "error"
	wsMsgComplete       = "complete"
	wsMsgPing           = "ping"
	wsMsgPong           = "pong"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsClient struct {
	url  string
	conn *websocket.Conn
}

func newWSClient(url string) *wsClient {
	if strings.TrimSpace(url) == "" {
		url = DefaultLiveWSURL
	}
	return &wsClient{url: url}
}

func (c *wsClient) connect(ctx context.Context, accessToken string) error {
	header := http.Header{}
	if accessToken != "" {
		header.Set("X-Access-Token", accessToken)
	}
	conn, _, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		Subprotocols: []string{"graphql-transport-ws"},
		HTTPHeader:   header,
	})
	if err != nil {
		return err
	}
	// Live odds batches can be large; raise read limit above default.
	conn.SetReadLimit(2 << 20) // 2MB
	c.conn = conn

	init := map[string]any{"type": wsMsgConnectionInit}
	if accessToken != "" {
		init["payload"] = map[string]any{"accessToken": accessToken}
	}
	if err := c.write(ctx, init); err != nil {
		c.close(websocket.StatusInternalError, "init failed")
		return err
	}
	msg, err := c.read(ctx)
	if err != nil {
		c.close(websocket.StatusInternalError, "ack read failed")
		return err
	}
	if msg.Type != wsMsgConnectionAck {
		c.close(websocket.StatusProtocolError, "no ack")
		return fmt.Errorf("expected connection_ack, got %q", msg.Type)
	}
	return nil
}

func (c *wsClient) close(status websocket.StatusCode, reason string) error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close(status, reason)
}

func (c *wsClient) subscribe(ctx context.Context, id, query string, variables map[string]any) error {
	if c.conn == nil {
		return fmt.Errorf("ws not connected")
	}
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}
	return c.write(ctx, map[string]any{
		"id":      id,
		"type":    wsMsgSubscribe,
		"payload": payload,
	})
}

func (c *wsClient) write(ctx context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, raw)
}

func (c *wsClient) read(ctx context.Context) (wsMessage, error) {
	if c.conn == nil {
		return wsMessage{}, fmt.Errorf("ws not connected")
	}
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return wsMessage{}, err
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return wsMessage{}, err
	}
	return msg, nil
}

// LiveStreamOptions configures a LiveStream. Query is the GraphQL
// subscription document; zero durations fall back to defaults.
type LiveStreamOptions struct {
	URL               string
	Query             string
	Variables         map[string]any
	Auth              *AuthManager
	HeartbeatInterval time.Duration
	PingTimeout       time.Duration
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	Logger            *zap.Logger
}

// LiveStream maintains a GraphQL subscription over a websocket,
// reconnecting with exponential backoff and jitter when the connection
// drops. It delivers each update's data payload to the callback; it
// never retries the underlying domain operation.
type LiveStream struct {
	opts      LiveStreamOptions
	nextSubID int
	seenFirst bool
}

func NewLiveStream(opts LiveStreamOptions) (*LiveStream, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, &ValidationError{Model: "LiveStream", Field: "query", Reason: "subscription query is required"}
	}
	if opts.URL == "" {
		opts.URL = DefaultLiveWSURL
	}
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = 20 * time.Second
	}
	if opts.PingTimeout == 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.BackoffMin == 0 {
		opts.BackoffMin = 1 * time.Second
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	return &LiveStream{opts: opts}, nil
}

// Run blocks until ctx is cancelled, delivering subscription updates
// to onUpdate. The raw frame payload is passed alongside the decoded
// data map.
func (s *LiveStream) Run(ctx context.Context, onUpdate func(data map[string]any, raw []byte)) error {
	backoff := s.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		client := newWSClient(s.opts.URL)
		token := ""
		if s.opts.Auth != nil {
			token = s.opts.Auth.Headers()["X-Access-Token"]
		}
		if err := client.connect(ctx, token); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("live ws connect failed", zap.Error(err))
			}
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if s.opts.Logger != nil {
			s.opts.Logger.Info("live ws connected")
		}
		s.nextSubID++
		subID := strconv.Itoa(s.nextSubID)
		if err := client.subscribe(ctx, subID, s.opts.Query, s.opts.Variables); err != nil {
			if s.opts.Logger != nil {
				s.opts.Logger.Warn("live ws subscribe failed", zap.Error(err))
			}
			_ = client.close(websocket.StatusInternalError, "subscribe failed")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		backoff = s.opts.BackoffMin

		err := s.consume(ctx, client, subID, onUpdate)
		_ = client.close(websocket.StatusNormalClosure, "reconnect")
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, s.opts.BackoffMax)
	}
}

func (s *LiveStream) consume(ctx context.Context, client *wsClient, subID string, onUpdate func(map[string]any, []byte)) error {
	heartbeatErr := make(chan error, 1)
	heartbeatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(s.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatCtx.Done():
				heartbeatErr <- heartbeatCtx.Err()
				return
			case <-ticker.C:
				pingCtx, cancelPing := context.WithTimeout(heartbeatCtx, s.opts.PingTimeout)
				err := client.conn.Ping(pingCtx)
				cancelPing()
				if err != nil {
					heartbeatErr <- err
					return
				}
			}
		}
	}()

	for {
		select {
		case err := <-heartbeatErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		default:
		}
		msg, err := client.read(ctx)
		if err != nil {
			if s.opts.Logger != nil && !errors.Is(err, context.Canceled) {
				s.opts.Logger.Warn("live ws read failed", zap.Error(err))
			}
			return err
		}
		switch msg.Type {
		case wsMsgPing:
			_ = client.write(ctx, map[string]any{"type": wsMsgPong})
		case wsMsgNext:
			if msg.ID != subID {
				continue
			}
			var envelope struct {
				Data map[string]any `json:"data"`
			}
			_ = json.Unmarshal(msg.Payload, &envelope)
			if s.opts.Logger != nil && !s.seenFirst {
				s.seenFirst = true
				s.opts.Logger.Info("live ws first update")
			}
			if onUpdate != nil {
				onUpdate(envelope.Data, msg.Payload)
			}
		case wsMsgError:
			messages := graphQLWSErrors(msg.Payload)
			return &GraphQLError{Messages: messages}
		case wsMsgComplete:
			if msg.ID == subID {
				return nil
			}
		}
	}
}

func graphQLWSErrors(payload json.RawMessage) []string {
	var list []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &list); err != nil || len(list) == 0 {
		return []string{"subscription failed"}
	}
	messages := make([]string, 0, len(list))
	for _, item := range list {
		if item.Message == "" {
			item.Message = "Unknown error"
		}
		messages = append(messages, item.Message)
	}
	return messages
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
