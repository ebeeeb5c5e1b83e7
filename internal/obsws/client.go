package obsws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ResponseFunc receives the responseData of a request, or the error the
// request failed with. It runs on the client's read goroutine and must not
// block or call Close.
type ResponseFunc func(data json.RawMessage, err error)

// Options tunes Dial. The zero value is usable.
type Options struct {
	// EventSubscriptions is the event mask sent in Identify.
	// Zero means DefaultEventSubscriptions.
	EventSubscriptions uint32

	// Dialer overrides the websocket dialer.
	Dialer *websocket.Dialer
}

// Client is one identified obs-websocket connection.
//
// Responses and events are dispatched serially on a single read goroutine,
// in the order they arrive. Send may be called from any goroutine, including
// from inside a ResponseFunc or EventHandler.
type Client struct {
	id      string
	address string
	conn    *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]ResponseFunc
	nextID  uint64

	handlers *handlerRegistry

	// dispatchMu is held while a callback runs so Close can wait for it.
	dispatchMu sync.Mutex
	closed     atomic.Bool

	done      chan struct{}
	readErr   error
	closeOnce sync.Once
}

// Dial connects to obs-websocket at address ("host:port" or a ws:// URL)
// and completes the Hello/Identify handshake. Any failure is returned as a
// *ConnectError. ctx bounds the dial and the handshake only.
func Dial(ctx context.Context, address, password string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	subscriptions := opts.EventSubscriptions
	if subscriptions == 0 {
		subscriptions = DefaultEventSubscriptions
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if opts.Dialer != nil {
		dialer = *opts.Dialer
	}
	dialer.Subprotocols = []string{Subprotocol}

	url := address
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		url = "ws://" + url
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, &ConnectError{Address: address, Reason: "unable to reach obs-websocket", Err: err}
	}

	// Unblock the handshake reads if ctx ends first.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	err = handshake(conn, password, subscriptions)
	if !stop() {
		conn.Close()
		return nil, &ConnectError{Address: address, Reason: "handshake interrupted", Err: ctx.Err()}
	}
	if err != nil {
		conn.Close()
		var connectErr *ConnectError
		if errors.As(err, &connectErr) {
			connectErr.Address = address
			return nil, connectErr
		}
		return nil, &ConnectError{Address: address, Reason: "handshake failed", Err: err}
	}

	c := &Client{
		id:       uuid.NewString(),
		address:  address,
		conn:     conn,
		pending:  make(map[string]ResponseFunc),
		handlers: newHandlerRegistry(),
		done:     make(chan struct{}),
	}
	go c.readLoop()

	log.Info().Str("address", address).Str("connection_id", c.id).Msg("connected to obs-websocket")
	return c, nil
}

func handshake(conn *websocket.Conn, password string, subscriptions uint32) error {
	var h hello
	if err := readOp(conn, OpHello, &h); err != nil {
		return err
	}

	id := identify{
		RPCVersion:         RPCVersion,
		EventSubscriptions: subscriptions,
	}
	if h.Authentication != nil {
		id.Authentication = authString(password, h.Authentication.Salt, h.Authentication.Challenge)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(message{Op: OpIdentify, Data: data}); err != nil {
		return &ConnectError{Reason: "unable to send identify", Err: err}
	}

	var ack identified
	return readOp(conn, OpIdentified, &ack)
}

// readOp reads one frame, requires it to carry op and decodes its data into v.
func readOp(conn *websocket.Conn, op OpCode, v any) error {
	var msg message
	if err := conn.ReadJSON(&msg); err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return &ConnectError{Reason: closeReason(closeErr.Code, closeErr.Text), Err: err}
		}
		return &ConnectError{Reason: "connection lost during handshake", Err: err}
	}
	if msg.Op != op {
		return &ConnectError{Reason: fmt.Sprintf("unexpected op %d during handshake, want %d", msg.Op, op)}
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return &ConnectError{Reason: "malformed handshake message", Err: err}
	}
	return nil
}

// ID returns the uuid assigned to this connection.
func (c *Client) ID() string { return c.id }

// Address returns the address the client dialed.
func (c *Client) Address() string { return c.address }

// Send issues a request. If callback is non-nil it is invoked exactly once
// with the matching response, unless the client is closed first. A nil
// callback makes the request fire-and-forget: failures are only logged.
func (c *Client) Send(requestType string, data any, callback ResponseFunc) error {
	if c.closed.Load() {
		return ErrClosed
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	requestID := fmt.Sprintf("%s-%d", c.id, atomic.AddUint64(&c.nextID, 1))
	if callback != nil {
		c.mu.Lock()
		c.pending[requestID] = callback
		c.mu.Unlock()
	}

	payload, err := json.Marshal(request{
		RequestType: requestType,
		RequestID:   requestID,
		RequestData: data,
	})
	if err != nil {
		c.forget(requestID)
		return fmt.Errorf("obsws: encode %s: %w", requestType, err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteJSON(message{Op: OpRequest, Data: payload})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(requestID)
		return fmt.Errorf("obsws: send %s: %w", requestType, err)
	}

	log.Debug().Str("request_type", requestType).Str("request_id", requestID).Msg("request sent")
	return nil
}

func (c *Client) forget(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// On registers handler for eventType and returns the ID to pass to Off.
func (c *Client) On(eventType string, handler EventHandler) HandlerID {
	return c.handlers.add(eventType, handler)
}

// Off removes the handler registered under id. It reports whether one was found.
func (c *Client) Off(eventType string, id HandlerID) bool {
	return c.handlers.remove(eventType, id)
}

// Done is closed when the read loop exits, either because the remote end
// dropped the connection or because Close was called.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns the error that ended the read loop. Valid after Done is closed.
func (c *Client) Err() error {
	<-c.done
	return c.readErr
}

// Close tears the connection down. Pending callbacks and registered handlers
// are dropped; none is invoked after Close returns. Close is idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		// Wait for a callback that is already running.
		c.dispatchMu.Lock()
		c.dispatchMu.Unlock()

		c.mu.Lock()
		dropped := len(c.pending)
		c.pending = make(map[string]ResponseFunc)
		c.mu.Unlock()
		c.handlers.clear()

		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()

		log.Info().Str("connection_id", c.id).Int("dropped_requests", dropped).Msg("obs-websocket connection closed")
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.readErr = err
			if !c.closed.Load() {
				log.Warn().Err(err).Str("connection_id", c.id).Msg("obs-websocket connection lost")
			}
			return
		}

		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Err(err).Str("connection_id", c.id).Msg("skipping malformed frame")
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg message) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	if c.closed.Load() {
		return
	}

	switch msg.Op {
	case OpEvent:
		var ev event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Warn().Err(err).Msg("skipping malformed event")
			return
		}
		for _, entry := range c.handlers.lookup(ev.EventType) {
			entry.handler(ev.EventData)
		}

	case OpRequestResponse:
		var resp requestResponse
		if err := json.Unmarshal(msg.Data, &resp); err != nil {
			log.Warn().Err(err).Msg("skipping malformed request response")
			return
		}

		var reqErr error
		if !resp.RequestStatus.Result {
			reqErr = &RequestError{
				RequestType: resp.RequestType,
				Code:        resp.RequestStatus.Code,
				Comment:     resp.RequestStatus.Comment,
			}
		}

		c.mu.Lock()
		callback, ok := c.pending[resp.RequestID]
		delete(c.pending, resp.RequestID)
		c.mu.Unlock()

		if !ok {
			if reqErr != nil {
				log.Warn().Err(reqErr).Str("request_id", resp.RequestID).Msg("fire-and-forget request failed")
			}
			return
		}
		callback(resp.ResponseData, reqErr)

	default:
		log.Debug().Int("op", int(msg.Op)).Msg("ignoring frame")
	}
}
