package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vasu1712/scenyx-remote/internal/obsws"
)

type sentRequest struct {
	requestType string
	data        any
	callback    obsws.ResponseFunc
}

// fakeTransport stands in for an obs-websocket connection. Tests answer
// requests and emit events explicitly.
type fakeTransport struct {
	t      *testing.T
	id     string
	onHook func() // Runs at the start of every On call when set

	mu       sync.Mutex
	sent     []*sentRequest
	handlers map[string]map[obsws.HandlerID]obsws.EventHandler
	nextID   obsws.HandlerID
	closed   bool

	done     chan struct{}
	doneOnce sync.Once
}

func newFakeTransport(t *testing.T, id string) *fakeTransport {
	return &fakeTransport{
		t:        t,
		id:       id,
		handlers: make(map[string]map[obsws.HandlerID]obsws.EventHandler),
		done:     make(chan struct{}),
	}
}

func (f *fakeTransport) Send(requestType string, data any, callback obsws.ResponseFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return obsws.ErrClosed
	}
	f.sent = append(f.sent, &sentRequest{requestType: requestType, data: data, callback: callback})
	return nil
}

func (f *fakeTransport) On(eventType string, handler obsws.EventHandler) obsws.HandlerID {
	if f.onHook != nil {
		f.onHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if f.handlers[eventType] == nil {
		f.handlers[eventType] = make(map[obsws.HandlerID]obsws.EventHandler)
	}
	f.handlers[eventType][f.nextID] = handler
	return f.nextID
}

func (f *fakeTransport) Off(eventType string, id obsws.HandlerID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[eventType][id]; !ok {
		return false
	}
	delete(f.handlers[eventType], id)
	return true
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.doneOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeTransport) Done() <-chan struct{} { return f.done }

func (f *fakeTransport) Err() error { return errors.New("remote closed the connection") }

func (f *fakeTransport) ID() string { return f.id }

// drop simulates the remote end going away.
func (f *fakeTransport) drop() {
	f.doneOnce.Do(func() { close(f.done) })
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) handlerCount(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[eventType])
}

func (f *fakeTransport) ofType(requestType string) []*sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*sentRequest
	for _, req := range f.sent {
		if req.requestType == requestType {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeTransport) respond(req *sentRequest, v any) {
	f.t.Helper()
	require.NotNil(f.t, req.callback, "%s was sent without a callback", req.requestType)
	data, err := json.Marshal(v)
	require.NoError(f.t, err)
	req.callback(data, nil)
}

func (f *fakeTransport) emit(eventType string, v any) {
	f.t.Helper()
	data, err := json.Marshal(v)
	require.NoError(f.t, err)

	f.mu.Lock()
	var handlers []obsws.EventHandler
	for _, h := range f.handlers[eventType] {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// fakeDialer hands out the queued transports in order, or errors.
type fakeDialer struct {
	mu      sync.Mutex
	results []dialResult
	calls   []dialCall
}

type dialResult struct {
	transport *fakeTransport
	err       error
}

type dialCall struct {
	address  string
	password string
}

func (d *fakeDialer) queue(tr *fakeTransport, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, dialResult{transport: tr, err: err})
}

func (d *fakeDialer) dial(_ context.Context, address, password string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dialCall{address: address, password: password})
	if len(d.results) == 0 {
		return nil, &obsws.ConnectError{Address: address, Reason: "unable to reach obs-websocket"}
	}
	res := d.results[0]
	d.results = d.results[1:]
	if res.err != nil {
		return nil, res.err
	}
	return res.transport, nil
}

func (d *fakeDialer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}
