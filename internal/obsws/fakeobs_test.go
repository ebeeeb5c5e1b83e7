package obsws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// fakeOBS is an in-process obs-websocket server. It performs the handshake
// and then hands every request it receives to the test through requests.
type fakeOBS struct {
	t         *testing.T
	password  string
	salt      string
	challenge string

	server   *httptest.Server
	requests chan request
	identify chan identify

	mu   sync.Mutex
	conn *websocket.Conn
}

func newFakeOBS(t *testing.T, password string) *fakeOBS {
	t.Helper()
	f := &fakeOBS{
		t:         t,
		password:  password,
		salt:      "lM1GncleQOaCu9lT1yeUZhFYnqhsLLP1G5lAGo3ixaI=",
		challenge: "+IxH4CnCiqpX1rM9scsNynZzbOe4KhDeYcTNS3PDaeY=",
		requests:  make(chan request, 32),
		identify:  make(chan identify, 1),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOBS) address() string {
	return strings.TrimPrefix(f.server.URL, "http://")
}

func (f *fakeOBS) serve(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{Subprotocols: []string{Subprotocol}}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h := hello{OBSWebSocketVersion: "5.0.0", RPCVersion: RPCVersion}
	if f.password != "" {
		h.Authentication = &struct {
			Challenge string `json:"challenge"`
			Salt      string `json:"salt"`
		}{Challenge: f.challenge, Salt: f.salt}
	}
	f.write(conn, OpHello, h)

	var msg message
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return
	}
	var id identify
	_ = json.Unmarshal(msg.Data, &id)
	f.identify <- id

	if f.password != "" && id.Authentication != authString(f.password, f.salt, f.challenge) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseAuthenticationFailed, "Authentication failed."),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	f.write(conn, OpIdentified, identified{NegotiatedRPCVersion: RPCVersion})

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Op != OpRequest {
			continue
		}
		var req request
		if err := json.Unmarshal(msg.Data, &req); err == nil {
			f.requests <- req
		}
	}
}

func (f *fakeOBS) write(conn *websocket.Conn, op OpCode, v any) {
	data, err := json.Marshal(v)
	require.NoError(f.t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = conn.WriteJSON(message{Op: op, Data: data})
}

func (f *fakeOBS) current() *websocket.Conn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn
}

// nextRequest waits for the next request the client sent.
func (f *fakeOBS) nextRequest() request {
	f.t.Helper()
	select {
	case req := <-f.requests:
		return req
	case <-time.After(2 * time.Second):
		f.t.Fatal("timed out waiting for request")
		return request{}
	}
}

func (f *fakeOBS) respond(req request, data any) {
	f.respondStatus(req, requestStatus{Result: true, Code: StatusSuccess}, data)
}

func (f *fakeOBS) respondStatus(req request, status requestStatus, data any) {
	resp := requestResponse{
		RequestType:   req.RequestType,
		RequestID:     req.RequestID,
		RequestStatus: status,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(f.t, err)
		resp.ResponseData = raw
	}
	f.write(f.current(), OpRequestResponse, resp)
}

func (f *fakeOBS) emit(eventType string, data any) {
	raw, err := json.Marshal(data)
	require.NoError(f.t, err)
	f.write(f.current(), OpEvent, event{EventType: eventType, EventData: raw})
}

func (f *fakeOBS) drop() {
	f.current().Close()
}
