package mirror

import (
	"encoding/json"
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

// fakeRequester records requests; tests answer them explicitly, in any order.
type fakeRequester struct {
	t   *testing.T
	mu  sync.Mutex
	err error
	log []*sentRequest
}

func newFakeRequester(t *testing.T) *fakeRequester {
	return &fakeRequester{t: t}
}

func (f *fakeRequester) Send(requestType string, data any, callback obsws.ResponseFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.log = append(f.log, &sentRequest{requestType: requestType, data: data, callback: callback})
	return nil
}

func (f *fakeRequester) sent() []*sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*sentRequest, len(f.log))
	copy(out, f.log)
	return out
}

func (f *fakeRequester) ofType(requestType string) []*sentRequest {
	var out []*sentRequest
	for _, req := range f.sent() {
		if req.requestType == requestType {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakeRequester) respond(req *sentRequest, v any) {
	f.t.Helper()
	require.NotNil(f.t, req.callback, "%s was sent without a callback", req.requestType)
	data, err := json.Marshal(v)
	require.NoError(f.t, err)
	req.callback(data, nil)
}

func (f *fakeRequester) fail(req *sentRequest, code int) {
	f.t.Helper()
	require.NotNil(f.t, req.callback)
	req.callback(nil, &obsws.RequestError{RequestType: req.requestType, Code: code})
}

func event(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
