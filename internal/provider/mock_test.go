package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// rpcError makes the mock answer a method with a JSON-RPC error.
type rpcError struct {
	code int
	msg  string
}

// rpcMock is a JSON-RPC node whose answers can change while a test runs.
type rpcMock struct {
	mu        sync.Mutex
	responses map[string]interface{}
	calls     map[string]int
	params    map[string][]json.RawMessage // last params per method
}

func newRPCMock(t *testing.T, responses map[string]interface{}) (*rpcMock, *httptest.Server) {
	t.Helper()
	m := &rpcMock{
		responses: responses,
		calls:     map[string]int{},
		params:    map[string][]json.RawMessage{},
	}
	srv := httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(srv.Close)
	return m, srv
}

func (m *rpcMock) set(method string, result interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[method] = result
}

func (m *rpcMock) count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *rpcMock) lastParams(method string) []json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params[method]
}

func (m *rpcMock) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		ID     json.RawMessage   `json:"id"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.calls[req.Method]++
	m.params[req.Method] = req.Params
	result, ok := m.responses[req.Method]
	m.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case !ok:
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	default:
		if e, isErr := result.(rpcError); isErr {
			resp["error"] = map[string]interface{}{"code": e.code, "message": e.msg}
		} else {
			resp["result"] = result
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}
