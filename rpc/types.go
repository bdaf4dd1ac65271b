package rpc

import (
	"encoding/json"
	"net/http"
)

const jsonRPCVersion = "2.0"

// RPCRequest is a JSON-RPC 2.0 call. Methods take a single object as the
// first positional parameter.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id,omitempty"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is the error member of a response. Handlers may return one
// directly to choose the code.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// requestID echoes the caller's id verbatim; notifications get a null id.
func requestID(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, resp RPCResponse) {
	resp.JSONRPC = jsonRPCVersion
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, RPCResponse{ID: id, Error: &RPCError{Code: code, Message: message, Data: data}})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	writeJSON(w, http.StatusOK, RPCResponse{ID: id, Result: result})
}
