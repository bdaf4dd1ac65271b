package rpc

import (
	"net/http"

	"nftmarket/core/errors"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeNotFound       = -32004
	codeConflict       = -32009
	codeTiming         = -32010
	codeRateLimited    = -32020
)

// errorFor maps a market error onto an HTTP status and JSON-RPC error. Errors
// without a kind are reported as opaque server errors.
func errorFor(err error) (int, *RPCError) {
	if rpcErr, ok := err.(*RPCError); ok {
		return http.StatusBadRequest, rpcErr
	}
	kind := errors.Name(err)
	data := map[string]string{"kind": kind}
	switch errors.KindOf(err) {
	case errors.ErrValidation:
		return http.StatusBadRequest, &RPCError{Code: codeInvalidParams, Message: err.Error(), Data: data}
	case errors.ErrUnauthorized:
		return http.StatusForbidden, &RPCError{Code: codeUnauthorized, Message: err.Error(), Data: data}
	case errors.ErrNotFound:
		return http.StatusNotFound, &RPCError{Code: codeNotFound, Message: err.Error(), Data: data}
	case errors.ErrConflict:
		return http.StatusConflict, &RPCError{Code: codeConflict, Message: err.Error(), Data: data}
	case errors.ErrTiming:
		return http.StatusConflict, &RPCError{Code: codeTiming, Message: err.Error(), Data: data}
	default:
		return http.StatusInternalServerError, &RPCError{Code: codeServerError, Message: "internal error", Data: data}
	}
}

func invalidParams(message string) *RPCError {
	return &RPCError{Code: codeInvalidParams, Message: message}
}
