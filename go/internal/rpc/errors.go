package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

// CodeMapping pairs a domain error kind with the connect code callers see
type CodeMapping struct {
	Err  error
	Code connect.Code
}

// Code maps err through codes. Unmapped errors are CodeUnknown.
func Code(err error, codes []CodeMapping) connect.Code {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code()
	}
	for _, entry := range codes {
		if errors.Is(err, entry.Err) {
			return entry.Code
		}
	}
	if errors.Is(err, context.Canceled) {
		return connect.CodeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return connect.CodeDeadlineExceeded
	}
	return connect.CodeUnknown
}

// ToConnectError wraps err with its connect code. Unmapped failures are logged and
// returned as CodeInternal without storage details.
func ToConnectError(procedure string, err error, codes []CodeMapping) error {
	code := Code(err, codes)
	if code == connect.CodeUnknown {
		log.Error().Err(err).Str("procedure", procedure).Msg("procedure failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(code, err)
}

var httpStatusByCode = map[connect.Code]int{
	connect.CodeInvalidArgument:    http.StatusBadRequest,
	connect.CodeUnauthenticated:    http.StatusUnauthorized,
	connect.CodePermissionDenied:   http.StatusForbidden,
	connect.CodeNotFound:           http.StatusNotFound,
	connect.CodeAlreadyExists:      http.StatusConflict,
	connect.CodeFailedPrecondition: http.StatusConflict,
	connect.CodeCanceled:           499,
	connect.CodeDeadlineExceeded:   http.StatusGatewayTimeout,
}

// WriteHTTPError is ToConnectError for plain HTTP routes such as file downloads.
func WriteHTTPError(w http.ResponseWriter, route string, err error, codes []CodeMapping) {
	connectErr := ToConnectError(route, err, codes).(*connect.Error)
	status, ok := httpStatusByCode[connectErr.Code()]
	if !ok {
		status = http.StatusInternalServerError
	}
	http.Error(w, connectErr.Message(), status)
}
