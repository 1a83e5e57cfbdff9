package rpc

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the `validate` struct tags of a request
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("validation failed: %w", err))
	}
	return nil
}

// Unary builds a connect handler for fn. Requests are validated before fn runs and
// errors are mapped through codes.
func Unary[Req, Res any](procedure string, codes []CodeMapping, fn func(context.Context, *Req) (*Res, error), opts ...connect.HandlerOption) http.Handler {
	handlerOpts := append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	return connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
		if err := Validate(req.Msg); err != nil {
			return nil, err
		}
		res, err := fn(ctx, req.Msg)
		if err != nil {
			return nil, ToConnectError(procedure, err, codes)
		}
		return connect.NewResponse(res), nil
	}, handlerOpts...)
}
