// Package grpcerr maps gateway errors to gRPC statuses.
package grpcerr

import (
	"context"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Reyansh-Niranjan/CogniSecure/internal/gateway"
)

// BlockedTrailer is the trailer key carrying the gateway's blocked flag on a failed call.
const BlockedTrailer = "x-cognisecure-blocked"

// Code returns the gRPC code for a gateway error kind.
func Code(kind gateway.Kind) codes.Code {
	switch kind {
	case gateway.KindInvalidArgument:
		return codes.InvalidArgument
	case gateway.KindUnauthenticated:
		return codes.Unauthenticated
	case gateway.KindPermissionDenied:
		return codes.PermissionDenied
	case gateway.KindRateLimited:
		return codes.ResourceExhausted
	case gateway.KindNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}

// FromError converts err into a gRPC status error and sets the blocked trailer. Errors that are not
// *gateway.Error become a bare Internal status.
func FromError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	gerr, ok := gateway.AsError(err)
	if !ok {
		return status.Error(codes.Internal, "internal error")
	}
	// SetTrailer fails outside a server stream (e.g. handler unit tests); the status is still returned.
	_ = grpc.SetTrailer(ctx, metadata.Pairs(BlockedTrailer, strconv.FormatBool(gerr.Blocked)))
	return status.Error(Code(gerr.Kind), gerr.Message)
}
