package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

// handleError maps service errors to gRPC statuses. The status message is
// the notice the administrator sees.
func handleError(err error) error {
	notice := service.NoticeFor(err).Message

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "invalid email or password")
	case errors.Is(err, service.ErrForbidden):
		return status.Error(codes.PermissionDenied, "administrator role required")
	case errors.Is(err, model.ErrValidationRejected):
		return status.Error(codes.InvalidArgument, notice)
	case errors.Is(err, model.ErrPartialSuccess):
		return status.Error(codes.Aborted, notice)
	case errors.Is(err, model.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, notice)
	case errors.Is(err, model.ErrRemoteReadFailed):
		return status.Error(codes.Unavailable, notice)
	case errors.Is(err, model.ErrRemoteWriteFailed):
		return status.Error(codes.Internal, notice)
	case errors.Is(err, model.ErrNotFound):
		var opErr *service.OperationError
		if errors.As(err, &opErr) {
			return status.Error(codes.NotFound, notice)
		}
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func invalidRequest(err error) error {
	return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
}
