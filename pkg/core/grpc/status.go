// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     grpc
// Description: Translation between mDW errors and gRPC status errors
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package grpc

import (
	"errors"
	"fmt"
	"strconv"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is the domain reported in ErrorInfo details
const ErrorDomain = "cellbot"

// positionDetails are copied into ErrorInfo metadata
var positionDetails = []string{"line", "column", "path", "field"}

// StatusCode maps an mDW error code to a gRPC code
func StatusCode(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeInvalidInput, mdwerror.CodeValidationFailed, mdwerror.CodeValueOutOfRange,
		mdwerror.CodeLexical, mdwerror.CodeSyntax, mdwerror.CodeSemantic:
		return codes.InvalidArgument
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeCancelled:
		return codes.Canceled
	case mdwerror.CodeRuntime, mdwerror.CodeWallCollision:
		return codes.FailedPrecondition
	case mdwerror.CodeServiceUnavailable, mdwerror.CodeConnectionFailed, mdwerror.CodeNetworkError:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error. Errors that already are
// status errors pass through unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var mdwErr *mdwerror.Error
	if !errors.As(err, &mdwErr) {
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(StatusCode(mdwErr.Code()), err.Error())

	metadata := make(map[string]string)
	for _, key := range positionDetails {
		if v, ok := mdwErr.Detail(key); ok {
			metadata[key] = fmt.Sprint(v)
		}
	}

	withInfo, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(mdwErr.Code()),
		Domain:   ErrorDomain,
		Metadata: metadata,
	})
	if detailErr != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// ErrorCode returns the mDW code carried by err. Status errors report the
// ErrorInfo reason set by ToStatus; other status errors have no code.
func ErrorCode(err error) mdwerror.Code {
	if err == nil {
		return ""
	}
	if st, ok := status.FromError(err); ok {
		for _, detail := range st.Details() {
			if info, ok := detail.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
				return mdwerror.Code(info.GetReason())
			}
		}
		return ""
	}
	return mdwerror.GetCode(err)
}

// FromStatus converts a gRPC status error back into an mDW error. The
// code and position details survive the round trip.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	code := mdwerror.CodeServiceUnavailable
	switch st.Code() {
	case codes.NotFound:
		code = mdwerror.CodeNotFound
	case codes.InvalidArgument:
		code = mdwerror.CodeInvalidInput
	case codes.DeadlineExceeded:
		code = mdwerror.CodeTimeout
	case codes.Internal, codes.Unknown:
		code = mdwerror.CodeInternal
	}

	result := mdwerror.New(st.Message()).WithOperation("grpc.call")
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		code = mdwerror.Code(info.GetReason())
		for k, v := range info.GetMetadata() {
			if n, err := strconv.Atoi(v); err == nil {
				result = result.WithDetail(k, n)
			} else {
				result = result.WithDetail(k, v)
			}
		}
	}

	return result.WithCode(code)
}
