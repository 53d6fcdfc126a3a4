package grpc

import (
	"errors"
	"testing"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code     mdwerror.Code
		expected codes.Code
	}{
		{mdwerror.CodeNotFound, codes.NotFound},
		{mdwerror.CodeSyntax, codes.InvalidArgument},
		{mdwerror.CodeInvalidInput, codes.InvalidArgument},
		{mdwerror.CodeTimeout, codes.DeadlineExceeded},
		{mdwerror.CodeWallCollision, codes.FailedPrecondition},
		{mdwerror.CodeServiceUnavailable, codes.Unavailable},
		{mdwerror.CodeInternal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := StatusCode(tt.code); got != tt.expected {
				t.Errorf("StatusCode(%s) = %v, want %v", tt.code, got, tt.expected)
			}
		})
	}
}

func TestToStatus_RoundTrip(t *testing.T) {
	original := mdwerror.New("unexpected token").
		WithCode(mdwerror.CodeSyntax).
		WithDetail("line", 3).
		WithDetail("column", 7)

	converted := ToStatus(original)
	st, ok := status.FromError(converted)
	if !ok {
		t.Fatalf("Expected status error, got %T", converted)
	}
	if st.Code() != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument, got %v", st.Code())
	}

	back := FromStatus(converted)
	if !mdwerror.HasCode(back, mdwerror.CodeSyntax) {
		t.Fatalf("Expected syntax code, got %s", mdwerror.GetCode(back))
	}
	var mdwErr *mdwerror.Error
	if !errors.As(back, &mdwErr) {
		t.Fatalf("Expected *mdwerror.Error, got %T", back)
	}
	if line, _ := mdwErr.Detail("line"); line != 3 {
		t.Errorf("Expected line 3, got %v", line)
	}
	if col, _ := mdwErr.Detail("column"); col != 7 {
		t.Errorf("Expected column 7, got %v", col)
	}
}

func TestToStatus_PlainErrors(t *testing.T) {
	if ToStatus(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	st, _ := status.FromError(ToStatus(errors.New("boom")))
	if st.Code() != codes.Internal {
		t.Errorf("Expected Internal, got %v", st.Code())
	}

	already := status.Error(codes.NotFound, "gone")
	if ToStatus(already) != already {
		t.Error("Expected status errors to pass through")
	}
}

func TestFromStatus_WithoutDetails(t *testing.T) {
	err := FromStatus(status.Error(codes.Unavailable, "down"))
	if !mdwerror.HasCode(err, mdwerror.CodeServiceUnavailable) {
		t.Errorf("Expected service unavailable, got %s", mdwerror.GetCode(err))
	}

	err = FromStatus(status.Error(codes.NotFound, "missing"))
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Expected not found, got %s", mdwerror.GetCode(err))
	}
}
