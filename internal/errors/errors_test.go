package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeServiceUnavail, http.StatusServiceUnavailable},
		{CodeUpstream, http.StatusBadGateway},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeConfig, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := getStatusCode(tt.code); got != tt.want {
				t.Errorf("getStatusCode(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := UpstreamWrap(cause, "warehouse unavailable")

	if err.Code != CodeUpstream {
		t.Errorf("expected code %s, got %s", CodeUpstream, err.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match the cause via errors.Is")
	}

	var appErr *AppError
	if !stderrors.As(error(err), &appErr) {
		t.Error("errors.As should find *AppError")
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, slog.Default(), Validation("bad filter"), "req-123")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, resp.Error.Code)
	}
	if resp.Error.RequestID != "req-123" {
		t.Errorf("expected request id propagated, got %q", resp.Error.RequestID)
	}
}

func TestWriteErrorWrapsUnknown(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, slog.Default(), fmt.Errorf("plain error"), "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("unknown errors should map to 500, got %d", w.Code)
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]int{"count": 3})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var resp SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}
