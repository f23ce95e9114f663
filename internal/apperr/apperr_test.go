package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	err := fmt.Errorf("create sale: %w", NotFound("Product not found"))
	if got := KindOf(err); got != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", got)
	}
	if err.Error() != "create sale: Product not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindOfDefaultsToServer(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindServer {
		t.Fatalf("expected KindServer, got %v", got)
	}
	if Is(nil, KindServer) {
		t.Fatalf("nil error must not match any kind")
	}
}

func TestKindStatusAndLabel(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
		label  string
	}{
		{KindValidation, http.StatusBadRequest, "Validation Error"},
		{KindUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{KindForbidden, http.StatusForbidden, "Forbidden"},
		{KindNotFound, http.StatusNotFound, "Not Found"},
		{KindConflict, http.StatusConflict, "Conflict"},
		{KindUpstream, http.StatusBadGateway, "Bad Gateway"},
		{KindServer, http.StatusInternalServerError, "Server Error"},
	}
	for _, tc := range cases {
		if tc.kind.Status() != tc.status {
			t.Fatalf("kind %v: expected status %d, got %d", tc.kind, tc.status, tc.kind.Status())
		}
		if tc.kind.Label() != tc.label {
			t.Fatalf("kind %v: expected label %q, got %q", tc.kind, tc.label, tc.kind.Label())
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindUpstream, "forecast service unavailable", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Error() != "forecast service unavailable" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
