package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrappedError(t *testing.T) {
	base := NotFound("thing %d missing", 7)
	wrapped := fmt.Errorf("loading: %w", base)

	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected KindNotFound through wrapping, got %v", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Fatalf("IsKind failed on wrapped error")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected KindUnknown for foreign error")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{InvalidTransition("no"), http.StatusConflict},
		{NegativeStock("no"), http.StatusConflict},
		{InsufficientAvailable("no"), http.StatusConflict},
		{OverRelease("no"), http.StatusConflict},
		{Duplicate("no"), http.StatusConflict},
		{StateConflict("no"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("%v: expected %d, got %d", c.err, c.want, got)
		}
	}
}
