package net

import (
	"context"
	"net/http"
	"testing"

	perr "callcrm/internal/platform/errors"
)

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if UserID(ctx) != "" || RequestID(ctx) != "" {
		t.Fatalf("empty context should carry no ids")
	}
	ctx = WithRequestID(ctx, "req-7")
	ctx = WithUser(ctx, "5f0c")
	if RequestID(ctx) != "req-7" || UserID(ctx) != "5f0c" {
		t.Fatalf("ids = %q %q", RequestID(ctx), UserID(ctx))
	}
	if WithUser(ctx, "") != ctx {
		t.Fatalf("empty user should leave ctx untouched")
	}
}

func TestEnvelopes(t *testing.T) {
	status, w := OK(map[string]int{"calls": 3}, "r1")
	if status != http.StatusOK || w.Status != "OK" || w.RequestID != "r1" || w.Data == nil {
		t.Fatalf("OK = %d %+v", status, w)
	}

	status, w = Error(perr.WithField(perr.Validationf("bad outcome"), "outcome"), "r2")
	if status != http.StatusBadRequest || w.Code != perr.ErrorCodeValidation || w.Field != "outcome" {
		t.Fatalf("Error = %d %+v", status, w)
	}
	if status, _ := Error(nil, ""); status != http.StatusOK {
		t.Fatalf("nil error status = %d", status)
	}
}
