package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"settlement_backend/platform/apperr"
)

func TestBookingScanErr(t *testing.T) {
	if err := bookingScanErr(pgx.ErrNoRows); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing row should map to NotFound, got %v", err)
	}

	transient := errors.New("connection reset by peer")
	err := bookingScanErr(transient)
	if apperr.Is(err, apperr.KindNotFound) {
		t.Error("a transient failure must not map to NotFound")
	}
	if !errors.Is(err, transient) {
		t.Errorf("original error should be wrapped, got %v", err)
	}
}
