package errors

import (
	"context"
	stderrs "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repos care about
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
	pgLockNotAvailable    = "55P03"
	pgCannotConnectNow    = "57P03"
	pgAdminShutdown       = "57P01"
)

// PgError returns the Postgres error at the root of err
func PgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func isState(err error, code string) bool {
	pe, ok := PgError(err)
	return ok && pe.Code == code
}

// IsDuplicateKey reports a unique violation, either raw from pgx or already
// mapped to ErrorCodeDuplicateKey
func IsDuplicateKey(err error) bool {
	return isState(err, pgUniqueViolation) || IsCode(err, ErrorCodeDuplicateKey)
}

// IsNoRows reports pgx.ErrNoRows anywhere in the chain
func IsNoRows(err error) bool { return stderrs.Is(err, pgx.ErrNoRows) }

// codeForPg classifies a Postgres error
func codeForPg(pe *pgconn.PgError) ErrorCode {
	switch pe.Code {
	case pgUniqueViolation:
		return ErrorCodeDuplicateKey
	case pgForeignKeyViolation, pgInvalidText:
		return ErrorCodeInvalidArgument
	case pgNotNullViolation, pgCheckViolation:
		return ErrorCodeValidation
	case pgCannotConnectNow, pgAdminShutdown:
		return ErrorCodeUnavailable
	default:
		return ErrorCodeDB
	}
}

// FromPostgres wraps a driver error with a mapped code. pgx.ErrNoRows becomes
// NotFound. The column or constraint name, when present, is kept as the field.
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsNoRows(err) {
		return Wrap(err, ErrorCodeNotFound, msg)
	}
	pe, ok := PgError(err)
	if !ok {
		return Wrap(err, ErrorCodeDB, msg)
	}
	e := &Error{code: codeForPg(pe), msg: msg, orig: err}
	switch {
	case pe.ColumnName != "":
		e.field = pe.ColumnName
	case pe.ConstraintName != "":
		e.field = pe.ConstraintName
	}
	return e
}

// Retryable reports contention or shutdown errors a later attempt may clear.
// Context cancellation is never retryable.
func Retryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	pe, ok := PgError(err)
	if !ok {
		return IsCode(err, ErrorCodeUnavailable)
	}
	switch pe.Code {
	case pgSerialization, pgDeadlock, pgLockNotAvailable, pgCannotConnectNow, pgAdminShutdown:
		return true
	}
	return false
}
