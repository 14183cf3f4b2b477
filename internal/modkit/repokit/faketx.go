package repokit

import (
	"context"
	"sync"

	perr "callcrm/internal/platform/errors"
)

// FakeTx is an in-memory TxRunner for service tests. Repos in those tests
// come from a BindFunc over shared fakes, so the Queryer handed to fn is
// only a token. Tx calls are serialised to mimic a single connection.
type FakeTx struct {
	mu sync.Mutex

	// Calls counts Tx invocations
	Calls int

	// Fail, when set, is returned before fn runs
	Fail error
}

// Tx runs fn under the fake's lock
func (f *FakeTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Fail != nil {
		return f.Fail
	}
	return fn(f)
}

// Exec is unsupported on the fake
func (f *FakeTx) Exec(context.Context, string, ...any) (CommandTag, error) {
	return nil, perr.Internalf("fake tx: Exec not supported")
}

// Query is unsupported on the fake
func (f *FakeTx) Query(context.Context, string, ...any) (Rows, error) {
	return nil, perr.Internalf("fake tx: Query not supported")
}

// QueryRow is unsupported on the fake
func (f *FakeTx) QueryRow(context.Context, string, ...any) Row { return errRow{} }

type errRow struct{}

func (errRow) Scan(...any) error { return perr.Internalf("fake tx: QueryRow not supported") }
