package repokit

// Binder binds a repo to a Queryer: the pool for plain calls, a transaction
// inside WithTx
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a function to a Binder; service tests use it to hand out
// in-memory repos
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds q and panics when it is nil
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
