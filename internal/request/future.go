package request

import (
	"context"
	"fmt"

	"github.com/loykin/apifetch/pkg/endpoint"
)

// Outcome is the single result of one call: a value or an error, never both.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Get returns the value and error pair.
func (o Outcome[T]) Get() (T, error) { return o.Value, o.Err }

// Kind returns the failure kind, or 0 on success.
func (o Outcome[T]) Kind() Kind { return KindOf(o.Err) }

// Future is an asynchronously computed Outcome. It is resolved exactly once
// by the function passed to newFuture; there is no other way to resolve it.
// A panic in that function resolves the future with a KindDecode error.
type Future[T any] struct {
	done chan struct{}
	out  Outcome[T]
}

func newFuture[T any](produce func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v, err = zero, &Error{Kind: KindDecode, Op: "future", Err: fmt.Errorf("panic: %v", r)}
			}
			if err != nil {
				var zero T
				v = zero
			}
			f.out = Outcome[T]{Value: v, Err: err}
			close(f.done)
		}()
		v, err = produce()
	}()
	return f
}

// Go starts FetchObject in a new goroutine.
func Go[T any](ctx context.Context, c *Client, d endpoint.Descriptor, decode Decoder[T]) *Future[T] {
	return newFuture(func() (T, error) { return FetchObject(ctx, c, d, decode) })
}

// GoBytes starts FetchBytes in a new goroutine.
func GoBytes(ctx context.Context, c *Client, d endpoint.Descriptor) *Future[[]byte] {
	return newFuture(func() ([]byte, error) { return FetchBytes(ctx, c, d) })
}

// Done is closed once the outcome is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the outcome is available or ctx ends. Giving up on the
// wait yields KindCancelled for this caller only; the call itself is governed
// by the context it was started with.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.out.Get()
	case <-ctx.Done():
		var zero T
		return zero, &Error{Kind: KindCancelled, Op: "await", Err: ctx.Err()}
	}
}

// Outcome returns the outcome without blocking; ok is false while pending.
func (f *Future[T]) Outcome() (Outcome[T], bool) {
	select {
	case <-f.done:
		return f.out, true
	default:
		return Outcome[T]{}, false
	}
}

// Then invokes fn exactly once, on its own goroutine, when the outcome is ready.
func (f *Future[T]) Then(fn func(Outcome[T])) {
	go func() {
		<-f.done
		fn(f.out)
	}()
}
