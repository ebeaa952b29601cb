package ownership

import (
	"reflect"

	"github.com/wippyai/ownership/errors"
)

type options struct {
	deleter   any
	allocator CounterAllocator
}

// Option configures handle construction and reset.
type Option func(*options)

// WithDeleter replaces the shape's default deleter. The deleter's resource
// type must match the handle: Deleter[*T] for scalar handles, Deleter[[]T]
// for slice handles. A nil deleter disables release of the resource.
func WithDeleter[R any](d Deleter[R]) Option {
	return func(o *options) {
		o.deleter = d
	}
}

// WithAllocator sets the allocator that supplies the counter record of a new
// shared lineage. It has no effect on unique handles.
func WithAllocator(a CounterAllocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) counterAllocator() CounterAllocator {
	if o.allocator != nil {
		return o.allocator
	}
	return DefaultAllocator()
}

// deleterFor resolves the deleter for a handle of resource type R.
// Panics when the configured deleter accepts a different resource type.
func deleterFor[R any](o *options, kind string, def Deleter[R]) Deleter[R] {
	if o.deleter == nil {
		return def
	}
	d, ok := o.deleter.(Deleter[R])
	if !ok {
		panic(errors.ShapeMismatch(kind, reflect.TypeOf((*R)(nil)).Elem().String(), o.deleter))
	}
	return d
}
