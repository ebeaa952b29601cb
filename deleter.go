package ownership

import (
	"io"

	"go.uber.org/zap"
)

// Deleter releases a resource. It is invoked at most once per acquired
// resource, when the last owning handle lets go of it.
type Deleter[R any] func(R)

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}

// ScalarDeleter returns the default deleter of scalar handles.
func ScalarDeleter[T any]() Deleter[*T] {
	return dropScalar[T]
}

// SliceDeleter returns the default deleter of slice handles. Elements are
// released in index order.
func SliceDeleter[T any]() Deleter[[]T] {
	return dropSlice[T]
}

func dropScalar[T any](p *T) {
	releaseValue(p)
}

func dropSlice[T any](s []T) {
	for i := range s {
		releaseValue(&s[i])
	}
}

func releaseValue(v any) {
	switch r := v.(type) {
	case Dropper:
		r.Drop()
	case io.Closer:
		if err := r.Close(); err != nil {
			Logger().Warn("close resource", zap.Error(err))
		}
	}
}
