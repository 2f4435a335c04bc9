package resources

import (
	"context"

	"github.com/npillmayer/facetype/core/font/typeface"
)

type typefacePlusErr struct {
	typeface *typeface.Typeface
	err      error
}

// TypefacePromise is the result of an asynchronous load of a typeface.
// It may be awaited any number of times, from any goroutine.
type TypefacePromise interface {
	Typeface() (*typeface.Typeface, error)                 // wait for the typeface
	Await(ctx context.Context) (*typeface.Typeface, error) // wait, unless ctx is done first
}

type typefaceLoader struct {
	await func(ctx context.Context) (*typeface.Typeface, error)
}

func (loader typefaceLoader) Typeface() (*typeface.Typeface, error) {
	return loader.await(context.Background())
}

func (loader typefaceLoader) Await(ctx context.Context) (*typeface.Typeface, error) {
	return loader.await(ctx)
}

// ResolveTypeface loads a typeface from a source on a separate goroutine.
// ctx governs the load itself; the context given to Await only limits
// waiting for it.
func ResolveTypeface(ctx context.Context, src Source, name string) TypefacePromise {
	done := make(chan struct{})
	result := &typefacePlusErr{}
	go func() {
		result.typeface, result.err = src.Load(ctx, name)
		close(done)
	}()
	return typefaceLoader{
		await: func(ctx context.Context) (*typeface.Typeface, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-done:
				return result.typeface, result.err
			}
		},
	}
}
