package text

import (
	"context"
	"sync"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/sync/errgroup"
)

// Pixel sizes of the two faces in a FontSet.
const (
	BodySize  = 32
	SmallSize = 16
)

// FontSet holds the faces used to lay out one image: Body for the header
// labels and message lines, Small for the timestamp.
type FontSet struct {
	Body  *Face
	Small *Face
}

// LoadFontSet parses data once and builds both faces concurrently.
func LoadFontSet(ctx context.Context, data []byte, opts ...FaceOption) (*FontSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := NewFontSource(data)
	if err != nil {
		return nil, err
	}

	var set FontSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := source.Face(BodySize, opts...)
		if err != nil {
			return err
		}
		set.Body = f
		return gctx.Err()
	})
	g.Go(func() error {
		f, err := source.Face(SmallSize, opts...)
		if err != nil {
			return err
		}
		set.Small = f
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &set, nil
}

var defaultFontSet = sync.OnceValues(func() (*FontSet, error) {
	return LoadFontSet(context.Background(), gomono.TTF)
})

// DefaultFontSet returns the process-wide Go Mono font set.
// It is loaded on first use and shared read-only afterwards.
func DefaultFontSet() (*FontSet, error) {
	return defaultFontSet()
}
