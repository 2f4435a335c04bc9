package fontregistry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/npillmayer/facetype/core/locate/resources"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFont = `{
  "familyName": "Test Sans",
  "ascender": 800,
  "descender": -200,
  "glyphs": {
    "?": { "ha": 500, "o": "m 0 0 l 0 700 l 500 700 l 500 0 z" },
    "l": { "ha": 200, "o": "m 0 0 l 0 700 l 100 700 l 100 0 z" }
  }
}`

// countingSource delivers the test font for "Test Sans" only, after a
// delay, and counts its loads.
type countingSource struct {
	loads int32
	delay time.Duration
}

func (src *countingSource) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	atomic.AddInt32(&src.loads, 1)
	time.Sleep(src.delay)
	if font.NormalizeFontname(name) != "test_sans" {
		return nil, resources.NotFound(name)
	}
	return typeface.Decode(strings.NewReader(testFont))
}

func TestTypeCaseIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	src := &countingSource{}
	fr := NewRegistry(src, nil)
	ctx := context.Background()
	tc1, err := fr.TypeCase(ctx, "Test Sans", 0.01)
	require.NoError(t, err)
	tc2, err := fr.TypeCase(ctx, "test_sans", 0.01)
	require.NoError(t, err)
	assert.Same(t, tc1, tc2)
	assert.Equal(t, "Test Sans", tc2.Name(), "typecase should carry the family name, not the requested one")
	tc3, err := fr.TypeCase(ctx, "Test Sans", 0.02)
	require.NoError(t, err)
	assert.NotSame(t, tc1, tc3)
	assert.Same(t, tc1.ScalableFontParent(), tc3.ScalableFontParent())
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.loads))
	fonts, typecases := fr.DebugList()
	assert.Equal(t, []string{"test_sans"}, fonts)
	assert.Equal(t, []string{"test_sans-0.01", "test_sans-0.02"}, typecases)
	fr.LogFontList()
}

func TestConcurrentLoadsCoalesce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	src := &countingSource{delay: 50 * time.Millisecond}
	fr := NewRegistry(src, nil)
	const n = 16
	results := make([]*font.TypeCase, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc, err := fr.TypeCase(context.Background(), "Test Sans", 0.5)
			assert.NoError(t, err)
			results[i] = tc
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.loads), "expected a single load for concurrent requests")
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLoadFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	src := &countingSource{}
	fr := NewRegistry(src, nil)
	_, err := fr.TypeCase(context.Background(), "Unknown Font", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.True(t, errors.Is(err, resources.ErrNotFound))
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = fr.TypeCase(context.Background(), "Unknown Font", 1)
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.loads), "failures must not be cached")
	_, err = fr.TypeCase(context.Background(), "  ", 1)
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = NewRegistry(nil, nil).TypeCase(context.Background(), "Test Sans", 1)
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestStoreFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	src := &countingSource{}
	fr := NewRegistry(src, nil)
	fr.StoreFont("Go Sans", font.FallbackFont())
	fr.StoreFont("Go Sans", &font.ScalableFont{Fontname: "other", Typeface: &typeface.Typeface{}})
	tc, err := fr.TypeCase(context.Background(), "go sans", 0.01)
	require.NoError(t, err)
	assert.Same(t, font.FallbackFont(), tc.ScalableFontParent(), "stored font must not be overridden")
	assert.Equal(t, int32(0), atomic.LoadInt32(&src.loads))
	g, err := tc.Glyph("A")
	require.NoError(t, err)
	assert.NotEmpty(t, g.Geometry)
}

func TestResolveTypeCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	src := &countingSource{delay: 20 * time.Millisecond}
	fr := NewRegistry(src, nil)
	p1 := fr.ResolveTypeCase(context.Background(), "Test Sans", 1)
	p2 := fr.ResolveTypeCase(context.Background(), "Test Sans", 1)
	tc1, err := p1.TypeCase()
	require.NoError(t, err)
	tc2, err := p2.Await(context.Background())
	require.NoError(t, err)
	assert.Same(t, tc1, tc2)
	g, err := tc1.Glyph("l")
	require.NoError(t, err)
	assert.Equal(t, 200.0, g.Advance)
	//
	slow := NewRegistry(&countingSource{delay: 2 * time.Second}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.ResolveTypeCase(context.Background(), "Test Sans", 1).Await(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGlobalRegistry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "facetype.fonts")
	defer teardown()
	//
	fr := GlobalRegistry()
	assert.Same(t, fr, GlobalRegistry())
	tc, err := fr.TypeCase(context.Background(), "Some Font", 0.01)
	require.NoError(t, err, "global registry should substitute the fallback font")
	assert.Equal(t, "Go Sans", tc.Name(), "typecase should carry the family name of the fallback font")
	_, err = tc.Glyph("x")
	assert.NoError(t, err)
}
