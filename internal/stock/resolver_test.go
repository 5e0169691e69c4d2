package stock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campuswear/uniform-orderflow/internal/cart"
)

type fakeSource struct {
	mu          sync.Mutex
	sizes       map[string][]SizeStock // keyed by ProductKey(product, level)
	err         error
	calls       int
	inFlight    int
	maxInFlight int
}

func (f *fakeSource) AvailableSizes(ctx context.Context, productName, educationLevel string) ([]SizeStock, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.err != nil {
		return nil, f.err
	}
	return f.sizes[ProductKey(productName, educationLevel)], nil
}

func newResolver(src Source) *Resolver {
	return NewResolver(src, zerolog.Nop())
}

func garmentLine(size string) cart.Line {
	return cart.Line{ProductName: "Jogging Pants", Size: size, EducationLevel: "College", Quantity: 1}
}

func TestClassify_ExactSizeMatchOnly(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Jogging Pants", "College"): {{Size: "XSmall", Stock: 5}},
	}}
	r := newResolver(src)

	// "Small" must not match "XSmall" by substring.
	c := r.Classify(context.Background(), garmentLine("Small"))
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonSizeNotFound, c.Reason)
}

func TestClassify_NormalizedSizeMatch(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Jogging Pants", "College"): {{Size: "Small (College)", Stock: 2}},
	}}
	r := newResolver(src)

	c := r.Classify(context.Background(), garmentLine("small"))
	require.True(t, c.Fulfillable)
	require.Equal(t, ReasonFoundInStock, c.Reason)
}

func TestClassify_ZeroStock(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Jogging Pants", "College"): {{Size: "Small", Stock: 0}},
	}}
	r := newResolver(src)

	c := r.Classify(context.Background(), garmentLine("Small"))
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonZeroStock, c.Reason)
}

func TestClassify_OtherSizeStockNeverLeaks(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Jogging Pants", "College"): {
			{Size: "Medium", Stock: 50},
			{Size: "Large", Stock: 10},
		},
	}}
	r := newResolver(src)

	c := r.Classify(context.Background(), garmentLine("Small"))
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonSizeNotFound, c.Reason)
}

func TestClassify_LookupFailureIsConservative(t *testing.T) {
	src := &fakeSource{err: errors.New("inventory timeout")}
	r := newResolver(src)

	c := r.Classify(context.Background(), garmentLine("Small"))
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonLookupFailed, c.Reason)
}

func TestClassify_AmbiguousEntries(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Jogging Pants", "College"): {
			{Size: "Small", Stock: 3},
			{Size: "Small (College)", Stock: 0},
		},
	}}
	r := newResolver(src)

	c := r.Classify(context.Background(), garmentLine("Small"))
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonLookupAmbiguous, c.Reason)
}

func TestClassify_SizelessDefaultsFulfillable(t *testing.T) {
	src := &fakeSource{} // no record at all
	r := newResolver(src)

	c := r.Classify(context.Background(), cart.Line{ProductName: "Logo Patch", Quantity: 1})
	require.True(t, c.Fulfillable)
	require.Equal(t, ReasonFoundInStock, c.Reason)
}

func TestClassify_SizelessExplicitOutOfStock(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Logo Patch", ""): {{Size: "", Stock: 0, Status: StatusOutOfStock}},
	}}
	r := newResolver(src)

	c := r.Classify(context.Background(), cart.Line{ProductName: "Logo Patch", Quantity: 1})
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonZeroStock, c.Reason)
}

func TestClassify_SizelessLookupFailureStillConservative(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	r := newResolver(src)

	c := r.Classify(context.Background(), cart.Line{ProductName: "Logo Patch", Quantity: 1})
	require.False(t, c.Fulfillable)
	require.Equal(t, ReasonLookupFailed, c.Reason)
}

func TestClassifyAll_IndexAlignedAndConcurrent(t *testing.T) {
	src := &fakeSource{sizes: map[string][]SizeStock{
		ProductKey("Jogging Pants", "College"): {{Size: "Small", Stock: 5}},
	}}
	r := newResolver(src)

	lines := []cart.Line{
		garmentLine("Small"),
		garmentLine("XXL"),
		{ProductName: "Logo Patch", Quantity: 1},
	}
	out := r.ClassifyAll(context.Background(), lines)

	require.Len(t, out, 3)
	require.True(t, out[0].Fulfillable)
	require.Equal(t, ReasonSizeNotFound, out[1].Reason)
	require.True(t, out[2].Fulfillable)
	require.Equal(t, lines[1].Size, out[1].Line.Size)
	require.Equal(t, 3, src.calls)
}

func TestNormalizeSize(t *testing.T) {
	require.Equal(t, "small", NormalizeSize("Small (College)"))
	require.Equal(t, "small", NormalizeSize("  SMALL "))
	require.Equal(t, "xsmall", NormalizeSize("XSmall"))
	require.NotEqual(t, NormalizeSize("Small"), NormalizeSize("XSmall"))
}
