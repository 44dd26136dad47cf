package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterValue_DoubleWeightsHarvested(t *testing.T) {
	assert.Equal(t, 1.0+2.0+3.0+4.0+2.0, FilterValue(1, 2, 3, 4))
	assert.Equal(t, 0.0, FilterValue(0, 0, 0, 0))
}

func TestQuartileBucket_Coffee(t *testing.T) {
	tests := []struct {
		name      string
		sum       float64
		want      int
		undefined bool
	}{
		{name: "just below first breakpoint", sum: 2678.74, want: 0},
		{name: "first breakpoint excluded", sum: 2678.75, undefined: true},
		{name: "inside first gap", sum: 2690, undefined: true},
		{name: "bucket 1 lower bound", sum: 2701.25, want: 1},
		{name: "bucket 1 upper bound", sum: 4614.50, want: 1},
		{name: "second gap", sum: 4620, undefined: true},
		{name: "bucket 2 lower bound", sum: 4628.50, want: 2},
		{name: "bucket 2 upper bound", sum: 8002, want: 2},
		{name: "third gap", sum: 8030, undefined: true},
		{name: "bucket 3 bound excluded", sum: 8061, undefined: true},
		{name: "bucket 3", sum: 8061.01, want: 3},
		{name: "negative sum", sum: -10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only hectare is non-zero, so the sum equals the input.
			got, err := QuartileBucket(CropCafe, tt.sum, 0, 0, 0)
			if tt.undefined {
				require.ErrorIs(t, err, ErrBucketUndefined)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuartileBucket_Maize(t *testing.T) {
	tests := []struct {
		name string
		sum  float64
		want int
	}{
		{name: "below first breakpoint", sum: 1000, want: 0},
		{name: "first breakpoint", sum: 1381, want: 0},
		{name: "between breakpoints falls through", sum: 1381.5, want: 3},
		{name: "bucket 1 lower bound", sum: 1382, want: 1},
		{name: "bucket 1 upper bound", sum: 2880, want: 1},
		{name: "between 2880 and 2881 falls through", sum: 2880.5, want: 3},
		{name: "bucket 2 lower bound", sum: 2881, want: 2},
		{name: "bucket 2 upper bound", sum: 5970, want: 2},
		{name: "catch-all", sum: 5971, want: 3},
		{name: "catch-all large", sum: 1e9, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuartileBucket(CropMaiz, tt.sum, 0, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuartileBucket_UsesWeightedSum(t *testing.T) {
	// 500 + 1000 + 200 + 100 + 1000 = 2800, bucket 1 for both tables.
	got, err := QuartileBucket(CropCafe, 500, 1000, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = QuartileBucket(CropMaiz, 500, 1000, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestQuartileBucket_Deterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		a, errA := QuartileBucket(CropCafe, 1234.5, 678.9, 1011.12, 13.14)
		b, errB := QuartileBucket(CropCafe, 1234.5, 678.9, 1011.12, 13.14)
		assert.Equal(t, a, b)
		assert.Equal(t, errA, errB)
	}
}

func TestQuartileBucket_UnknownCrop(t *testing.T) {
	_, err := QuartileBucket(CropCacao, 1, 1, 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBucketUndefined)
}

func TestRange_Contains(t *testing.T) {
	assert.True(t, Below(1).Contains(math.Inf(-1)))
	assert.False(t, Below(1).Contains(1))
	assert.True(t, AtMost(1).Contains(1))
	assert.True(t, Between(1, 2).Contains(1))
	assert.True(t, Between(1, 2).Contains(2))
	assert.True(t, From(1, 2).Contains(1))
	assert.False(t, From(1, 2).Contains(2))
	assert.False(t, Above(1).Contains(1))
	assert.True(t, AtLeast(1).Contains(1))
	assert.False(t, AtLeast(1).Contains(math.NaN()))
	assert.Equal(t, "[1, 2)", From(1, 2).String())
}
