package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAscComparator(t *testing.T) {
	testcases := []struct {
		name string
		i, j int
		want int64
	}{
		{"less", 1, 2, -1},
		{"equal", 7, 7, 0},
		{"greater", 9, -3, 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.want, AscComparator[int](tc.i, tc.j))
			require.Equal(tt, -tc.want, DescComparator[int](tc.i, tc.j))
		})
	}
}

func TestStringComparator(t *testing.T) {
	require.Equal(t, int64(-1), AscComparator[string]("abc", "abd"))
	require.Equal(t, int64(1), AscComparator[string]("b", "abc"))
	require.Equal(t, int64(0), DescComparator[string]("", ""))
	require.Equal(t, int64(1), DescComparator[string]("a", "b"))
}

func TestFloatComparator_NaN(t *testing.T) {
	nan := math.NaN()
	require.Equal(t, int64(1), AscComparator[float64](nan, 1.0))
	require.Equal(t, int64(1), AscComparator[float64](1.0, nan))
	// Not even equal to itself.
	require.Equal(t, int64(1), AscComparator[float64](nan, nan))
	require.Equal(t, int64(-1), AscComparator[float64](-0.5, 0.5))
}
