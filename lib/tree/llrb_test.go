package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xllrb/lib/infra"
)

type checkData struct {
	color Color
	key   int
}

func requireColors[V any](t *testing.T, tree LLRBTree[int, V], expected []checkData) {
	t.Helper()
	count := int64(0)
	tree.Foreach(func(idx int64, color Color, key int, val V) bool {
		require.Less(t, idx, int64(len(expected)))
		require.Equal(t, expected[idx].color, color, "key %d", key)
		require.Equal(t, expected[idx].key, key)
		count++
		return true
	})
	require.Equal(t, int64(len(expected)), count)
	require.NoError(t, Check[int, V](tree))
}

func requireViolation(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		v, ok := infra.AsContractViolation(recover())
		require.True(t, ok, "expected a contract violation")
		require.ErrorIs(t, v, target)
	}()
	fn()
}

func TestNilNode(t *testing.T) {
	tree := NewLLRBTree[int, int]()
	require.Nil(t, tree.Root())
	require.True(t, tree.Root() == nil)

	tree.Insert(1, 1)
	require.NotNil(t, tree.Root())
	require.True(t, tree.Root().Left() == nil)
	require.True(t, tree.Root().Right() == nil)
	require.Equal(t, int64(1), tree.Root().Size())
}

func TestLLRBTree_InsertAndDeleteColors(t *testing.T) {
	tree := NewLLRBTree[int, string]()

	tree.Insert(5, "5")
	requireColors[string](t, tree, []checkData{{Black, 5}})

	tree.Insert(3, "3")
	requireColors[string](t, tree, []checkData{{Red, 3}, {Black, 5}})

	tree.Insert(8, "8")
	requireColors[string](t, tree, []checkData{{Black, 3}, {Black, 5}, {Black, 8}})

	tree.Insert(1, "1")
	requireColors[string](t, tree, []checkData{{Red, 1}, {Black, 3}, {Black, 5}, {Black, 8}})

	tree.Insert(4, "4")
	requireColors[string](t, tree, []checkData{
		{Black, 1}, {Red, 3}, {Black, 4}, {Black, 5}, {Black, 8},
	})

	tree.Insert(7, "7")
	requireColors[string](t, tree, []checkData{
		{Black, 1}, {Red, 3}, {Black, 4}, {Black, 5}, {Red, 7}, {Black, 8},
	})

	tree.Insert(9, "9")
	requireColors[string](t, tree, []checkData{
		{Black, 1}, {Black, 3}, {Black, 4}, {Black, 5}, {Black, 7}, {Black, 8}, {Black, 9},
	})
	require.Equal(t, 5, tree.Root().Key())

	// remove

	require.True(t, tree.Delete(5))
	requireColors[string](t, tree, []checkData{
		{Black, 1}, {Red, 3}, {Black, 4}, {Black, 7}, {Red, 8}, {Black, 9},
	})
	require.Equal(t, 7, tree.Root().Key())
	val, ok := tree.Get(7)
	require.True(t, ok)
	require.Equal(t, "7", val)
}

func TestLLRBTree_OrderStatisticsScenario(t *testing.T) {
	tree := NewLLRBTree[int, int]()
	for _, key := range []int{5, 3, 8, 1, 4, 7, 9} {
		tree.Insert(key, key*10)
	}

	require.Equal(t, 1, tree.Min())
	require.Equal(t, 9, tree.Max())
	require.Equal(t, int64(4), tree.Rank(7))
	require.Equal(t, 1, tree.Select(0))
	require.Equal(t, []int{1, 3, 4, 5, 7, 8, 9}, slices.Collect(tree.Keys()))

	require.True(t, tree.Delete(5))
	require.False(t, tree.Contains(5))
	require.Equal(t, int64(6), tree.Len())
	keys := slices.Collect(tree.Keys())
	require.True(t, slices.IsSorted(keys))
	require.Equal(t, []int{1, 3, 4, 7, 8, 9}, keys)
	require.NoError(t, Check[int, int](tree))
}

func TestLLRBTree_EmptyTree(t *testing.T) {
	tree := NewLLRBTree[int, string]()
	require.True(t, tree.IsEmpty())
	require.Equal(t, int64(0), tree.Len())
	require.NoError(t, Check[int, string](tree))

	requireViolation(t, ErrEmptyTree, func() { tree.Min() })
	requireViolation(t, ErrEmptyTree, func() { tree.Max() })
	requireViolation(t, ErrEmptyTree, func() { tree.Floor(1) })
	requireViolation(t, ErrEmptyTree, func() { tree.Ceiling(1) })
	requireViolation(t, ErrRankOutOfRange, func() { tree.Select(0) })

	require.False(t, tree.Delete(1))
	require.False(t, tree.DeleteMin())
	require.False(t, tree.DeleteMax())
	require.Empty(t, slices.Collect(tree.Keys()))
	require.Empty(t, slices.Collect(tree.KeysInRange(0, 10)))
	require.Equal(t, int64(0), tree.Rank(10))
	require.Equal(t, int64(0), tree.SizeInRange(0, 10))
	_, ok := tree.Get(1)
	require.False(t, ok)

	tree.Insert(1, "a")
	require.False(t, tree.IsEmpty())
	val, ok := tree.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", val)
}

func TestLLRBTree_Upsert(t *testing.T) {
	tree := NewLLRBTree[string, int]()
	tree.Insert("k", 1)
	tree.Insert("k", 2)
	require.Equal(t, int64(1), tree.Len())
	val, ok := tree.Get("k")
	require.True(t, ok)
	require.Equal(t, 2, val)
	require.NoError(t, Check[string, int](tree))
}

func TestLLRBTree_DeleteAbsentKeyIsNoop(t *testing.T) {
	tree := NewLLRBTree[int, int]()
	for i := 0; i < 64; i += 2 {
		tree.Insert(i, i)
	}

	snapshot := func() []checkData {
		res := make([]checkData, 0, tree.Len())
		tree.Foreach(func(idx int64, color Color, key int, val int) bool {
			res = append(res, checkData{color: color, key: key})
			return true
		})
		return res
	}
	before := snapshot()
	rootKey := tree.Root().Key()

	for _, key := range []int{-1, 1, 33, 63, 100} {
		require.False(t, tree.Delete(key))
	}
	require.Equal(t, before, snapshot())
	require.Equal(t, rootKey, tree.Root().Key())
	require.Equal(t, int64(32), tree.Len())
}

func TestLLRBTree_FloorAndCeiling(t *testing.T) {
	tree := NewLLRBTree[int, struct{}]()
	for _, key := range []int{10, 20, 30, 40, 50} {
		tree.Insert(key, struct{}{})
	}

	testcases := []struct {
		key     int
		floor   int
		floorOk bool
		ceil    int
		ceilOk  bool
	}{
		{5, 0, false, 10, true},
		{10, 10, true, 10, true},
		{15, 10, true, 20, true},
		{30, 30, true, 30, true},
		{49, 40, true, 50, true},
		{50, 50, true, 50, true},
		{55, 50, true, 0, false},
	}
	for _, tc := range testcases {
		floor, ok := tree.FloorOk(tc.key)
		require.Equal(t, tc.floorOk, ok, "floor of %d", tc.key)
		require.Equal(t, tc.floor, floor)
		ceil, ok := tree.CeilingOk(tc.key)
		require.Equal(t, tc.ceilOk, ok, "ceiling of %d", tc.key)
		require.Equal(t, tc.ceil, ceil)
		if tc.floorOk {
			require.Equal(t, tc.floor, tree.Floor(tc.key))
		}
		if tc.ceilOk {
			require.Equal(t, tc.ceil, tree.Ceiling(tc.key))
		}
	}
	requireViolation(t, ErrNoSuchKey, func() { tree.Floor(5) })
	requireViolation(t, ErrNoSuchKey, func() { tree.Ceiling(55) })
}

func TestLLRBTree_SelectAndRank(t *testing.T) {
	tree := NewLLRBTree[int, int]()
	for i := 0; i < 100; i++ {
		tree.Insert(i*3, i)
	}
	for i := int64(0); i < tree.Len(); i++ {
		key, val := tree.SelectVal(i)
		require.Equal(t, int(i)*3, key)
		require.Equal(t, int(i), val)
		require.Equal(t, i, tree.Rank(key))
	}
	// Rank of absent keys counts the smaller ones.
	require.Equal(t, int64(0), tree.Rank(-5))
	require.Equal(t, int64(1), tree.Rank(1))
	require.Equal(t, int64(34), tree.Rank(100))
	require.Equal(t, int64(100), tree.Rank(1000))

	requireViolation(t, ErrRankOutOfRange, func() { tree.Select(-1) })
	requireViolation(t, ErrRankOutOfRange, func() { tree.Select(100) })
	requireViolation(t, ErrRankOutOfRange, func() { tree.SelectVal(100) })
}

func TestLLRBTree_Ranges(t *testing.T) {
	tree := NewLLRBTree[int, string]()
	for i := 1; i <= 20; i++ {
		tree.Insert(i*5, "")
	}

	require.Equal(t, []int{10, 15, 20}, slices.Collect(tree.KeysInRange(7, 22)))
	require.Equal(t, []int{5}, slices.Collect(tree.KeysInRange(0, 5)))
	require.Equal(t, []int{100}, slices.Collect(tree.KeysInRange(100, 200)))
	require.Empty(t, slices.Collect(tree.KeysInRange(22, 7)))
	require.Empty(t, slices.Collect(tree.KeysInRange(101, 200)))

	require.Equal(t, int64(3), tree.SizeInRange(7, 22))
	require.Equal(t, int64(3), tree.SizeInRange(10, 20))
	require.Equal(t, int64(0), tree.SizeInRange(22, 7))
	require.Equal(t, int64(20), tree.SizeInRange(0, 1000))

	// Early break and restart.
	seq := tree.Keys()
	first := make([]int, 0, 3)
	for key := range seq {
		first = append(first, key)
		if len(first) == 3 {
			break
		}
	}
	require.Equal(t, []int{5, 10, 15}, first)
	require.Len(t, slices.Collect(seq), 20)

	pairs := make(map[int]string)
	for k, v := range tree.Range(50, 60) {
		pairs[k] = v
	}
	require.ElementsMatch(t, []int{50, 55, 60}, lo.Keys(pairs))
	count := 0
	for range tree.All() {
		count++
	}
	require.Equal(t, 20, count)
}

func TestLLRBTree_Desc(t *testing.T) {
	tree := NewLLRBTree[int, int](WithLLRBTreeDesc[int, int]())
	for _, key := range []int{5, 3, 8, 1, 4, 7, 9} {
		tree.Insert(key, key)
	}
	require.NoError(t, Check[int, int](tree))
	require.Equal(t, []int{9, 8, 7, 5, 4, 3, 1}, slices.Collect(tree.Keys()))
	require.Equal(t, 9, tree.Min())
	require.Equal(t, 1, tree.Max())
	require.Equal(t, 9, tree.Select(0))
	require.Equal(t, int64(2), tree.Rank(7))
	// Floor and Ceiling follow the descending order too.
	require.Equal(t, 7, tree.Floor(6))
	require.Equal(t, 5, tree.Ceiling(6))
	require.Equal(t, []int{7, 5, 4}, slices.Collect(tree.KeysInRange(7, 4)))

	require.True(t, tree.DeleteMin())
	require.False(t, tree.Contains(9))
	require.True(t, tree.DeleteMax())
	require.False(t, tree.Contains(1))
	require.NoError(t, Check[int, int](tree))
}

func TestLLRBTree_DeleteMinAndMax(t *testing.T) {
	tree := NewLLRBTree[int, int]()
	for i := 0; i < 200; i++ {
		tree.Insert(i, i)
	}
	for i := 0; i < 100; i++ {
		require.Equal(t, i, tree.Min())
		require.True(t, tree.DeleteMin())
		require.NoError(t, Check[int, int](tree))

		require.Equal(t, 199-i, tree.Max())
		require.True(t, tree.DeleteMax())
		require.NoError(t, Check[int, int](tree))
	}
	require.True(t, tree.IsEmpty())
	require.False(t, tree.DeleteMin())
}

func llrbRandomInsertAndDeleteRunCore(t *testing.T, total int) {
	tree := NewLLRBTree[int, int]()
	expected := make(map[int]int, total)

	keys := randv2.Perm(total * 4)[:total]
	for _, key := range keys {
		val := randv2.IntN(1000)
		tree.Insert(key, val)
		expected[key] = val
		require.NoError(t, Check[int, int](tree))
	}
	require.Equal(t, int64(len(expected)), tree.Len())

	sorted := lo.Keys(expected)
	slices.Sort(sorted)
	require.Equal(t, sorted, slices.Collect(tree.Keys()))

	randv2.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	for i, key := range keys {
		if i%2 == 0 {
			continue
		}
		before := tree.Len()
		require.True(t, tree.Delete(key))
		delete(expected, key)
		require.False(t, tree.Contains(key))
		require.Equal(t, before-1, tree.Len())
		require.NoError(t, Check[int, int](tree))
	}

	for key, val := range expected {
		got, ok := tree.Get(key)
		require.True(t, ok)
		require.Equal(t, val, got)
	}
	sorted = lo.Keys(expected)
	slices.Sort(sorted)
	require.Equal(t, sorted, slices.Collect(tree.Keys()))

	tree.Release()
	require.True(t, tree.IsEmpty())
	require.NoError(t, Check[int, int](tree))
}

func TestLLRBTree_RandomInsertAndDelete(t *testing.T) {
	testcases := []struct {
		name  string
		total int
	}{
		{"tiny", 8},
		{"small", 64},
		{"medium", 512},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			llrbRandomInsertAndDeleteRunCore(tt, tc.total)
		})
	}
}

func TestLLRBTree_SequentialInsertAndDelete(t *testing.T) {
	tree := NewLLRBTree[uint64, uint64]()
	total := uint64(1000)
	for i := uint64(0); i < total; i++ {
		tree.Insert(i, i)
	}
	require.NoError(t, Check[uint64, uint64](tree))
	tree.Foreach(func(idx int64, color Color, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := uint64(0); i < total; i += 3 {
		require.True(t, tree.Delete(i))
	}
	require.NoError(t, Check[uint64, uint64](tree))
	require.Equal(t, int64(total-(total+2)/3), tree.Len())

	for i := total; i > 0; i-- {
		tree.Delete(i - 1)
	}
	require.True(t, tree.IsEmpty())
}
