package heapalgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hoard/internal/order"
)

func TestSortAscending(t *testing.T) {
	in := []int{5, 3, 8, 1, 10}

	out := Sort(in, true)

	assert.Equal(t, []int{1, 3, 5, 8, 10}, out)
	assert.Equal(t, []int{5, 3, 8, 1, 10}, in, "input must not be mutated")
}

func TestSortDescending(t *testing.T) {
	out := Sort([]int{5, 3, 8, 1, 10}, false)
	assert.Equal(t, []int{10, 8, 5, 3, 1}, out)
}

func TestSortEmpty(t *testing.T) {
	out := Sort([]int{}, true)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSortSingle(t *testing.T) {
	assert.Equal(t, []int{7}, Sort([]int{7}, true))
	assert.Equal(t, []int{7}, Sort([]int{7}, false))
}

func TestSortWithDuplicates(t *testing.T) {
	out := Sort([]int{3, 1, 3, 2, 1}, true)
	assert.Equal(t, []int{1, 1, 2, 3, 3}, out)
}

func TestSortStrings(t *testing.T) {
	out := Sort([]string{"pear", "apple", "fig"}, true)
	assert.Equal(t, []string{"apple", "fig", "pear"}, out)
}

func TestSortFuncComparatorIndependence(t *testing.T) {
	type employee struct {
		Age    int
		Salary int
	}
	staff := []employee{
		{Age: 25, Salary: 100000},
		{Age: 35, Salary: 50000},
		{Age: 30, Salary: 150000},
	}

	// Same data, two policies: the comparator alone decides the order.
	byAge := SortFunc(staff, order.MinBy(func(e employee) int { return e.Age }))
	require.Len(t, byAge, 3)
	assert.Equal(t, []int{25, 30, 35}, []int{byAge[0].Age, byAge[1].Age, byAge[2].Age})

	bySalary := SortFunc(staff, order.MaxBy(func(e employee) int { return e.Salary }))
	require.Len(t, bySalary, 3)
	assert.Equal(t, []int{150000, 100000, 50000},
		[]int{bySalary[0].Salary, bySalary[1].Salary, bySalary[2].Salary})

	// Input untouched by either sort.
	assert.Equal(t, 25, staff[0].Age)
	assert.Equal(t, 35, staff[1].Age)
}

func TestKLargest(t *testing.T) {
	out, err := KLargest([]int{5, 2, 8, 1, 9, 3, 7}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, out, "k largest in ascending order")
}

func TestKLargestRejectsNonPositiveK(t *testing.T) {
	for _, k := range []int{0, -1, -100} {
		_, err := KLargest([]int{1, 2, 3}, k)
		require.Error(t, err, "k=%d", k)
		assert.True(t, IsInvalidArgument(err))
	}
}

func TestKLargestKExceedsLength(t *testing.T) {
	out, err := KLargest([]int{3, 1, 2}, 10)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out, "k >= len returns everything sorted ascending")
}

func TestKLargestKEqualsLength(t *testing.T) {
	out, err := KLargest([]int{3, 1, 2}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestKLargestEmptyInput(t *testing.T) {
	out, err := KLargest([]int{}, 5)

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestKLargestOne(t *testing.T) {
	out, err := KLargest([]int{4, 9, 2, 9, 1}, 1)

	require.NoError(t, err)
	assert.Equal(t, []int{9}, out)
}

func TestKLargestWithDuplicates(t *testing.T) {
	out, err := KLargest([]int{5, 5, 5, 1, 5}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{5, 5, 5}, out)
}

func TestKLargestEqualToFloorDoesNotEvict(t *testing.T) {
	// The floor after seeding {9, 8} is 8; a later 8 must not churn the
	// candidate set (strict exceedance only).
	out, err := KLargest([]int{9, 8, 8, 8, 8}, 2)

	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, out)
}

func TestKLargestInputNotMutated(t *testing.T) {
	in := []int{5, 2, 8, 1, 9}
	_, err := KLargest(in, 2)

	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 8, 1, 9}, in)
}

func TestKLargestFuncMatchesKLargest(t *testing.T) {
	out, err := KLargestFunc([]int{5, 2, 8, 1, 9, 3, 7}, 3, order.Max[int]())

	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, out)
}

func TestKLargestFuncByKey(t *testing.T) {
	type employee struct {
		Name string
		Age  int
	}
	staff := []employee{
		{Name: "ana", Age: 25},
		{Name: "bo", Age: 35},
		{Name: "cy", Age: 30},
		{Name: "dee", Age: 28},
	}

	out, err := KLargestFunc(staff, 2, order.MaxBy(func(e employee) int { return e.Age }))

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "cy", out[0].Name, "lowest of the selection first")
	assert.Equal(t, "bo", out[1].Name)
}

func TestKLargestFuncRejectsNonPositiveK(t *testing.T) {
	_, err := KLargestFunc([]int{1, 2}, 0, order.Max[int]())
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestKLargestFuncKExceedsLength(t *testing.T) {
	out, err := KLargestFunc([]int{3, 1, 2}, 5, order.Max[int]())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestKLargestFuncStrictExceedance(t *testing.T) {
	out, err := KLargestFunc([]int{9, 8, 8, 8}, 2, order.Max[int]())

	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, out)
}
