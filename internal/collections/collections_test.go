// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collections

import (
	"cmp"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSlice(t *testing.T) {
	result := MapSlice([]int{1, 2, 3}, func(i int) string { return fmt.Sprint(i) })
	assert.Equal(t, []string{"1", "2", "3"}, result)
}

func TestFilterSlice(t *testing.T) {
	result := FilterSlice([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	assert.Equal(t, []int{2, 4}, result)
}

func TestTrimSlice(t *testing.T) {
	isZero := func(x int) bool { return x == 0 }
	testCases := []struct {
		input         []int
		expected      []int
		expectedRight []int
	}{
		{input: nil, expected: nil, expectedRight: nil},
		{input: []int{0, 0}, expected: []int{}, expectedRight: []int{}},
		{input: []int{1, 2}, expected: []int{1, 2}, expectedRight: []int{1, 2}},
		{input: []int{0, 1, 0, 2, 0, 0}, expected: []int{1, 0, 2}, expectedRight: []int{0, 1, 0, 2}},
	}

	for _, tc := range testCases {
		assert.Equal(t, len(tc.expected), len(TrimSlice(tc.input, isZero)), "input: %v", tc.input)
		if len(tc.expected) > 0 {
			assert.Equal(t, tc.expected, TrimSlice(tc.input, isZero), "input: %v", tc.input)
		}
		assert.Equal(t, len(tc.expectedRight), len(TrimSliceRight(tc.input, isZero)), "input: %v", tc.input)
		if len(tc.expectedRight) > 0 {
			assert.Equal(t, tc.expectedRight, TrimSliceRight(tc.input, isZero), "input: %v", tc.input)
		}
	}
}

func TestSet(t *testing.T) {
	set := SetOf("b", "a")
	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("c"))

	set.Add("c").Remove("a")
	assert.False(t, set.Contains("a"))
	assert.Equal(t, []string{"b", "c"}, set.SortedValues(cmp.Compare[string]))

	// removing an absent element is harmless
	set.Remove("missing")
	assert.Len(t, set, 2)
}

func TestStack(t *testing.T) {
	var stack Stack[int]
	assert.True(t, stack.Empty())

	stack.Push(1)
	stack.Push(2)
	assert.Equal(t, 2, stack.Len())
	assert.Equal(t, 2, stack.Peek())
	assert.Equal(t, 2, stack.Pop())
	assert.Equal(t, 1, stack.Pop())
	assert.True(t, stack.Empty())

	assert.Panics(t, func() { stack.Pop() })
}

func ExampleTrimSlice() {
	result := TrimSlice([]int{0, 0, 1, 0, 2, 0}, func(x int) bool { return x == 0 })
	fmt.Println(result)
	// Output: [1 0 2]
}
