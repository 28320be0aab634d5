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

// Package collections provides small generic helpers for working with slices
// of tokens and other values: mapping, filtering, trimming, a Set type for
// membership testing and a Stack used to model nested scopes.
package collections

import (
	"iter"
	"slices"
)

// MapSeq applies the provided transformation function `fn` to each element of
// the input sequence `seq` and returns a new sequence of the resulting values.
func MapSeq[T, V any](seq iter.Seq[T], fn func(T) V) iter.Seq[V] {
	return func(yield func(V) bool) {
		for t := range seq {
			if !yield(fn(t)) {
				return
			}
		}
	}
}

// MapSlice applies the provided transformation function `fn` to each element of
// the input slice `s` and returns a new slice of the resulting values.
//
// Example:
//
//	MapSlice([]int{1, 2, 3}, func(x int) string { return fmt.Sprint(x) })
//	=> []string{"1", "2", "3"}
func MapSlice[TSlice ~[]T, T, V any](s TSlice, fn func(T) V) []V {
	return slices.AppendSeq(make([]V, 0, len(s)), MapSeq(slices.Values(s), fn))
}

// FilterSeq returns a new sequence containing only the elements of `seq` for
// which the `predicate` function returns true.
func FilterSeq[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for elem := range seq {
			if predicate(elem) && !yield(elem) {
				return
			}
		}
	}
}

// FilterSlice returns a new slice containing only the elements of `s` for which
// the `predicate` function returns true.
//
// Example:
//
//	FilterSlice([]int{1, 2, 3, 4}, func(x int) bool { return x%2 == 0 })
//	=> []int{2, 4}
func FilterSlice[TSlice ~[]T, T any](s TSlice, predicate func(T) bool) TSlice {
	return slices.AppendSeq(make(TSlice, 0, len(s)), FilterSeq(slices.Values(s), predicate))
}

// TrimSlice returns the subslice of `s` without the leading and trailing
// elements for which `predicate` returns true. The result shares the backing
// array of `s`.
//
// Example:
//
//	TrimSlice([]int{0, 0, 1, 0, 2, 0}, func(x int) bool { return x == 0 })
//	=> []int{1, 0, 2}
func TrimSlice[TSlice ~[]T, T any](s TSlice, predicate func(T) bool) TSlice {
	begin := 0
	for begin < len(s) && predicate(s[begin]) {
		begin++
	}
	end := len(s)
	for end > begin && predicate(s[end-1]) {
		end--
	}
	return s[begin:end]
}

// TrimSliceRight is like TrimSlice but only removes trailing elements.
func TrimSliceRight[TSlice ~[]T, T any](s TSlice, predicate func(T) bool) TSlice {
	end := len(s)
	for end > 0 && predicate(s[end-1]) {
		end--
	}
	return s[:end]
}
