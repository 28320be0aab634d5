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

// Stack is a LIFO container. The zero value is an empty stack ready to use.
type Stack[T any] struct {
	elems []T
}

// Push places elem on top of the stack.
func (s *Stack[T]) Push(elem T) {
	s.elems = append(s.elems, elem)
}

// Pop removes and returns the top element. Panics if the stack is empty.
func (s *Stack[T]) Pop() T {
	top := s.Peek()
	var zero T
	s.elems[len(s.elems)-1] = zero
	s.elems = s.elems[:len(s.elems)-1]
	return top
}

// Peek returns the top element without removing it. Panics if the stack is
// empty.
func (s *Stack[T]) Peek() T {
	if len(s.elems) == 0 {
		panic("collections: Peek on empty Stack")
	}
	return s.elems[len(s.elems)-1]
}

// Len returns the number of elements on the stack.
func (s *Stack[T]) Len() int {
	return len(s.elems)
}

// Empty reports whether the stack has no elements.
func (s *Stack[T]) Empty() bool {
	return len(s.elems) == 0
}
