// Package order provides comparison functions for avltriee engines and
// queries.
//
// Every comparison follows the cmp.Compare convention: negative when a sorts
// before b, zero when they are equal, positive otherwise.
package order

import (
	"bytes"
	"cmp"
)

// Bytes orders byte slices lexicographically.
func Bytes(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Reverse inverts an ordering.
func Reverse[T any](c func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		return c(b, a)
	}
}

// Field orders values by one extracted key. Values with equal keys compare
// equal even when the rest of the value differs.
func Field[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Then chains orderings: later ones only break ties left by earlier ones.
func Then[T any](cmps ...func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}
