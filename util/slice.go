package util

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

func StringSliceJoinWith(slice []string, s string) string {
	return fmt.Sprintf("[%s]", strings.Join(slice, s))
}

func Sum[T constraints.Integer | constraints.Float](vs ...T) T {
	var s T
	for _, v := range vs {
		s += v
	}
	return s
}

// Max is the zero value for no values.
func Max[T constraints.Ordered](vs ...T) T {
	var max T
	for i, v := range vs {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}
