package util

import "time"

func makeDurationInt64Slice(vs ...time.Duration) []int64 {
	res := make([]int64, len(vs))
	for idx, v := range vs {
		res[idx] = int64(v)
	}
	return res
}

func AvgDuration(vs ...time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	return time.Duration(Sum(makeDurationInt64Slice(vs...)...) / int64(len(vs)))
}

// MaxDuration is zero for no durations.
func MaxDuration(vs ...time.Duration) time.Duration {
	return time.Duration(Max(makeDurationInt64Slice(vs...)...))
}
