package util

import "github.com/kr/pretty"

// PrettyExpose is implemented by values that dump a reduced view of themselves.
type PrettyExpose interface {
	PrettyExpose() interface{}
}

func Pretty(e interface{}) string {
	return pretty.Sprint(expose(e))
}

func expose(v interface{}) interface{} {
	switch v := v.(type) {
	case PrettyExpose:
		return v.PrettyExpose()
	default:
		return v
	}
}

// PrettySlice dumps every element through its exposed view.
func PrettySlice[T PrettyExpose](vs []T) string {
	exposed := make([]interface{}, 0, len(vs))
	for _, v := range vs {
		exposed = append(exposed, v.PrettyExpose())
	}
	return pretty.Sprint(exposed)
}
