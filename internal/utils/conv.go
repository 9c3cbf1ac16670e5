package utils

import (
	"strconv"
)

// StringToUint converts a path/query parameter to a uint id, returning
// 0 on any parse failure.
func StringToUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
