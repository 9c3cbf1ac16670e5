package services

import "testing"

func TestClampPercent(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-50, 0},
		{-1, 0},
		{0, 0},
		{37, 37},
		{100, 100},
		{101, 100},
		{100000, 100},
	}
	for _, tc := range cases {
		if got := ClampPercent(tc.in); got != tc.want {
			t.Errorf("ClampPercent(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClampSeconds(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-1, 0},
		{0, 0},
		{90, 90},
		{86400, 86400},
	}
	for _, tc := range cases {
		if got := ClampSeconds(tc.in); got != tc.want {
			t.Errorf("ClampSeconds(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
