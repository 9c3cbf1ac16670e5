package services

import (
	"testing"
	"time"
)

func TestEngagementRate(t *testing.T) {
	cases := []struct {
		likes, comments, commentLikes, viewers int64
		want                                   float64
	}{
		{0, 0, 0, 0, 0},   // zero viewers never divides
		{5, 0, 0, 0, 0},   // interactions without viewers still guard
		{1, 1, 1, 10, 30}, // 3 interactions / 10 viewers
		{1, 0, 0, 3, 33.3},
		{2, 0, 0, 3, 66.7},
		{10, 5, 5, 10, 200}, // rate can exceed 100
	}
	for _, tc := range cases {
		got := EngagementRate(tc.likes, tc.comments, tc.commentLikes, tc.viewers)
		if got != tc.want {
			t.Errorf("EngagementRate(%d,%d,%d,%d) = %v, want %v",
				tc.likes, tc.comments, tc.commentLikes, tc.viewers, got, tc.want)
		}
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{33.333, 33.3},
		{66.666, 66.7},
		{99.95, 100},
		{1.25, 1.3},
	}
	for _, tc := range cases {
		if got := round1(tc.in); got != tc.want {
			t.Errorf("round1(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAnonLabel(t *testing.T) {
	if got := AnonLabel("abcdef1234567890"); got != "Anon (abcdef12...)" {
		t.Errorf("AnonLabel long token = %q", got)
	}
	// Short tokens must not panic or slice out of range
	if got := AnonLabel("abc"); got != "Anon (abc...)" {
		t.Errorf("AnonLabel short token = %q", got)
	}
}

func TestMergeReadersSortsByLastSeen(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	readers := []Reader{
		{Type: "logged_in", UserID: 1, LastSeen: t0},
		{Type: "anonymous", AnonID: "x", LastSeen: t0.Add(2 * time.Hour)},
		{Type: "logged_in", UserID: 2, LastSeen: t0.Add(time.Hour)},
	}

	merged := MergeReaders(readers)
	if merged[0].AnonID != "x" || merged[1].UserID != 2 || merged[2].UserID != 1 {
		t.Errorf("Merge order wrong: %+v", merged)
	}
}

func TestPaginateReaders(t *testing.T) {
	readers := make([]Reader, 7)
	for i := range readers {
		readers[i].UserID = uint(i + 1)
	}

	page := PaginateReaders(readers, 1, 3)
	if len(page) != 3 || page[0].UserID != 1 {
		t.Errorf("Page 1 wrong: %+v", page)
	}

	page = PaginateReaders(readers, 3, 3)
	if len(page) != 1 || page[0].UserID != 7 {
		t.Errorf("Last partial page wrong: %+v", page)
	}

	page = PaginateReaders(readers, 4, 3)
	if len(page) != 0 {
		t.Errorf("Out-of-range page should be empty, got %d entries", len(page))
	}

	// Invalid paging falls back to defaults instead of panicking
	page = PaginateReaders(readers, 0, 0)
	if len(page) != 7 {
		t.Errorf("Default paging should return all 7, got %d", len(page))
	}
}
