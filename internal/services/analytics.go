package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"horizon/internal/db"
	"horizon/internal/models"
)

// PostMetrics is the per-post rollup, computed on demand — nothing is
// materialized, every call re-scans the store.
type PostMetrics struct {
	Views          int64   `json:"views"` // unique viewers
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	CommentLikes   int64   `json:"comment_likes"`
	AvgCompletion  float64 `json:"avg_completion"`
	AvgTimeMinutes float64 `json:"avg_time_minutes"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Reader is one row of the global readers rollup, either a logged-in
// account or an anonymous fingerprint.
type Reader struct {
	Type        string    `json:"type"` // "logged_in" | "anonymous"
	UserID      uint      `json:"user_id,omitempty"`
	AnonID      string    `json:"anon_id,omitempty"`
	Label       string    `json:"label"`
	Email       string    `json:"email,omitempty"`
	PostsRead   int       `json:"posts_read"`
	TotalEvents int       `json:"total_events"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	IPAddress   string    `json:"ip_address,omitempty"` // anonymous readers only
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// UniqueViewers counts distinct logged-in readers and distinct
// anonymous fingerprints separately, then sums them. A person who read
// both logged-out and logged-in is counted twice — accepted and
// documented, not silently deduplicated.
func UniqueViewers(postID uint) (int64, error) {
	var users, anons int64
	if err := db.DB.Model(&models.ReadEvent{}).
		Where("post_id = ? AND user_id IS NOT NULL", postID).
		Distinct("user_id").Count(&users).Error; err != nil {
		return 0, err
	}
	if err := db.DB.Model(&models.ReadEvent{}).
		Where("post_id = ? AND anon_id <> ''", postID).
		Distinct("anon_id").Count(&anons).Error; err != nil {
		return 0, err
	}
	return users + anons, nil
}

// EngagementRate is interactions per unique viewer as a percentage,
// one decimal. Zero viewers yields zero, never a division error.
func EngagementRate(likes, comments, commentLikes, viewers int64) float64 {
	if viewers == 0 {
		return 0
	}
	return round1(float64(likes+comments+commentLikes) / float64(viewers) * 100)
}

// ComputePostMetrics produces the full §dashboard metrics object for
// one post. Empty data degrades to zeros.
func ComputePostMetrics(postID uint) (*PostMetrics, error) {
	m := &PostMetrics{}

	viewers, err := UniqueViewers(postID)
	if err != nil {
		return nil, err
	}
	m.Views = viewers

	if err := db.DB.Model(&models.Like{}).Where("post_id = ?", postID).Count(&m.Likes).Error; err != nil {
		return nil, err
	}
	if err := db.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&m.Comments).Error; err != nil {
		return nil, err
	}
	if err := db.DB.Model(&models.CommentLike{}).
		Joins("JOIN comments ON comments.id = comment_likes.comment_id").
		Where("comments.post_id = ?", postID).
		Count(&m.CommentLikes).Error; err != nil {
		return nil, err
	}

	var avgPercent, avgSeconds float64
	row := db.DB.Model(&models.ReadEvent{}).
		Where("post_id = ?", postID).
		Select("COALESCE(AVG(percent), 0), COALESCE(AVG(seconds), 0)").
		Row()
	if err := row.Scan(&avgPercent, &avgSeconds); err != nil {
		return nil, err
	}
	m.AvgCompletion = round1(avgPercent)
	m.AvgTimeMinutes = round1(avgSeconds / 60)
	m.EngagementRate = EngagementRate(m.Likes, m.Comments, m.CommentLikes, viewers)

	return m, nil
}

// AnonLabel renders an anonymous fingerprint for display without
// exposing the full token.
func AnonLabel(anonID string) string {
	if len(anonID) > 8 {
		anonID = anonID[:8]
	}
	return fmt.Sprintf("Anon (%s...)", anonID)
}

type readerStatRow struct {
	UserID      uint
	Email       string
	Name        string
	AnonID      string
	PostsRead   int
	TotalEvents int
	FirstSeen   time.Time
	LastSeen    time.Time
}

// Readers builds the global readers rollup: logged-in and anonymous
// readers come from two separate grouped queries, are merged into one
// list sorted by last_seen descending, and only then paginated — page
// boundaries must fall on the merged list, not per source query.
// postFilter of 0 means all posts; typeFilter narrows to "logged_in" or
// "anonymous", "" means both.
func Readers(postFilter uint, typeFilter string, page, perPage int) ([]Reader, int, error) {
	var userRows []readerStatRow
	if typeFilter == "" || typeFilter == "logged_in" {
		loggedIn := db.DB.Model(&models.ReadEvent{}).
			Select("users.id AS user_id, users.email AS email, users.name AS name, " +
				"COUNT(DISTINCT read_events.post_id) AS posts_read, COUNT(read_events.id) AS total_events, " +
				"MIN(read_events.created_at) AS first_seen, MAX(read_events.created_at) AS last_seen").
			Joins("JOIN users ON users.id = read_events.user_id").
			Group("users.id, users.email, users.name")
		if postFilter != 0 {
			loggedIn = loggedIn.Where("read_events.post_id = ?", postFilter)
		}
		if err := loggedIn.Scan(&userRows).Error; err != nil {
			return nil, 0, err
		}
	}

	var anonRows []readerStatRow
	var anonIPs map[string]string
	if typeFilter == "" || typeFilter == "anonymous" {
		anon := db.DB.Model(&models.ReadEvent{}).
			Select("anon_id, COUNT(DISTINCT post_id) AS posts_read, COUNT(id) AS total_events, "+
				"MIN(created_at) AS first_seen, MAX(created_at) AS last_seen").
			Where("anon_id <> ''").
			Group("anon_id")
		if postFilter != 0 {
			anon = anon.Where("post_id = ?", postFilter)
		}
		if err := anon.Scan(&anonRows).Error; err != nil {
			return nil, 0, err
		}

		var err error
		anonIPs, err = latestAnonIPs(postFilter)
		if err != nil {
			return nil, 0, err
		}
	}

	var readers []Reader
	for _, r := range userRows {
		label := r.Name
		if label == "" {
			label = r.Email
		}
		readers = append(readers, Reader{
			Type:        "logged_in",
			UserID:      r.UserID,
			Label:       label,
			Email:       r.Email,
			PostsRead:   r.PostsRead,
			TotalEvents: r.TotalEvents,
			FirstSeen:   r.FirstSeen,
			LastSeen:    r.LastSeen,
		})
	}
	for _, r := range anonRows {
		readers = append(readers, Reader{
			Type:        "anonymous",
			AnonID:      r.AnonID,
			Label:       AnonLabel(r.AnonID),
			PostsRead:   r.PostsRead,
			TotalEvents: r.TotalEvents,
			FirstSeen:   r.FirstSeen,
			LastSeen:    r.LastSeen,
			IPAddress:   anonIPs[r.AnonID],
		})
	}

	merged := MergeReaders(readers)
	pageSlice := PaginateReaders(merged, page, perPage)
	return pageSlice, len(merged), nil
}

// latestAnonIPs returns the most recently observed IP per anonymous
// fingerprint (DISTINCT ON keeps the newest row per anon_id).
func latestAnonIPs(postFilter uint) (map[string]string, error) {
	type ipRow struct {
		AnonID    string
		IPAddress string
	}
	var rows []ipRow
	q := `SELECT DISTINCT ON (anon_id) anon_id, ip_address
	      FROM read_events WHERE anon_id <> ''`
	args := []interface{}{}
	if postFilter != 0 {
		q += ` AND post_id = ?`
		args = append(args, postFilter)
	}
	q += ` ORDER BY anon_id, created_at DESC`
	if err := db.DB.Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.AnonID] = r.IPAddress
	}
	return out, nil
}

// MergeReaders sorts the combined reader list by last_seen descending.
func MergeReaders(readers []Reader) []Reader {
	sort.SliceStable(readers, func(a, b int) bool {
		return readers[a].LastSeen.After(readers[b].LastSeen)
	})
	return readers
}

// PaginateReaders slices an already merged+sorted list. Out-of-range
// pages return an empty slice, not an error.
func PaginateReaders(readers []Reader, page, perPage int) []Reader {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	start := (page - 1) * perPage
	if start >= len(readers) {
		return []Reader{}
	}
	end := start + perPage
	if end > len(readers) {
		end = len(readers)
	}
	return readers[start:end]
}

// ReaderPostActivity groups one reader's events on one post. MaxPercent
// is taken over the full event list — the last-inserted row is never
// assumed authoritative (clock skew is not corrected).
type ReaderPostActivity struct {
	Post         models.Post        `json:"post"`
	Events       []models.ReadEvent `json:"events"`
	MaxPercent   int                `json:"max_percent"`
	TotalSeconds int                `json:"total_seconds"`
}

// ReaderDetail returns everything one reader (by user id or anonymous
// fingerprint) has read, grouped per post.
func ReaderDetail(readerType, readerID string) (string, []ReaderPostActivity, error) {
	var events []models.ReadEvent
	var label string

	if readerType == "user" {
		var user models.User
		if err := db.DB.First(&user, "id = ?", readerID).Error; err != nil {
			return "", nil, ErrNotFound
		}
		label = user.DisplayName()
		if err := db.DB.Where("user_id = ?", user.ID).
			Order("created_at DESC").Find(&events).Error; err != nil {
			return "", nil, err
		}
	} else {
		label = AnonLabel(readerID)
		if err := db.DB.Where("anon_id = ?", readerID).
			Order("created_at DESC").Find(&events).Error; err != nil {
			return "", nil, err
		}
	}

	byPost := make(map[uint]*ReaderPostActivity)
	var order []uint
	for _, ev := range events {
		entry, ok := byPost[ev.PostID]
		if !ok {
			entry = &ReaderPostActivity{}
			byPost[ev.PostID] = entry
			order = append(order, ev.PostID)
		}
		entry.Events = append(entry.Events, ev)
		if ev.Percent > entry.MaxPercent {
			entry.MaxPercent = ev.Percent
		}
		entry.TotalSeconds += ev.Seconds
	}

	if len(order) > 0 {
		var posts []models.Post
		if err := db.DB.Where("id IN ?", order).Find(&posts).Error; err != nil {
			return "", nil, err
		}
		postsByID := make(map[uint]models.Post, len(posts))
		for _, p := range posts {
			postsByID[p.ID] = p
		}
		for id, entry := range byPost {
			entry.Post = postsByID[id]
		}
	}

	out := make([]ReaderPostActivity, 0, len(order))
	for _, id := range order {
		out = append(out, *byPost[id])
	}
	return label, out, nil
}

// DashboardStats is the admin overview: site totals plus the ten most
// recent posts with their metrics.
type DashboardStats struct {
	TotalPosts    int64           `json:"total_posts"` // published only
	TotalUsers    int64           `json:"total_users"`
	TotalComments int64           `json:"total_comments"`
	TotalLikes    int64           `json:"total_likes"`
	RecentPosts   []PostWithStats `json:"recent_posts"`
}

type PostWithStats struct {
	Post    models.Post `json:"post"`
	Metrics PostMetrics `json:"metrics"`
}

func ComputeDashboard() (*DashboardStats, error) {
	s := &DashboardStats{}
	if err := db.DB.Model(&models.Post{}).Where("status = ?", models.PostStatusPublished).Count(&s.TotalPosts).Error; err != nil {
		return nil, err
	}
	if err := db.DB.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.DB.Model(&models.Comment{}).Count(&s.TotalComments).Error; err != nil {
		return nil, err
	}
	if err := db.DB.Model(&models.Like{}).Count(&s.TotalLikes).Error; err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := db.DB.Order("created_at DESC").Limit(10).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		m, err := ComputePostMetrics(p.ID)
		if err != nil {
			return nil, err
		}
		s.RecentPosts = append(s.RecentPosts, PostWithStats{Post: p, Metrics: *m})
	}
	return s, nil
}

// PostViewers lists the distinct logged-in users who generated read
// events on a post (anonymous readers appear only in counts).
func PostViewers(postID uint) ([]models.User, error) {
	var viewers []models.User
	err := db.DB.Model(&models.User{}).
		Joins("JOIN read_events ON read_events.user_id = users.id").
		Where("read_events.post_id = ?", postID).
		Distinct().
		Find(&viewers).Error
	return viewers, err
}
