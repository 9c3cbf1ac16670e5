package services

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"horizon/internal/utils"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// LinkPreview is the unfurled card for an external URL.
type LinkPreview struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Image   string `json:"image,omitempty"`
}

const (
	previewTTL        = 10 * time.Minute
	previewMaxExcerpt = 300
)

// LinkPreviewService fetches and caches link previews. Successful
// fetches are cached for ten minutes; failures are not cached, so a
// transient upstream error retries on the next request.
type LinkPreviewService struct {
	client    *http.Client
	cache     *utils.TTLCache
	sanitizer *bluemonday.Policy
}

func NewLinkPreviewService(cache *utils.TTLCache) *LinkPreviewService {
	return &LinkPreviewService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Fetch returns the preview for rawURL, from cache when possible.
func (s *LinkPreviewService) Fetch(rawURL string) (*LinkPreview, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid url: %q", rawURL)
	}

	cacheKey := "linkpreview:" + rawURL
	if cached := s.cache.Get(cacheKey); cached != nil {
		if preview, ok := cached.(*LinkPreview); ok {
			return preview, nil
		}
	}

	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	preview := &LinkPreview{
		URL:     rawURL,
		Title:   strings.TrimSpace(s.sanitizer.Sanitize(article.Title)),
		Excerpt: truncateExcerpt(s.sanitizer.Sanitize(article.Excerpt)),
		Image:   article.Image,
	}
	s.cache.Set(cacheKey, preview, previewTTL)
	return preview, nil
}

func truncateExcerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= previewMaxExcerpt {
		return text
	}
	return string(runes[:previewMaxExcerpt]) + "..."
}
