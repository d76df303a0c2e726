package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var videoPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

// SearchClient resolves free-text queries through the YouTube results page.
type SearchClient struct {
	BaseURL string
	Client  *http.Client
}

func NewSearchClient() *SearchClient {
	return &SearchClient{
		BaseURL: "https://www.youtube.com",
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FirstVideoURL returns the watch URL of the first search result.
func (c *SearchClient) FirstVideoURL(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", c.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("YouTube search failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := videoPattern.FindStringSubmatch(string(body))
	if len(matches) < 2 {
		return "", ErrNotFound
	}

	return fmt.Sprintf("%s/watch?v=%s", c.BaseURL, matches[1]), nil
}
