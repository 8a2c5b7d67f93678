package readwise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

const (
	// DefaultBaseURL is the Readwise Reader list endpoint root.
	DefaultBaseURL = "https://readwise.io/api/v3"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryAfter applies when a 429 response carries no usable
	// Retry-After header.
	DefaultRetryAfter = 60 * time.Second

	// requestsPerMinute proactively throttles below Readwise's documented
	// 20 requests/minute limit.
	requestsPerMinute = 20
)

// Client talks to the Readwise Reader API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Readwise API client. An empty baseURL selects the
// production endpoint.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 1),
	}
}

// apiItem is one entry of the Reader list endpoint. Documents and
// highlights share the shape; a highlight carries its document's id in
// parent_id.
type apiItem struct {
	ID        string `json:"id"`
	ParentID  string `json:"parent_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	SourceURL string `json:"source_url"`
	Category  string `json:"category"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listResponse struct {
	Results        []apiItem `json:"results"`
	NextPageCursor string    `json:"nextPageCursor"`
}

// FetchAll walks the list endpoint's page sequence and returns every item
// in emission order. A 429 waits out the advertised Retry-After and retries
// the same page. Any other failure returns the items collected so far with
// an error wrapping domain.ErrSourceUnavailable.
func (c *Client) FetchAll(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	var items []domain.RawItem
	pageCursor := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return items, err
		}

		page, err := c.fetchPage(ctx, since, pageCursor)
		if err != nil {
			if waitErr, ok := err.(*rateLimitError); ok {
				logger.Debug("Rate limited, waiting %s", waitErr.retryAfter)
				select {
				case <-ctx.Done():
					return items, ctx.Err()
				case <-time.After(waitErr.retryAfter):
				}
				continue
			}
			return items, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}

		for _, item := range page.Results {
			items = append(items, toRawItem(item))
		}

		if page.NextPageCursor == "" {
			return items, nil
		}
		pageCursor = page.NextPageCursor
	}
}

// rateLimitError signals a 429 and carries the wait before retrying the
// same page.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.retryAfter)
}

func (c *Client) fetchPage(ctx context.Context, since *time.Time, pageCursor string) (*listResponse, error) {
	query := url.Values{}
	if since != nil {
		query.Set("updatedAfter", since.UTC().Format(time.RFC3339))
	}
	if pageCursor != "" {
		query.Set("pageCursor", pageCursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list/?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("readwise API error: %d", resp.StatusCode)
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}

func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return DefaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

func toRawItem(item apiItem) domain.RawItem {
	return domain.RawItem{
		ID:        item.ID,
		ParentID:  item.ParentID,
		Title:     item.Title,
		Author:    item.Author,
		URL:       item.SourceURL,
		Category:  item.Category,
		Summary:   item.Summary,
		Body:      item.Content,
		Note:      item.Note,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
