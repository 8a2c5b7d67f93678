package tracker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryAfter applies when a rate-limit response carries no
	// usable reset information.
	DefaultRetryAfter = 60 * time.Second

	// perPage is the page size for issue and comment listings.
	perPage = 100
)

// Client wraps the go-github client for issue syncing.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewClient creates a GitHub API client for one repository. An empty
// baseURL selects api.github.com.
func NewClient(token, owner, repo, baseURL string) (*Client, error) {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))
	httpClient.Timeout = DefaultTimeout

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("set base URL: %w", err)
		}
	}

	return &Client{gh: client, owner: owner, repo: repo}, nil
}

// FetchAll returns every issue updated since the watermark together with
// its comments, issues first in listing order, each issue's comments keyed
// to it by number. A rate-limit response waits out the advertised reset and
// retries the same page; any other failure returns the items collected so
// far with an error wrapping domain.ErrSourceUnavailable.
func (c *Client) FetchAll(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	var items []domain.RawItem

	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	if since != nil {
		opts.Since = *since
	}

	for {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			if wait, limited := retryAfter(err); limited {
				if err := sleep(ctx, wait); err != nil {
					return items, err
				}
				continue
			}
			return items, fmt.Errorf("%w: list issues: %w", domain.ErrSourceUnavailable, err)
		}

		for _, issue := range issues {
			items = append(items, issueItem(issue))
			comments, err := c.fetchComments(ctx, issue.GetNumber())
			if err != nil {
				return items, err
			}
			items = append(items, comments...)
		}

		if resp.NextPage == 0 {
			return items, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

func (c *Client) fetchComments(ctx context.Context, number int) ([]domain.RawItem, error) {
	var items []domain.RawItem
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			if wait, limited := retryAfter(err); limited {
				if err := sleep(ctx, wait); err != nil {
					return items, err
				}
				continue
			}
			return items, fmt.Errorf("%w: list comments for #%d: %w", domain.ErrSourceUnavailable, number, err)
		}

		for _, comment := range comments {
			items = append(items, commentItem(number, comment))
		}

		if resp.NextPage == 0 {
			return items, nil
		}
		opts.Page = resp.NextPage
	}
}

// retryAfter extracts the wait from a rate-limit error. The second return
// is false for every other error.
func retryAfter(err error) (time.Duration, bool) {
	switch e := err.(type) {
	case *gh.AbuseRateLimitError:
		if e.RetryAfter != nil {
			return *e.RetryAfter, true
		}
		return DefaultRetryAfter, true
	case *gh.RateLimitError:
		wait := time.Until(e.Rate.Reset.Time)
		if wait <= 0 {
			wait = DefaultRetryAfter
		}
		return wait, true
	default:
		return 0, false
	}
}

func sleep(ctx context.Context, wait time.Duration) error {
	logger.Debug("Rate limited, waiting %s", wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func issueItem(issue *gh.Issue) domain.RawItem {
	category := "issue"
	if issue.IsPullRequest() {
		category = "pull_request"
	}
	return domain.RawItem{
		ID:        strconv.Itoa(issue.GetNumber()),
		Title:     issue.GetTitle(),
		Author:    issue.GetUser().GetLogin(),
		URL:       issue.GetHTMLURL(),
		Category:  category,
		Summary:   issue.GetBody(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		Extra:     map[string]string{"state": issue.GetState()},
	}
}

func commentItem(number int, comment *gh.IssueComment) domain.RawItem {
	return domain.RawItem{
		ID:        fmt.Sprintf("comment-%d", comment.GetID()),
		ParentID:  strconv.Itoa(number),
		Author:    comment.GetUser().GetLogin(),
		URL:       comment.GetHTMLURL(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt().Time,
		UpdatedAt: comment.GetUpdatedAt().Time,
	}
}
