package contacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

const (
	// DefaultRetryAfter is the wait before retrying a rate-limited page;
	// the People API does not advertise a reset time.
	DefaultRetryAfter = 60 * time.Second

	// pageSize is the connections page size.
	pageSize = 200

	// personFields selects the contact attributes the sync mirrors.
	personFields = "names,emailAddresses,phoneNumbers,organizations,metadata"
)

// Client talks to the Google People API.
type Client struct {
	svc *people.Service
}

// NewClient creates a People API client. An empty baseURL selects the
// production endpoint.
func NewClient(ctx context.Context, token, baseURL string) (*Client, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}

	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create people service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// FetchAll walks the connections list and returns contacts with their
// detail entries as children. A rate-limited page is retried after a fixed
// wait; any other failure returns the items collected so far with an error
// wrapping domain.ErrSourceUnavailable. Contacts not updated since the
// watermark are filtered out.
func (c *Client) FetchAll(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	var items []domain.RawItem
	pageToken := ""

	for {
		call := c.svc.People.Connections.List("people/me").
			PersonFields(personFields).
			PageSize(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if rateLimited(err) {
				logger.Debug("Rate limited, waiting %s", DefaultRetryAfter)
				select {
				case <-ctx.Done():
					return items, ctx.Err()
				case <-time.After(DefaultRetryAfter):
				}
				continue
			}
			return items, fmt.Errorf("%w: list connections: %w", domain.ErrSourceUnavailable, err)
		}

		for _, person := range resp.Connections {
			parent := personItem(person)
			if since != nil && !parent.UpdatedAt.IsZero() && !parent.UpdatedAt.After(*since) {
				continue
			}
			items = append(items, parent)
			items = append(items, detailItems(person)...)
		}

		if resp.NextPageToken == "" {
			return items, nil
		}
		pageToken = resp.NextPageToken
	}
}

func rateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}

func personItem(person *people.Person) domain.RawItem {
	item := domain.RawItem{
		ID:       person.ResourceName,
		Category: "contact",
	}

	if len(person.Names) > 0 {
		item.Title = person.Names[0].DisplayName
	}
	if len(person.Organizations) > 0 {
		org := person.Organizations[0]
		switch {
		case org.Title != "" && org.Name != "":
			item.Summary = org.Title + " at " + org.Name
		case org.Name != "":
			item.Summary = org.Name
		case org.Title != "":
			item.Summary = org.Title
		}
	}
	if person.Metadata != nil {
		for _, source := range person.Metadata.Sources {
			if source.UpdateTime == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, source.UpdateTime); err == nil && t.After(item.UpdatedAt) {
				item.UpdatedAt = t
			}
		}
	}
	return item
}

func detailItems(person *people.Person) []domain.RawItem {
	var items []domain.RawItem

	for i, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		items = append(items, domain.RawItem{
			ID:       fmt.Sprintf("%s-email-%d", person.ResourceName, i),
			ParentID: person.ResourceName,
			Body:     "Email: " + email.Value,
			Note:     email.Type,
		})
	}
	for i, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		items = append(items, domain.RawItem{
			ID:       fmt.Sprintf("%s-phone-%d", person.ResourceName, i),
			ParentID: person.ResourceName,
			Body:     "Phone: " + phone.Value,
			Note:     phone.Type,
		})
	}
	return items
}
