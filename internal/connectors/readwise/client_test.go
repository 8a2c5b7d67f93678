package readwise

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

func TestClient_FetchAll_Pagination(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		cursor := r.URL.Query().Get("pageCursor")
		cursors = append(cursors, cursor)

		w.Header().Set("Content-Type", "application/json")
		switch cursor {
		case "":
			fmt.Fprint(w, `{
				"results": [
					{"id": "doc-1", "title": "First", "category": "article"},
					{"id": "h-1", "parent_id": "doc-1", "content": "highlight one"}
				],
				"nextPageCursor": "page-2"
			}`)
		case "page-2":
			fmt.Fprint(w, `{
				"results": [
					{"id": "h-2", "parent_id": "doc-1", "content": "highlight two"}
				],
				"nextPageCursor": ""
			}`)
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	}))
	defer server.Close()

	client := NewClient("secret", server.URL)
	items, err := client.FetchAll(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"", "page-2"}, cursors)
	assert.Equal(t, "doc-1", items[0].ID)
	assert.False(t, items[0].IsChild())
	assert.Equal(t, "highlight two", items[2].Body)
}

func TestClient_FetchAll_SinceParameter(t *testing.T) {
	var updatedAfter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		updatedAfter = r.URL.Query().Get("updatedAfter")
		fmt.Fprint(w, `{"results": [], "nextPageCursor": ""}`)
	}))
	defer server.Close()

	since := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	client := NewClient("secret", server.URL)
	_, err := client.FetchAll(context.Background(), &since)

	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T10:00:00Z", updatedAfter)
}

func TestClient_FetchAll_RetriesSamePageAfter429(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"results": [{"id": "doc-1", "title": "After wait"}], "nextPageCursor": ""}`)
	}))
	defer server.Close()

	client := NewClient("secret", server.URL)
	start := time.Now()
	items, err := client.FetchAll(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, requests)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestClient_FetchAll_PartialResultsOnServerError(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			fmt.Fprint(w, `{
				"results": [{"id": "doc-1", "title": "Made it"}],
				"nextPageCursor": "page-2"
			}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("secret", server.URL)
	items, err := client.FetchAll(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	// The first page's items survive the failure.
	require.Len(t, items, 1)
	assert.Equal(t, "doc-1", items[0].ID)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, DefaultRetryAfter, parseRetryAfter(""))
	assert.Equal(t, DefaultRetryAfter, parseRetryAfter("soon"))
	assert.Equal(t, DefaultRetryAfter, parseRetryAfter("-1"))
}

func TestClient_FetchAll_ContextCancelledDuringWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient("secret", server.URL)
	_, err := client.FetchAll(ctx, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
