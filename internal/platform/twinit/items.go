package twinit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// ListProjects returns one page of the projects visible to the session.
func (c *Client) ListProjects(ctx context.Context, offset, pageSize int) (domain.ProjectPage, error) {
	params := url.Values{}
	params.Set("_pageSize", strconv.Itoa(pageSize))
	params.Set("_offset", strconv.Itoa(offset))

	body, err := c.do(ctx, http.MethodGet, c.passportURL("/projects"), params, nil)
	if err != nil {
		return domain.ProjectPage{}, fmt.Errorf("failed to list projects: %w", err)
	}
	projects, total, err := decodeList[domain.Project](body)
	if err != nil {
		return domain.ProjectPage{}, fmt.Errorf("failed to list projects: %w", err)
	}
	return domain.ProjectPage{Projects: projects, Total: total}, nil
}

// NamedUserItems runs query over the named user items of namespaces.
func (c *Client) NamedUserItems(ctx context.Context, namespaces []string, query record.Record, pageSize int) (domain.ItemPage, error) {
	q, err := jsonParam(query)
	if err != nil {
		return domain.ItemPage{}, err
	}
	params := url.Values{}
	params.Set("query", q)
	params.Set("nsfilter", nsFilter(namespaces))
	params.Set("page", pageParam(pageSize))

	body, err := c.do(ctx, http.MethodGet, c.itemURL("/nameduseritems"), params, nil)
	if err != nil {
		return domain.ItemPage{}, fmt.Errorf("failed to query named user items: %w", err)
	}
	items, total, err := decodeList[record.Record](body)
	if err != nil {
		return domain.ItemPage{}, fmt.Errorf("failed to query named user items: %w", err)
	}
	return domain.ItemPage{Items: items, Total: total}, nil
}

// RelatedItems returns the items of a collection.
func (c *Client) RelatedItems(ctx context.Context, namespaces []string, collectionID string, pageSize int) ([]record.Record, error) {
	params := url.Values{}
	params.Set("nsfilter", nsFilter(namespaces))
	params.Set("page", pageParam(pageSize))

	body, err := c.do(ctx, http.MethodGet, c.relatedURL(collectionID), params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of collection %s: %w", collectionID, err)
	}
	items, _, err := decodeList[record.Record](body)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of collection %s: %w", collectionID, err)
	}
	return items, nil
}

// RelatedReadings returns the readings of a collection matching query,
// newest first.
func (c *Client) RelatedReadings(ctx context.Context, namespaces []string, collectionID string, query record.Record, pageSize int) ([]record.Record, error) {
	q, err := jsonParam(query)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("query", q)
	params.Set("sort", `{"_ts":-1}`)
	params.Set("nsfilter", nsFilter(namespaces))
	params.Set("page", pageParam(pageSize))

	body, err := c.do(ctx, http.MethodGet, c.relatedURL(collectionID), params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings: %w", err)
	}
	readings, _, err := decodeList[record.Record](body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings: %w", err)
	}
	return readings, nil
}

// Aggregate posts pipeline to the collection's aggregation endpoint.
func (c *Client) Aggregate(ctx context.Context, namespaces []string, collectionID string, pipeline telemetry.Pipeline) ([]record.Record, error) {
	params := url.Values{}
	params.Set("nsfilter", nsFilter(namespaces))

	path := "/nameduseritems/" + url.PathEscape(collectionID) + "/aggregation"
	body, err := c.do(ctx, http.MethodPost, c.itemURL(path), params, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate readings: %w", err)
	}
	buckets, _, err := decodeList[record.Record](body)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate readings: %w", err)
	}
	return buckets, nil
}

func (c *Client) relatedURL(collectionID string) string {
	return c.itemURL("/nameduseritems/" + url.PathEscape(collectionID) + "/relateditems")
}
