package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// maxLocationPages bounds how many provider pages one level lookup walks
const maxLocationPages = 20

type locationEndpoint struct {
	path     string
	parentQS string
}

var locationEndpoints = map[domain.LocationLevel]locationEndpoint{
	domain.LocationCountry:  {path: "/torod/countries"},
	domain.LocationRegion:   {path: "/torod/regions", parentQS: "country_id"},
	domain.LocationCity:     {path: "/torod/cities", parentQS: "region_id"},
	domain.LocationDistrict: {path: "/torod/districts", parentQS: "cities_id"},
}

// locationPage accepts a bare array or {"data": [...], "last_page": n} (optionally under "meta")
type locationPage struct {
	entries  []json.RawMessage
	lastPage int
}

func (p *locationPage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &p.entries)
	}
	var wrapped struct {
		Data     json.RawMessage `json:"data"`
		LastPage int             `json:"last_page"`
		Meta     struct {
			LastPage int `json:"last_page"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	p.lastPage = wrapped.LastPage
	if p.lastPage == 0 {
		p.lastPage = wrapped.Meta.LastPage
	}
	if len(wrapped.Data) == 0 || bytes.Equal(wrapped.Data, []byte("null")) {
		return nil
	}
	// nested {"data": {"data": [...]}} from the provider proxy
	var inner locationPage
	if err := json.Unmarshal(wrapped.Data, &inner); err != nil {
		return err
	}
	p.entries = inner.entries
	if p.lastPage == 0 {
		p.lastPage = inner.lastPage
	}
	return nil
}

// ListLocations returns every entry of a cascade level under parentID (ignored for countries).
// A district lookup answered with 404 or 406 means the city has no districts.
func (c *Client) ListLocations(ctx context.Context, level domain.LocationLevel, parentID int64) ([]domain.Location, error) {
	ep, ok := locationEndpoints[level]
	if !ok {
		return nil, fmt.Errorf("unknown location level %q", level)
	}

	out := []domain.Location{}
	for page := 1; page <= maxLocationPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		if ep.parentQS != "" {
			q.Set(ep.parentQS, strconv.FormatInt(parentID, 10))
		}

		var resp locationPage
		err := c.do(ctx, http.MethodGet, ep.path, q, nil, &resp)
		if err != nil {
			var upstream *errors.ErrUpstream
			if level == domain.LocationDistrict && stderrors.As(err, &upstream) &&
				(upstream.StatusCode == http.StatusNotFound || upstream.StatusCode == http.StatusNotAcceptable) {
				return []domain.Location{}, nil
			}
			return nil, err
		}

		for _, raw := range resp.entries {
			var loc domain.Location
			if err := json.Unmarshal(raw, &loc); err != nil {
				c.logger.Debug("Skipping malformed location entry", zap.String("level", string(level)), zap.Error(err))
				continue
			}
			out = append(out, loc)
		}

		if len(resp.entries) == 0 || resp.lastPage <= page {
			break
		}
	}
	return out, nil
}
