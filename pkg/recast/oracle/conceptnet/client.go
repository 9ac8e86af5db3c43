// Package conceptnet classifies cooking vocabulary by querying a ConceptNet
// compatible edge API.
package conceptnet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cognicore/recast/pkg/recast/oracle"
)

// DefaultBaseURL is the public ConceptNet API.
const DefaultBaseURL = "https://api.conceptnet.io"

// edgeCheck is one (relation, target concept) pair; a term passes when at
// least one edge from it matches.
type edgeCheck struct {
	rel string
	end string
}

var (
	foodChecks = []edgeCheck{{"/r/IsA", "food"}, {"/r/IsA", "ingredient"}}
	verbChecks = []edgeCheck{{"/r/MannerOf", "cook"}, {"/r/RelatedTo", "cook"}}
	toolChecks = []edgeCheck{{"/r/UsedFor", "cook"}}
)

// DefaultSenses are probed in order by SenseLabel.
var DefaultSenses = []string{oracle.SenseSpice, "herb"}

// Client queries ConceptNet for classification edges.
type Client struct {
	BaseURL string
	// Language is the concept URI language segment; "en" when empty.
	Language string
	Senses   []string

	HTTPClient *http.Client
}

var _ oracle.Oracle = (*Client)(nil)

type queryResponse struct {
	Edges []struct {
		ID string `json:"@id"`
	} `json:"edges"`
	Error *struct {
		Status  int    `json:"status"`
		Details string `json:"details"`
	} `json:"error"`
}

// IsFood implements oracle.Oracle.
func (c *Client) IsFood(ctx context.Context, term string) (bool, error) {
	return c.any(ctx, term, foodChecks)
}

// IsCookingVerb implements oracle.Oracle.
func (c *Client) IsCookingVerb(ctx context.Context, term string) (bool, error) {
	return c.any(ctx, term, verbChecks)
}

// IsCookingTool implements oracle.Oracle.
func (c *Client) IsCookingTool(ctx context.Context, term string) (bool, error) {
	return c.any(ctx, term, toolChecks)
}

// SenseLabel implements oracle.Oracle.
func (c *Client) SenseLabel(ctx context.Context, term string) (string, error) {
	senses := c.Senses
	if len(senses) == 0 {
		senses = DefaultSenses
	}
	for _, sense := range senses {
		ok, err := c.hasEdge(ctx, term, edgeCheck{"/r/IsA", sense})
		if err != nil {
			return "", err
		}
		if ok {
			return sense, nil
		}
	}
	return "", nil
}

func (c *Client) any(ctx context.Context, term string, checks []edgeCheck) (bool, error) {
	for _, check := range checks {
		ok, err := c.hasEdge(ctx, term, check)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) hasEdge(ctx context.Context, term string, check edgeCheck) (bool, error) {
	payload, err := c.query(ctx, term, check)
	if err != nil {
		return false, err
	}
	return len(payload.Edges) > 0, nil
}

func (c *Client) query(ctx context.Context, term string, check edgeCheck) (*queryResponse, error) {
	params := url.Values{}
	params.Set("start", c.concept(term))
	params.Set("rel", check.rel)
	params.Set("end", c.concept(check.end))
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conceptnet: %s %s: status %d", check.rel, term, resp.StatusCode)
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("conceptnet: decode: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("conceptnet error: %s", payload.Error.Details)
	}
	return &payload, nil
}

// concept builds "/c/<lang>/<term_with_underscores>".
func (c *Client) concept(term string) string {
	lang := c.Language
	if lang == "" {
		lang = "en"
	}
	return "/c/" + lang + "/" + strings.ReplaceAll(oracle.Normalize(term), " ", "_")
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
