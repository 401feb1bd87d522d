package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

// ScholarClient resolves DOIs to citation data via the Semantic Scholar
// Graph API. It implements IdentifierLookup.
type ScholarClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewScholarClientParams configures a ScholarClient. BaseURL defaults to
// the public Semantic Scholar endpoint; ApiKey is optional and raises the
// rate limit when present.
type NewScholarClientParams struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
}

// NewScholarClient creates a Semantic Scholar lookup client.
func NewScholarClient(params NewScholarClientParams) *ScholarClient {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultScholarBaseURL
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &ScholarClient{
		baseURL:    baseURL,
		apiKey:     params.ApiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CitationsByIdentifier fetches citation count and retraction status for a
// DOI. A nil record with nil error means the paper is unknown to the index.
func (c *ScholarClient) CitationsByIdentifier(
	ctx context.Context,
	identifier string,
) (*CitationRecord, error) {
	endpoint := fmt.Sprintf(
		"%s/paper/DOI:%s?fields=citationCount,isRetracted",
		c.baseURL,
		url.PathEscape(identifier),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar returned status %d", resp.StatusCode)
	}

	var body struct {
		CitationCount *int `json:"citationCount"`
		IsRetracted   bool `json:"isRetracted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode semantic scholar response: %w", err)
	}

	if body.CitationCount == nil {
		return nil, nil
	}

	return &CitationRecord{
		Citations: *body.CitationCount,
		Retracted: body.IsRetracted,
	}, nil
}
