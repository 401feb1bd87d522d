package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultOpenAlexBaseURL = "https://api.openalex.org"

// OpenAlexClient searches the OpenAlex works index by title. It implements
// TitleLookup.
type OpenAlexClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewOpenAlexClientParams configures an OpenAlexClient. MailTo is embedded
// in the User-Agent to use OpenAlex's polite pool.
type NewOpenAlexClientParams struct {
	BaseURL string
	MailTo  string
	Timeout time.Duration
}

// NewOpenAlexClient creates an OpenAlex works lookup client.
func NewOpenAlexClient(params NewOpenAlexClientParams) *OpenAlexClient {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAlexBaseURL
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	userAgent := "neurograph/1.0"
	if params.MailTo != "" {
		userAgent = fmt.Sprintf("neurograph/1.0 (mailto:%s)", params.MailTo)
	}

	return &OpenAlexClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchByTitle looks up the best-matching work for a title. A nil record
// with nil error means no work matched.
func (c *OpenAlexClient) SearchByTitle(
	ctx context.Context,
	title string,
) (*CitationRecord, error) {
	query := url.Values{}
	query.Set("search", title)
	query.Set("per_page", "1")

	endpoint := fmt.Sprintf("%s/works?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openalex returned status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			CitedByCount int  `json:"cited_by_count"`
			IsRetracted  bool `json:"is_retracted"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode openalex response: %w", err)
	}

	if len(body.Results) == 0 {
		return nil, nil
	}

	return &CitationRecord{
		Citations: body.Results[0].CitedByCount,
		Retracted: body.Results[0].IsRetracted,
	}, nil
}
