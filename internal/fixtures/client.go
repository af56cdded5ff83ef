package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the football-data.org v4 API root.
const DefaultBaseURL = "https://api.football-data.org/v4"

// Client is a client for the football-data.org API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new football-data.org client. An empty baseURL uses
// DefaultBaseURL.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// TeamRef is a team as embedded in a match
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CompetitionRef is a competition as embedded in a match
type CompetitionRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Match represents a scheduled match from the API
type Match struct {
	ID          int            `json:"id"`
	UTCDate     string         `json:"utcDate"`
	Status      string         `json:"status"`
	Venue       string         `json:"venue"`
	HomeTeam    TeamRef        `json:"homeTeam"`
	AwayTeam    TeamRef        `json:"awayTeam"`
	Competition CompetitionRef `json:"competition"`
}

// Label returns "Home vs Away".
func (m Match) Label() string {
	return m.HomeTeam.Name + " vs " + m.AwayTeam.Name
}

// Date returns the date portion of the UTC kickoff time.
func (m Match) Date() string {
	if len(m.UTCDate) < 10 {
		return m.UTCDate
	}
	return m.UTCDate[:10]
}

// matchesResponse represents the API matches response
type matchesResponse struct {
	Matches []Match `json:"matches"`
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// ScheduledMatches returns the scheduled matches of a team
func (c *Client) ScheduledMatches(ctx context.Context, teamID int) ([]Match, error) {
	params := url.Values{}
	params.Add("status", "SCHEDULED")

	reqURL := fmt.Sprintf("%s/teams/%d/matches?%s", c.baseURL, teamID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var result matchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result.Matches, nil
}
