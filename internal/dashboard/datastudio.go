package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// Scope grants write access to Data Studio reports.
	Scope           = "https://www.googleapis.com/auth/datastudio"
	DefaultEndpoint = "https://datastudio.googleapis.com"

	maxErrorBody = 4 << 10
)

// DataStudioClient updates reports over the Data Studio REST API.
type DataStudioClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewDataStudioClient authenticates with the service account key at
// credentialsFile. An empty endpoint uses DefaultEndpoint.
func NewDataStudioClient(ctx context.Context, credentialsFile, endpoint string) (*DataStudioClient, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, Scope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return NewDataStudioClientWithHTTP(oauth2.NewClient(ctx, creds.TokenSource), endpoint), nil
}

// NewDataStudioClientWithHTTP uses an already authorized http.Client.
func NewDataStudioClientWithHTTP(httpClient *http.Client, endpoint string) *DataStudioClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DataStudioClient{httpClient: httpClient, endpoint: strings.TrimRight(endpoint, "/")}
}

func (c *DataStudioClient) UpdateReport(ctx context.Context, reportID string, req UpdateRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode update request: %w", err)
	}

	u := c.endpoint + "/v1/reports/" + url.PathEscape(reportID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("datastudio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
