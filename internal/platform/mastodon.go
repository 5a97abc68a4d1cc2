package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// PlatformMastodon is the platform code of the Mastodon adapter.
const PlatformMastodon = "mastodon"

// maxErrorBody bounds how much of an error response is kept in the target's error message.
const maxErrorBody = 512

// MastodonAdapter publishes statuses to a Mastodon instance with a bearer token.
type MastodonAdapter struct {
	baseURL    string
	httpClient *http.Client
}

type mastodonStatusRequest struct {
	Status string `json:"status"`
}

type mastodonStatusResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type mastodonErrorResponse struct {
	Error string `json:"error"`
}

// NewMastodonAdapter creates a new MastodonAdapter. httpClient is used as the base
// transport for the oauth2 client and may be nil.
func NewMastodonAdapter(baseURL string, httpClient *http.Client) *MastodonAdapter {
	return &MastodonAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Platform returns the platform code.
func (a *MastodonAdapter) Platform() string {
	return PlatformMastodon
}

// Publish posts a new status containing the post text, link and media URLs.
func (a *MastodonAdapter) Publish(
	ctx context.Context,
	content publishingDomain.Content,
	credentials *accountDomain.Credentials,
) (publishingDomain.PublishOutcome, error) {
	if credentials.AccessToken == "" {
		return publishingDomain.Failed(ErrorCodeUnauthorized, "missing access token"), nil
	}

	text := composeText(content)
	if text == "" {
		return publishingDomain.Failed(ErrorCodeInvalidContent, emptyStatusMessage), nil
	}

	body, err := json.Marshal(mastodonStatusRequest{Status: text})
	if err != nil {
		return publishingDomain.PublishOutcome{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.baseURL+"/api/v1/statuses",
		bytes.NewReader(body),
	)
	if err != nil {
		return publishingDomain.PublishOutcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credentials.AccessToken,
		TokenType:   "Bearer",
	}))

	resp, err := client.Do(req)
	if err != nil {
		return publishingDomain.Failed(ErrorCodeNetworkError, err.Error()), nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return publishingDomain.Failed(codeForStatus(resp.StatusCode), mastodonErrorMessage(resp)), nil
	}

	var status mastodonStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return publishingDomain.Failed(ErrorCodePlatformError, fmt.Sprintf("invalid response: %v", err)), nil
	}
	return publishingDomain.Succeeded(status.ID, status.URL), nil
}

func mastodonErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var errResp mastodonErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	if len(raw) > 0 {
		return fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	return resp.Status
}
