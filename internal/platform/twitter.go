package platform

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/tweet/managetweet"
	"github.com/michimani/gotwi/tweet/managetweet/types"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// PlatformTwitter is the platform code of the Twitter/X adapter.
const PlatformTwitter = "twitter"

const twitterStatusURL = "https://x.com/i/web/status/"

// TwitterAdapter publishes tweets using OAuth 1.0a user context.
type TwitterAdapter struct {
	apiKey       string
	apiKeySecret string
	httpClient   *http.Client
}

// NewTwitterAdapter creates a new TwitterAdapter. The consumer key pair belongs to the
// application; the per-account token pair comes from the credentials.
func NewTwitterAdapter(apiKey, apiKeySecret string, httpClient *http.Client) *TwitterAdapter {
	return &TwitterAdapter{
		apiKey:       apiKey,
		apiKeySecret: apiKeySecret,
		httpClient:   httpClient,
	}
}

// Platform returns the platform code.
func (a *TwitterAdapter) Platform() string {
	return PlatformTwitter
}

// Publish creates a tweet with the post text, link and media URLs.
func (a *TwitterAdapter) Publish(
	ctx context.Context,
	content publishingDomain.Content,
	credentials *accountDomain.Credentials,
) (publishingDomain.PublishOutcome, error) {
	if credentials.AccessToken == "" || credentials.AccessTokenSecret == "" {
		return publishingDomain.Failed(ErrorCodeUnauthorized, "missing oauth token pair"), nil
	}
	text := composeText(content)
	if text == "" {
		return publishingDomain.Failed(ErrorCodeInvalidContent, emptyStatusMessage), nil
	}

	client, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           a.httpClient,
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           credentials.AccessToken,
		OAuthTokenSecret:     credentials.AccessTokenSecret,
		APIKey:               a.apiKey,
		APIKeySecret:         a.apiKeySecret,
	})
	if err != nil {
		return publishingDomain.PublishOutcome{}, err
	}

	res, err := managetweet.Create(ctx, client, &types.CreateInput{
		Text: gotwi.String(text),
	})
	if err != nil {
		return twitterFailure(err), nil
	}

	tweetID := gotwi.StringValue(res.Data.ID)
	return publishingDomain.Succeeded(tweetID, twitterStatusURL+tweetID), nil
}

const emptyStatusMessage = "post has no text, link or media to publish"

// composeText joins the post text, link and media URLs into a single status body.
// Media is shared by URL; neither adapter uploads attachments.
func composeText(content publishingDomain.Content) string {
	parts := make([]string, 0, 2+len(content.MediaURLs))
	for _, part := range append([]string{content.Text, content.Link}, content.MediaURLs...) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func twitterFailure(err error) publishingDomain.PublishOutcome {
	var gotwiErr *gotwi.GotwiError
	if errors.As(err, &gotwiErr) && gotwiErr.OnAPI {
		return publishingDomain.Failed(codeForStatus(gotwiErr.StatusCode), err.Error())
	}
	return publishingDomain.Failed(ErrorCodeNetworkError, err.Error())
}

// codeForStatus maps a non-2xx platform HTTP status to an adapter error code.
func codeForStatus(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorCodeRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorCodeUnauthorized
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return ErrorCodeInvalidContent
	default:
		return ErrorCodePlatformError
	}
}
