package domain

// Error codes recorded on failed targets by the pipeline itself. Adapters report their
// own platform codes (e.g. RATE_LIMIT) through PublishOutcome.
const (
	ErrorCodeIntegrationDisabled    = "INTEGRATION_DISABLED"
	ErrorCodeTokenExpired           = "TOKEN_EXPIRED"
	ErrorCodeAccountUnavailable     = "ACCOUNT_UNAVAILABLE"
	ErrorCodeException              = "EXCEPTION"
	ErrorCodeUnsupportedPlatform    = "UNSUPPORTED_PLATFORM"
	ErrorCodeCredentialsUnavailable = "CREDENTIALS_UNAVAILABLE"
)

// PublishOutcome is the verdict of one delivery attempt. It is the only channel through
// which adapter results enter the pipeline.
type PublishOutcome struct {
	Success      bool
	ExternalID   string
	ExternalURL  string
	ErrorCode    string
	ErrorMessage string
}

// Succeeded builds a successful outcome.
func Succeeded(externalID, externalURL string) PublishOutcome {
	return PublishOutcome{Success: true, ExternalID: externalID, ExternalURL: externalURL}
}

// Failed builds a failed outcome.
func Failed(code, message string) PublishOutcome {
	return PublishOutcome{ErrorCode: code, ErrorMessage: message}
}
