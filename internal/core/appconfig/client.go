package appconfig

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSessionInvalid is returned by a Client when a configuration token has
// expired or is otherwise rejected. The Fetcher recovers from it once per Fetch.
var ErrSessionInvalid = errors.New("configuration session is no longer valid")

// SessionInput identifies the configuration to poll
type SessionInput struct {
	Application     string
	Environment     string
	Profile         string
	MinPollInterval time.Duration
}

// LatestConfiguration is one poll result. Empty Content means nothing changed
// since the token was issued.
type LatestConfiguration struct {
	Content          []byte
	ContentType      string
	NextPollInterval time.Duration
	NextToken        string
}

// Client talks to a remote configuration service that uses continuation tokens
type Client interface {
	// StartSession opens a session and returns the first configuration token
	StartSession(ctx context.Context, in SessionInput) (string, error)
	// GetLatestConfiguration polls with a token and returns the next token
	GetLatestConfiguration(ctx context.Context, token string) (*LatestConfiguration, error)
}

// ConfigTransportError wraps any failure from the configuration service other
// than an invalid session
type ConfigTransportError struct {
	Op  string
	Err error
}

func (e *ConfigTransportError) Error() string {
	return fmt.Sprintf("appconfig %s: %v", e.Op, e.Err)
}

func (e *ConfigTransportError) Unwrap() error {
	return e.Err
}
