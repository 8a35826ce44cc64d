package appconfig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FileClient serves configuration from a local JSON or YAML file using the same
// token protocol as AppConfig: tokens are single use, and a poll returns empty
// content when the file has not changed since the previous poll of the session.
// Starting a session for the same application, environment and profile
// replaces the previous one.
type FileClient struct {
	path string

	mu       sync.Mutex
	sessions map[string]fileSession // token -> session state
}

type fileSession struct {
	key    string
	digest string // content already delivered
}

// NewFileClient creates a client for the file at path
func NewFileClient(path string) *FileClient {
	return &FileClient{
		path:     path,
		sessions: make(map[string]fileSession),
	}
}

// StartSession issues a token that has not seen any content yet
func (c *FileClient) StartSession(_ context.Context, in SessionInput) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := in.Application + "/" + in.Environment + "/" + in.Profile
	for token, s := range c.sessions {
		if s.key == key {
			delete(c.sessions, token)
		}
	}

	token := uuid.NewString()
	c.sessions[token] = fileSession{key: key}
	return token, nil
}

// GetLatestConfiguration reads the file and consumes token
func (c *FileClient) GetLatestConfiguration(_ context.Context, token string) (*LatestConfiguration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token %q", ErrSessionInvalid, token)
	}
	delete(c.sessions, token)

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, &ConfigTransportError{Op: "ReadFile", Err: err}
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	next := uuid.NewString()
	c.sessions[next] = fileSession{key: session.key, digest: digest}

	latest := &LatestConfiguration{
		ContentType: contentTypeForFile(c.path),
		NextToken:   next,
	}
	if digest != session.digest {
		latest.Content = data
	}
	return latest, nil
}

func contentTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ContentTypeJSON
	case ".yaml", ".yml":
		return ContentTypeYAML
	default:
		return "text/plain"
	}
}
