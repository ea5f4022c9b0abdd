package remote

import (
	"context"
	"strings"
	"sync"
)

// StaticCredentials holds a bearer token set by the caller after sign-in.
type StaticCredentials struct {
	mu    sync.RWMutex
	token string
}

func NewStaticCredentials(token string) *StaticCredentials {
	return &StaticCredentials{token: strings.TrimSpace(token)}
}

func (c *StaticCredentials) Token(_ context.Context) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != ""
}

// Set replaces the token; an empty token signs the user out.
func (c *StaticCredentials) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}
