// Package client exposes the console API client to other modules.
package client

import (
	"github.com/agentregistry-dev/agentconsole/internal/client"
)

type (
	Client        = client.Client
	APIError      = client.APIError
	ServerVersion = client.ServerVersion
)

// NewClientFromEnv reads CONSOLE_API_BASE_URL and CONSOLE_API_TOKEN and waits
// for the server to answer.
func NewClientFromEnv() (*Client, error) {
	return client.NewClientFromEnv()
}

func NewClient(baseURL, token string) *Client {
	return client.NewClient(baseURL, token)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return client.IsNotFound(err)
}
