package executor

import (
	"fmt"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/studiowebux/mimic/internal/types"
)

// Client is the part of an impersonating HTTP client the executor needs
type Client interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// ClientOptions configures the client built for a single invocation
type ClientOptions struct {
	Profile types.Profile
	Proxy   string
	Timeout time.Duration
}

// ClientFactory builds the client for one invocation
type ClientFactory func(opts ClientOptions) (Client, error)

// profileClient pins the profile's User-Agent on every request
type profileClient struct {
	tls_client.HttpClient
	userAgent string
}

func (c *profileClient) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.HttpClient.Do(req)
}

// LookupProfile resolves a tls-client profile by its mapped name
func LookupProfile(name string) (profiles.ClientProfile, error) {
	profile, ok := profiles.MappedTLSClients[name]
	if !ok {
		return profiles.ClientProfile{}, fmt.Errorf("unknown impersonation profile %q", name)
	}
	return profile, nil
}

// NewTLSClient builds a tls-client presenting opts.Profile.
// A proxy, when set, carries both http and https traffic.
func NewTLSClient(opts ClientOptions) (Client, error) {
	profile, err := LookupProfile(opts.Profile.Name)
	if err != nil {
		return nil, err
	}
	if opts.Profile.UserAgent == "" {
		return nil, fmt.Errorf("profile %q has no user agent", opts.Profile.Name)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = RequestTimeout
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout / time.Second)),
		tls_client.WithClientProfile(profile),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	if opts.Proxy != "" {
		options = append(options, tls_client.WithProxyUrl(opts.Proxy))
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("tls-client init: %w", err)
	}

	return &profileClient{HttpClient: client, userAgent: opts.Profile.UserAgent}, nil
}
