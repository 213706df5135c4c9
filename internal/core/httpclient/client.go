// Package httpclient configures the signed HTTP client used to call the SimpleGeo API.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
)

// NewOutbound creates the unsigned base client; a zero timeout means none.
func NewOutbound(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewSigned wraps base so every request carries a two-legged OAuth 1.0a
// HMAC-SHA1 signature: the token is the consumer key, the secret the consumer secret.
func NewSigned(base *http.Client, token, secret string) *http.Client {
	if base == nil {
		base = NewOutbound(0)
	}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	signed := oauth1.NewConfig(token, secret).Client(ctx, oauth1.NewToken("", ""))
	signed.Timeout = base.Timeout
	return signed
}
