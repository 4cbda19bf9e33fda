// Package messaging sends WhatsApp text messages through an HTTP gateway.
// A client is built from configuration at startup and holds no other state.
package messaging

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/netx"
)

var ErrNotConfigured = errors.New("messaging gateway is not configured")

const defaultTimeout = 10 * time.Second

type textBody struct {
	Body string `json:"body"`
}

type sendRequest struct {
	To   string   `json:"to"`
	From string   `json:"from,omitempty"`
	Type string   `json:"type"`
	Text textBody `json:"text"`
}

// GatewayClient posts messages to the configured gateway URL.
type GatewayClient struct {
	url    string
	apiKey string
	sender string
	http   *http.Client
}

func NewGatewayClient(url, apiKey, sender string) *GatewayClient {
	return &GatewayClient{
		url:    url,
		apiKey: apiKey,
		sender: sender,
		http:   &http.Client{Timeout: defaultTimeout},
	}
}

// Enabled reports whether a gateway URL is configured.
func (c *GatewayClient) Enabled() bool {
	return c != nil && c.url != ""
}

// Send delivers body to the phone number to.
func (c *GatewayClient) Send(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	_, err := netx.PostJSON(ctx, c.http, c.url, headers, sendRequest{
		To:   NormalizeNumber(to),
		From: c.sender,
		Type: "text",
		Text: textBody{Body: body},
	})
	return err
}

// NormalizeNumber drops everything but digits and a leading plus sign.
func NormalizeNumber(n string) string {
	n = strings.TrimSpace(n)
	var b strings.Builder
	for i, r := range n {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
