// Package notify sends the marketplace's notification emails through the
// SendGrid v3 mail API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no SendGrid API key was available at
// process start.
var ErrNotConfigured = errors.New("mail client is not configured")

const defaultBaseURL = "https://api.sendgrid.com"

// Client talks to the SendGrid mail/send endpoint.
type Client struct {
	apiKey     string
	from       string
	seller     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a mail client. from must be a verified sender
// identity; seller receives the interest notifications.
func NewClient(apiKey, from, seller string) *Client {
	return &Client{
		apiKey:  apiKey,
		from:    from,
		seller:  seller,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Interest is one purchase-interest submission. It is mailed out and
// never persisted.
type Interest struct {
	Name    string
	Email   string
	Message string
	Photo   string
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridEmail             `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To []sendGridEmail `json:"to"`
}

type sendGridEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *Client) configured() bool {
	return c != nil && c.apiKey != ""
}

// SendInterest mails two messages per submission: a notification to the
// seller and a confirmation back to the visitor. No retry on failure.
func (c *Client) SendInterest(ctx context.Context, interest Interest) error {
	if !c.configured() {
		return ErrNotConfigured
	}

	sellerBody := fmt.Sprintf(
		"New purchase interest from %s <%s>.\n\nPhoto: %s\n\nMessage:\n%s\n",
		interest.Name, interest.Email, interest.Photo, interest.Message)
	if err := c.send(ctx, c.seller, "", "New purchase interest", sellerBody); err != nil {
		return fmt.Errorf("notify seller: %w", err)
	}

	visitorBody := fmt.Sprintf(
		"Hi %s,\n\nThanks for your interest! I received your message and will get back to you shortly.\n",
		interest.Name)
	if err := c.send(ctx, interest.Email, interest.Name, "Thanks for your interest", visitorBody); err != nil {
		return fmt.Errorf("confirm visitor: %w", err)
	}
	return nil
}

// SendTest mails a single probe message to the seller address.
func (c *Client) SendTest(ctx context.Context) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	return c.send(ctx, c.seller, "", "Test email",
		"If you got this, the SendGrid integration works.\n")
}

func (c *Client) send(ctx context.Context, to, toName, subject, text string) error {
	request := sendGridRequest{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridEmail{{Email: to, Name: toName}}},
		},
		From:    sendGridEmail{Email: c.from},
		Subject: subject,
		Content: []sendGridContent{
			{Type: "text/plain", Value: text},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
