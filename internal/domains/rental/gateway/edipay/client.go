// Package edipay talks to the EdiPay payment provider. The wire format
// is EDIFACT over plain-text HTTP, with every message authenticated by
// an HMAC-SHA256 signature in the X-Signature header.
package edipay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"biblioconnect-backend/internal/domains/rental/gateway"
)

const (
	initiatePath = "/initiate_payment"
	statusPath   = "/payment_status"

	signatureHeader = "X-Signature"

	recipientID = "EDIPAY"
)

// Config carries the provider connection settings.
type Config struct {
	BaseURL string
	Secret  string
	Sender  string
	Timeout time.Duration
}

// Client implements gateway.PaymentGateway against an EdiPay endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

var _ gateway.PaymentGateway = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		now:  time.Now,
	}
}

// =====================================================
// OUTBOUND CALLS
// =====================================================

// StartSession initiates a payment and returns the provider reference
// plus the URL the user pays at.
func (c *Client) StartSession(ctx context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	body := c.envelope([]Segment{
		{Tag: "BGM", Elements: [][]string{{"351"}, {"Borrowing"}}},
		{Tag: "DTM", Elements: [][]string{{"137", req.BorrowDate.UTC().Format("20060102"), "102"}}},
		{Tag: "NAD", Elements: [][]string{{"BY"}, {req.UserRef}}},
		{Tag: "NAD", Elements: [][]string{{"SU"}, {req.BookRef}}},
		{Tag: "FTX", Elements: [][]string{{"AAI"}, {"Book Title"}, {req.BookTitle}}},
		{Tag: "MOA", Elements: [][]string{{"ZZZ"}, {"Amount"}, {req.Amount.StringFixed(2)}}},
		{Tag: "COM", Elements: [][]string{{"Callback URL"}, {req.CallbackURL}}},
	})

	segments, err := c.post(ctx, initiatePath, body)
	if err != nil {
		return nil, err
	}

	ref := paymentRef(segments)
	if ref == "" {
		return nil, fmt.Errorf("%w: initiate reply carries no payment reference", gateway.ErrMalformed)
	}

	com, ok := Find(segments, "COM")
	if !ok || com.Elem(1) == "" {
		return nil, fmt.Errorf("%w: initiate reply carries no payment URL", gateway.ErrMalformed)
	}

	return &gateway.Session{PaymentRef: ref, PaymentURL: com.Elem(1)}, nil
}

// QueryStatus polls the provider for the current outcome of a session.
func (c *Client) QueryStatus(ctx context.Context, paymentRef string) (gateway.Outcome, error) {
	body := c.envelope([]Segment{
		{Tag: "PID", Elements: [][]string{{paymentRef}}},
	})

	segments, err := c.post(ctx, statusPath, body)
	if err != nil {
		return "", err
	}
	return outcome(segments)
}

// ParseCallback verifies and decodes a provider-initiated status push.
func (c *Client) ParseCallback(body []byte, signature string) (*gateway.Callback, error) {
	if !VerifySignature(c.cfg.Secret, body, signature) {
		return nil, gateway.ErrBadSignature
	}

	segments, err := Decode(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrMalformed, err)
	}

	ref := paymentRef(segments)
	if ref == "" {
		return nil, fmt.Errorf("%w: callback carries no payment reference", gateway.ErrMalformed)
	}
	out, err := outcome(segments)
	if err != nil {
		return nil, err
	}

	return &gateway.Callback{PaymentRef: ref, Outcome: out}, nil
}

// =====================================================
// WIRE HELPERS
// =====================================================

// envelope wraps message segments in a UNB/UNZ interchange.
func (c *Client) envelope(segments []Segment) string {
	now := c.now().UTC()
	ctrlRef := now.Format("20060102150405")

	all := make([]Segment, 0, len(segments)+2)
	all = append(all, Segment{Tag: "UNB", Elements: [][]string{
		{"UNOA", "1"},
		{c.cfg.Sender},
		{recipientID},
		{now.Format("060102"), now.Format("1504")},
		{ctrlRef},
	}})
	all = append(all, segments...)
	all = append(all, Segment{Tag: "UNZ", Elements: [][]string{
		{fmt.Sprintf("%d", len(segments))},
		{ctrlRef},
	}})
	return Encode(all)
}

func (c *Client) post(ctx context.Context, path, body string) ([]Segment, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/plain")
	httpReq.Header.Set(signatureHeader, Sign(c.cfg.Secret, []byte(body)))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("payment gateway call failed")
		return nil, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %v", gateway.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("payment gateway rejected request")
		return nil, fmt.Errorf("%w: gateway replied %d", gateway.ErrUnavailable, resp.StatusCode)
	}

	segments, err := Decode(string(bytes.TrimSpace(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrMalformed, err)
	}
	return segments, nil
}

// paymentRef pulls the provider reference out of the PID segment. The
// provider sends it either as the third component of the first element
// or as a bare third element, depending on the message.
func paymentRef(segments []Segment) string {
	pid, ok := Find(segments, "PID")
	if !ok {
		return ""
	}
	if ref := pid.Comp(0, 2); ref != "" {
		return ref
	}
	return pid.Elem(2)
}

func outcome(segments []Segment) (gateway.Outcome, error) {
	sts, ok := Find(segments, "STS")
	if !ok {
		return "", fmt.Errorf("%w: no STS segment", gateway.ErrMalformed)
	}
	switch strings.ToLower(sts.Elem(0)) {
	case "pending", "open":
		return gateway.OutcomePending, nil
	case "success", "paid":
		return gateway.OutcomeSuccess, nil
	case "canceled", "cancelled", "failed":
		return gateway.OutcomeCanceled, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", gateway.ErrMalformed, sts.Elem(0))
}
