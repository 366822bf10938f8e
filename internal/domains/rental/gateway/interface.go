// Package gateway defines the payment provider port used by the rental
// service. The ledger only ever sees opaque references and a coarse
// outcome; everything provider-specific lives behind this interface.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable covers transport failures, timeouts and non-2xx
	// replies. Callers treat it as transient.
	ErrUnavailable = errors.New("payment gateway unavailable")

	// ErrBadSignature marks a callback whose HMAC does not verify.
	ErrBadSignature = errors.New("payment callback signature mismatch")

	// ErrMalformed marks a reply or callback the codec cannot interpret.
	ErrMalformed = errors.New("malformed payment gateway message")
)

// Outcome is the coarse provider-side state of a payment session.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeSuccess  Outcome = "success"
	OutcomeCanceled Outcome = "canceled"
)

// SessionRequest describes the payment to initiate. UserRef and BookRef
// are ledger identifiers echoed back by the provider, never interpreted
// by it.
type SessionRequest struct {
	UserRef     string
	BookRef     string
	BookTitle   string
	Amount      decimal.Decimal
	BorrowDate  time.Time
	CallbackURL string
}

// Session is an initiated payment: the opaque provider reference and the
// URL the user completes the payment at.
type Session struct {
	PaymentRef string
	PaymentURL string
}

// Callback is a provider-initiated status push, already parsed and
// signature-checked.
type Callback struct {
	PaymentRef string
	Outcome    Outcome
}

// PaymentGateway is the provider port. StartSession and QueryStatus make
// outbound calls and honor ctx deadlines; ParseCallback is pure apart
// from signature verification.
type PaymentGateway interface {
	StartSession(ctx context.Context, req SessionRequest) (*Session, error)
	QueryStatus(ctx context.Context, paymentRef string) (Outcome, error)
	ParseCallback(body []byte, signature string) (*Callback, error)
}
