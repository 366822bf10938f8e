package edipay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioconnect-backend/internal/domains/rental/gateway"
)

const testSecret = "test-secret"

func newTestClient(baseURL string) *Client {
	c := NewClient(Config{
		BaseURL: baseURL,
		Secret:  testSecret,
		Sender:  "BIBLIOCONNECT",
		Timeout: 2 * time.Second,
	})
	c.now = func() time.Time { return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC) }
	return c
}

func TestStartSession(t *testing.T) {
	var captured string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/initiate_payment", r.URL.Path)
		require.Equal(t, "text/plain", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		require.True(t, VerifySignature(testSecret, body, r.Header.Get("X-Signature")),
			"outgoing request must be signed")

		reply := Encode([]Segment{
			{Tag: "PID", Elements: [][]string{{"", "", "pay-42"}}},
			{Tag: "COM", Elements: [][]string{{"Payment URL"}, {"http://pay.example/s/pay-42"}}},
		})
		w.Write([]byte(reply))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session, err := client.StartSession(context.Background(), gateway.SessionRequest{
		UserRef:     "user-1",
		BookRef:     "book-1",
		BookTitle:   "Snow Crash",
		Amount:      decimal.RequireFromString("4.50"),
		BorrowDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CallbackURL: "http://api.example/webhooks/edipay",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay-42", session.PaymentRef)
	assert.Equal(t, "http://pay.example/s/pay-42", session.PaymentURL)

	segments, err := Decode(captured)
	require.NoError(t, err)

	bgm, ok := Find(segments, "BGM")
	require.True(t, ok)
	assert.Equal(t, "351", bgm.Elem(0))
	assert.Equal(t, "Borrowing", bgm.Elem(1))

	dtm, ok := Find(segments, "DTM")
	require.True(t, ok)
	assert.Equal(t, "20260310", dtm.Comp(0, 1))

	moa, ok := Find(segments, "MOA")
	require.True(t, ok)
	assert.Equal(t, "4.50", moa.Elem(2))

	com, ok := Find(segments, "COM")
	require.True(t, ok)
	assert.Equal(t, "http://api.example/webhooks/edipay", com.Elem(1))

	unb, ok := Find(segments, "UNB")
	require.True(t, ok)
	assert.Equal(t, "BIBLIOCONNECT", unb.Elem(1))
}

func TestStartSessionGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.StartSession(context.Background(), gateway.SessionRequest{})
	assert.ErrorIs(t, err, gateway.ErrUnavailable)

	srv.Close()
	_, err = client.StartSession(context.Background(), gateway.SessionRequest{})
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestQueryStatus(t *testing.T) {
	replies := map[string]gateway.Outcome{
		"pending":  gateway.OutcomePending,
		"success":  gateway.OutcomeSuccess,
		"paid":     gateway.OutcomeSuccess,
		"canceled": gateway.OutcomeCanceled,
	}

	for status, want := range replies {
		t.Run(status, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/payment_status", r.URL.Path)

				body, _ := io.ReadAll(r.Body)
				segments, err := Decode(string(body))
				require.NoError(t, err)
				pid, ok := Find(segments, "PID")
				require.True(t, ok)
				require.Equal(t, "pay-42", pid.Elem(0))

				w.Write([]byte(Encode([]Segment{{Tag: "STS", Elements: [][]string{{status}}}})))
			}))
			defer srv.Close()

			got, err := newTestClient(srv.URL).QueryStatus(context.Background(), "pay-42")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestQueryStatusUnknownOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Encode([]Segment{{Tag: "STS", Elements: [][]string{{"exploded"}}}})))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).QueryStatus(context.Background(), "pay-42")
	assert.ErrorIs(t, err, gateway.ErrMalformed)
}

func TestParseCallback(t *testing.T) {
	client := newTestClient("http://unused")

	body := []byte(Encode([]Segment{
		{Tag: "PID", Elements: [][]string{{"", "", "pay-42"}}},
		{Tag: "STS", Elements: [][]string{{"success"}}},
	}))

	t.Run("valid", func(t *testing.T) {
		cb, err := client.ParseCallback(body, Sign(testSecret, body))
		require.NoError(t, err)
		assert.Equal(t, "pay-42", cb.PaymentRef)
		assert.Equal(t, gateway.OutcomeSuccess, cb.Outcome)
	})

	t.Run("bad signature", func(t *testing.T) {
		_, err := client.ParseCallback(body, Sign("wrong", body))
		assert.ErrorIs(t, err, gateway.ErrBadSignature)
	})

	t.Run("missing reference", func(t *testing.T) {
		raw := []byte(Encode([]Segment{{Tag: "STS", Elements: [][]string{{"success"}}}}))
		_, err := client.ParseCallback(raw, Sign(testSecret, raw))
		assert.ErrorIs(t, err, gateway.ErrMalformed)
	})
}
