package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jc "github.com/juju/testing/checkers"
	"go.uber.org/zap"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/payment"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

type clientSuite struct {
	server  *httptest.Server
	handler http.HandlerFunc
	client  *payment.Client
}

var _ = gc.Suite(&clientSuite{})

func (s *clientSuite) SetUpTest(c *gc.C) {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.client = payment.NewClient(s.server.URL+"/", "secret", 2*time.Second, zap.NewNop())
}

func (s *clientSuite) TearDownTest(c *gc.C) {
	s.server.Close()
}

func (s *clientSuite) TestCaptureSucceeds(c *gc.C) {
	var got payment.Charge
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.Method, gc.Equals, http.MethodPost)
		c.Check(r.URL.Path, gc.Equals, "/charges")
		c.Check(r.Header.Get("Authorization"), gc.Equals, "Bearer secret")
		c.Check(r.Header.Get("Idempotency-Key"), gc.Equals, "bill-1")
		c.Check(json.NewDecoder(r.Body).Decode(&got), jc.ErrorIsNil)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payment.ChargeResponse{ID: "ch_123", Status: "succeeded"})
	}

	ref, err := s.client.Capture(context.Background(), payment.Charge{
		Amount: 21.6, Currency: "USD", Reference: "bill-1", Method: "card",
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(ref, gc.Equals, "ch_123")
	c.Check(got.Amount, gc.Equals, 21.6)
	c.Check(got.Method, gc.Equals, "card")
}

func (s *clientSuite) TestCaptureDeclined(c *gc.C) {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(payment.ChargeResponse{ID: "ch_9", Status: "declined", Message: "insufficient funds"})
	}
	_, err := s.client.Capture(context.Background(), payment.Charge{Reference: "bill-2"})
	c.Assert(err, gc.ErrorMatches, "payment declined: insufficient funds")
}

func (s *clientSuite) TestCaptureErrorBody(c *gc.C) {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(payment.ErrorResponse{Error: "invalid_amount", ErrorDescription: "amount must be positive"})
	}
	_, err := s.client.Capture(context.Background(), payment.Charge{Reference: "bill-3"})
	c.Assert(err, gc.ErrorMatches, "payment rejected: invalid_amount - amount must be positive")
}

func (s *clientSuite) TestCaptureServerError(c *gc.C) {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}
	_, err := s.client.Capture(context.Background(), payment.Charge{Reference: "bill-4"})
	c.Assert(err, gc.ErrorMatches, "payment processor returned 502")
}
