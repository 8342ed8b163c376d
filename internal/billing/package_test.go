package billing_test

import (
	"testing"

	gc "gopkg.in/check.v1"
)

//go:generate go run go.uber.org/mock/mockgen -package billing_test -destination processor_mock_test.go restaurant-service/internal/payment Processor

func Test(t *testing.T) {
	gc.TestingT(t)
}
