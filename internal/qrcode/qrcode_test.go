package qrcode_test

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/zap"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/floor"
	"restaurant-service/internal/model"
	"restaurant-service/internal/qrcode"
	"restaurant-service/internal/repository"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

type qrSuite struct {
	ctx   context.Context
	clock *testclock.Clock
	floor *floor.Service
	svc   *qrcode.Service
	table *model.Table
}

var _ = gc.Suite(&qrSuite{})

func (s *qrSuite) SetUpTest(c *gc.C) {
	s.ctx = context.Background()
	s.clock = testclock.NewClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	var err error
	s.floor, err = floor.NewService(floor.Config{
		Tables: repository.NewMemory[*model.Table]("table"),
		Clock:  s.clock,
		Logger: zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIsNil)
	s.svc, err = qrcode.NewService(qrcode.Config{
		Codes:         repository.NewMemory[*model.QRCode]("qr code"),
		Floor:         s.floor,
		Clock:         s.clock,
		Logger:        zap.NewNop(),
		TTL:           24 * time.Hour,
		PublicBaseURL: "https://bistro.example/",
		ImageBaseURL:  "https://api.qrserver.com/v1/create-qr-code/",
	})
	c.Assert(err, jc.ErrorIsNil)
	s.table, err = s.floor.Create(s.ctx, floor.NewTable{Number: 12, Capacity: 4})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *qrSuite) TestGenerateAndResolve(c *gc.C) {
	qr, err := s.svc.Generate(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(qr.TableNumber, gc.Equals, 12)
	c.Check(qr.ExpiresAt.Equal(s.clock.Now().Add(24*time.Hour)), jc.IsTrue)

	s.clock.Advance(23 * time.Hour)
	got, err := s.svc.Resolve(s.ctx, qr.Code)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.TableID, gc.Equals, s.table.ID)
}

func (s *qrSuite) TestResolveExpired(c *gc.C) {
	qr, err := s.svc.Generate(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)

	s.clock.Advance(24 * time.Hour)
	_, err = s.svc.Resolve(s.ctx, qr.Code)
	c.Assert(err, jc.ErrorIs, apperror.Expired)
}

func (s *qrSuite) TestResolveDeletedTable(c *gc.C) {
	qr, err := s.svc.Generate(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(s.floor.Delete(s.ctx, s.table.ID), jc.ErrorIsNil)

	_, err = s.svc.Resolve(s.ctx, qr.Code)
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}

func (s *qrSuite) TestUnknown(c *gc.C) {
	_, err := s.svc.Generate(s.ctx, "missing")
	c.Check(err, jc.ErrorIs, errors.NotFound)
	_, err = s.svc.Resolve(s.ctx, "missing")
	c.Check(err, jc.ErrorIs, errors.NotFound)
}

func (s *qrSuite) TestImageURL(c *gc.C) {
	c.Check(s.svc.OrderURL("abc"), gc.Equals, "https://bistro.example/order?qr=abc")
	c.Check(s.svc.ImageURL("abc"), gc.Equals,
		"https://api.qrserver.com/v1/create-qr-code/?size=400x400&data=https%3A%2F%2Fbistro.example%2Forder%3Fqr%3Dabc")
}

func (s *qrSuite) TestConfigValidate(c *gc.C) {
	_, err := qrcode.NewService(qrcode.Config{
		Codes:  repository.NewMemory[*model.QRCode]("qr code"),
		Floor:  s.floor,
		Clock:  s.clock,
		Logger: zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIs, errors.NotValid)
}
