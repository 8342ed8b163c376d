package billing_test

import (
	"context"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/billing"
	"restaurant-service/internal/catalog"
	"restaurant-service/internal/floor"
	"restaurant-service/internal/ledger"
	"restaurant-service/internal/model"
	"restaurant-service/internal/payment"
	"restaurant-service/internal/repository"
)

// flakyLedger fails MarkPaid for the listed orders.
type flakyLedger struct {
	*ledger.Service
	failing map[string]bool
}

func (l *flakyLedger) MarkPaid(ctx context.Context, orderID string) error {
	if l.failing[orderID] {
		return errors.New("store hiccup")
	}
	return l.Service.MarkPaid(ctx, orderID)
}

type billingSuite struct {
	ctx    context.Context
	clock  *testclock.Clock
	floor  *floor.Service
	ledger *flakyLedger
	bills  *repository.Memory[*model.Bill]

	table *model.Table
	item  *model.MenuItem
}

var _ = gc.Suite(&billingSuite{})

func (s *billingSuite) SetUpTest(c *gc.C) {
	s.ctx = context.Background()
	s.clock = testclock.NewClock(time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC))

	var err error
	s.floor, err = floor.NewService(floor.Config{
		Tables: repository.NewMemory[*model.Table]("table"),
		Clock:  s.clock,
		Logger: zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIsNil)
	cat, err := catalog.NewService(catalog.Config{
		Items:  repository.NewMemory[*model.MenuItem]("menu item"),
		Clock:  s.clock,
		Logger: zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIsNil)
	led, err := ledger.NewService(ledger.Config{
		Orders:  repository.NewMemory[*model.Order]("order"),
		Catalog: cat,
		Floor:   s.floor,
		Clock:   s.clock,
		Logger:  zap.NewNop(),
		TaxRate: 0.08,
	})
	c.Assert(err, jc.ErrorIsNil)
	s.ledger = &flakyLedger{Service: led, failing: make(map[string]bool)}
	s.bills = repository.NewMemory[*model.Bill]("bill")

	s.table, err = s.floor.Create(s.ctx, floor.NewTable{Number: 5, Capacity: 4})
	c.Assert(err, jc.ErrorIsNil)
	s.item, err = cat.Create(s.ctx, catalog.NewMenuItem{Name: "Item A", Price: 10, PrepTimeMinutes: 10})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *billingSuite) newService(c *gc.C, processor payment.Processor) *billing.Service {
	svc, err := billing.NewService(billing.Config{
		Bills:     s.bills,
		Ledger:    s.ledger,
		Floor:     s.floor,
		Clock:     s.clock,
		Logger:    zap.NewNop(),
		Processor: processor,
		Currency:  "USD",
	})
	c.Assert(err, jc.ErrorIsNil)
	return svc
}

// completedOrder places an order of quantity and walks it to completed.
func (s *billingSuite) completedOrder(c *gc.C, quantity int) *model.Order {
	order, err := s.ledger.CreateOrder(s.ctx, ledger.NewOrder{
		TableID: s.table.ID,
		Lines:   []ledger.LineRequest{{MenuItemID: s.item.ID, Quantity: quantity}},
	})
	c.Assert(err, jc.ErrorIsNil)
	for _, st := range []model.OrderStatus{model.OrderPreparing, model.OrderReady, model.OrderCompleted} {
		order, err = s.ledger.AdvanceStatus(s.ctx, order.ID, st)
		c.Assert(err, jc.ErrorIsNil)
	}
	return order
}

func (s *billingSuite) TestGenerateBillNoCompletedOrders(c *gc.C) {
	svc := s.newService(c, nil)

	_, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIs, apperror.NoCompletedOrders)

	// Orders still in the kitchen do not count.
	_, err = s.ledger.CreateOrder(s.ctx, ledger.NewOrder{
		TableID: s.table.ID,
		Lines:   []ledger.LineRequest{{MenuItemID: s.item.ID, Quantity: 1}},
	})
	c.Assert(err, jc.ErrorIsNil)
	_, err = svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIs, apperror.NoCompletedOrders)
}

func (s *billingSuite) TestGenerateBillUnknownTable(c *gc.C) {
	svc := s.newService(c, nil)
	_, err := svc.GenerateBill(s.ctx, "missing")
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}

func (s *billingSuite) TestGenerateBillSnapshotsTotal(c *gc.C) {
	svc := s.newService(c, nil)
	a := s.completedOrder(c, 2)
	b := s.completedOrder(c, 1)

	bill, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(bill.OrderIDs, jc.SameContents, []string{a.ID, b.ID})
	c.Check(bill.TotalAmount, gc.Equals, 32.40)
	c.Check(bill.IsPaid, jc.IsFalse)

	// The orders are on an unpaid bill now.
	_, err = svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIs, apperror.NoCompletedOrders)

	// A later order gets its own bill.
	d := s.completedOrder(c, 1)
	next, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(next.OrderIDs, gc.DeepEquals, []string{d.ID})

	open, err := svc.OpenBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(open.ID, gc.Equals, next.ID)
}

func (s *billingSuite) TestPayBillCash(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	// Cash never reaches the processor.
	svc := s.newService(c, NewMockProcessor(ctrl))

	order := s.completedOrder(c, 2)
	bill, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	_, err = s.floor.Allocate(s.ctx, s.table.ID, "Diaz", 2)
	c.Assert(err, jc.ErrorIsNil)

	paid, err := svc.PayBill(s.ctx, bill.ID, model.PaymentCash)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(paid.IsPaid, jc.IsTrue)
	c.Check(paid.PaymentMethod, gc.Equals, model.PaymentCash)
	c.Assert(paid.PaidAt, gc.NotNil)
	c.Check(paid.PaidAt.Equal(s.clock.Now()), jc.IsTrue)

	got, err := s.ledger.Get(s.ctx, order.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.OrderPaid)

	// Paying does not free the table.
	table, err := s.floor.Get(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(table.Status, gc.Equals, model.TableOccupied)
}

func (s *billingSuite) TestPayBillTwice(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	processor := NewMockProcessor(ctrl)
	svc := s.newService(c, processor)

	s.completedOrder(c, 1)
	bill, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)

	processor.EXPECT().Capture(gomock.Any(), payment.Charge{
		Amount:    10.80,
		Currency:  "USD",
		Reference: bill.ID,
		Method:    "card",
	}).Return("ch_1", nil).Times(1)

	paid, err := svc.PayBill(s.ctx, bill.ID, model.PaymentCard)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(paid.ProcessorRef, gc.Equals, "ch_1")

	_, err = svc.PayBill(s.ctx, bill.ID, model.PaymentDigital)
	c.Assert(err, jc.ErrorIs, apperror.AlreadyPaid)

	stored, err := svc.Get(s.ctx, bill.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(stored.PaymentMethod, gc.Equals, model.PaymentCard)
	c.Check(stored.ProcessorRef, gc.Equals, "ch_1")
}

func (s *billingSuite) TestPayBillDeclined(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	processor := NewMockProcessor(ctrl)
	svc := s.newService(c, processor)

	order := s.completedOrder(c, 1)
	bill, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)

	processor.EXPECT().Capture(gomock.Any(), gomock.Any()).Return("", errors.New("card declined"))

	_, err = svc.PayBill(s.ctx, bill.ID, model.PaymentDigital)
	c.Assert(err, jc.ErrorIs, apperror.PaymentFailed)

	stored, err := svc.Get(s.ctx, bill.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(stored.IsPaid, jc.IsFalse)
	got, err := s.ledger.Get(s.ctx, order.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.OrderCompleted)
}

func (s *billingSuite) TestPayBillValidation(c *gc.C) {
	svc := s.newService(c, nil)
	_, err := svc.PayBill(s.ctx, "missing", model.PaymentCash)
	c.Check(err, jc.ErrorIs, errors.NotFound)

	s.completedOrder(c, 1)
	bill, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)
	_, err = svc.PayBill(s.ctx, bill.ID, model.PaymentMethod("cheque"))
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *billingSuite) TestSettleRetry(c *gc.C) {
	svc := s.newService(c, nil)
	a := s.completedOrder(c, 1)
	b := s.completedOrder(c, 1)
	bill, err := svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)

	_, err = svc.SettleOrders(s.ctx, bill.ID)
	c.Assert(err, jc.ErrorIs, apperror.InvalidTransition)

	s.ledger.failing[b.ID] = true
	paid, err := svc.PayBill(s.ctx, bill.ID, model.PaymentCash)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(paid.IsPaid, jc.IsTrue)

	got, err := s.ledger.Get(s.ctx, a.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.OrderPaid)
	got, err = s.ledger.Get(s.ctx, b.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.OrderCompleted)

	// The unsettled order is still on a bill.
	_, err = svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIs, apperror.NoCompletedOrders)

	failed, err := svc.SettleOrders(s.ctx, bill.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(failed, gc.DeepEquals, []string{b.ID})

	delete(s.ledger.failing, b.ID)
	failed, err = svc.SettleOrders(s.ctx, bill.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(failed, gc.HasLen, 0)
	got, err = s.ledger.Get(s.ctx, b.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.OrderPaid)
}

func (s *billingSuite) TestListByTable(c *gc.C) {
	svc := s.newService(c, nil)
	other, err := s.floor.Create(s.ctx, floor.NewTable{Number: 9, Capacity: 2})
	c.Assert(err, jc.ErrorIsNil)
	s.completedOrder(c, 1)
	_, err = svc.GenerateBill(s.ctx, s.table.ID)
	c.Assert(err, jc.ErrorIsNil)

	all, err := svc.List(s.ctx, "")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(all, gc.HasLen, 1)
	none, err := svc.List(s.ctx, other.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(none, gc.HasLen, 0)

	_, err = svc.OpenBill(s.ctx, other.ID)
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}
