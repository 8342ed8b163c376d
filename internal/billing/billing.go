// Package billing turns completed orders into bills and records payment.
package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/ledger"
	"restaurant-service/internal/model"
	"restaurant-service/internal/notify"
	"restaurant-service/internal/payment"
	"restaurant-service/internal/repository"
	"restaurant-service/prometheus"
)

// Ledger is the part of the order ledger billing needs.
type Ledger interface {
	List(ctx context.Context, filter ledger.Filter) ([]*model.Order, error)
	MarkPaid(ctx context.Context, orderID string) error
}

// Floor resolves tables.
type Floor interface {
	Get(ctx context.Context, tableID string) (*model.Table, error)
}

// Config holds the Billing dependencies.
type Config struct {
	Bills     repository.Repository[*model.Bill]
	Ledger    Ledger
	Floor     Floor
	Publisher notify.Publisher
	Clock     clock.Clock
	Logger    *zap.Logger

	// Processor captures card and digital payments. When nil those
	// payments are recorded without capture.
	Processor payment.Processor
	Currency  string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Bills == nil {
		return errors.NotValidf("nil Bills")
	}
	if c.Ledger == nil {
		return errors.NotValidf("nil Ledger")
	}
	if c.Floor == nil {
		return errors.NotValidf("nil Floor")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// Service owns bills.
type Service struct {
	cfg Config
}

// NewService returns a Billing service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = notify.Nop{}
	}
	return &Service{cfg: cfg}, nil
}

// GenerateBill bills every completed order of the table that is not on a
// bill yet. The total is fixed now.
func (s *Service) GenerateBill(ctx context.Context, tableID string) (*model.Bill, error) {
	if _, err := s.cfg.Floor.Get(ctx, tableID); err != nil {
		return nil, errors.Trace(err)
	}
	orders, err := s.cfg.Ledger.List(ctx, ledger.Filter{TableID: tableID, Status: model.OrderCompleted})
	if err != nil {
		return nil, errors.Trace(err)
	}
	billed, err := s.billedOrders(ctx, tableID)
	if err != nil {
		return nil, errors.Trace(err)
	}

	now := s.cfg.Clock.Now()
	bill := &model.Bill{
		ID:        uuid.NewString(),
		TableID:   tableID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	total := 0.0
	for _, o := range orders {
		if billed.Contains(o.ID) {
			continue
		}
		bill.OrderIDs = append(bill.OrderIDs, o.ID)
		total += o.Total
	}
	if len(bill.OrderIDs) == 0 {
		return nil, errors.Annotatef(apperror.NoCompletedOrders, "table %q", tableID)
	}
	bill.TotalAmount = model.RoundCents(total)

	if err := s.cfg.Bills.Save(ctx, bill); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Bill generated",
		zap.String("bill_id", bill.ID),
		zap.String("table_id", tableID),
		zap.Strings("order_ids", bill.OrderIDs),
		zap.Float64("total_amount", bill.TotalAmount))
	return bill, nil
}

// PayBill records payment of a bill and then marks its orders paid. Order
// failures are logged and can be retried with SettleOrders. The table is
// left as it is.
func (s *Service) PayBill(ctx context.Context, billID string, method model.PaymentMethod) (*model.Bill, error) {
	bill, err := s.cfg.Bills.Get(ctx, billID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if bill.IsPaid {
		return nil, errors.Annotatef(apperror.AlreadyPaid, "bill %q", billID)
	}
	if !method.Valid() {
		return nil, errors.NotValidf("payment method %q", method)
	}

	if method != model.PaymentCash && s.cfg.Processor != nil {
		ref, err := s.cfg.Processor.Capture(ctx, payment.Charge{
			Amount:    bill.TotalAmount,
			Currency:  s.cfg.Currency,
			Reference: bill.ID,
			Method:    string(method),
		})
		if err != nil {
			prometheus.RecordPaymentFailure()
			s.cfg.Logger.Warn("Payment capture failed",
				zap.String("bill_id", bill.ID),
				zap.String("method", string(method)),
				zap.Error(err))
			return nil, errors.Annotatef(apperror.PaymentFailed, "bill %q: %v", billID, err)
		}
		bill.ProcessorRef = ref
	}

	now := s.cfg.Clock.Now()
	bill.IsPaid = true
	bill.PaymentMethod = method
	bill.PaidAt = &now
	bill.UpdatedAt = now
	if err := s.cfg.Bills.Save(ctx, bill); err != nil {
		return nil, errors.Trace(err)
	}

	prometheus.RecordBillPaid(string(method))
	s.cfg.Logger.Info("Bill paid",
		zap.String("bill_id", bill.ID),
		zap.String("table_id", bill.TableID),
		zap.String("method", string(method)),
		zap.Float64("total_amount", bill.TotalAmount))

	s.settle(ctx, bill)
	if err := s.cfg.Publisher.Publish(ctx, notify.Event{
		Kind:       notify.BillPaid,
		BillID:     bill.ID,
		TableID:    bill.TableID,
		Total:      bill.TotalAmount,
		OccurredAt: now,
	}); err != nil {
		prometheus.RecordNotificationError()
		s.cfg.Logger.Warn("Failed to publish bill event", zap.String("bill_id", bill.ID), zap.Error(err))
	}
	return bill, nil
}

// SettleOrders retries marking the orders of a paid bill as paid. It
// returns the ids that still failed.
func (s *Service) SettleOrders(ctx context.Context, billID string) ([]string, error) {
	bill, err := s.cfg.Bills.Get(ctx, billID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !bill.IsPaid {
		return nil, errors.Annotatef(apperror.InvalidTransition, "bill %q is not paid", billID)
	}
	return s.settle(ctx, bill), nil
}

// Get returns a bill.
func (s *Service) Get(ctx context.Context, billID string) (*model.Bill, error) {
	bill, err := s.cfg.Bills.Get(ctx, billID)
	return bill, errors.Trace(err)
}

// List returns bills oldest first, for one table when tableID is set.
func (s *Service) List(ctx context.Context, tableID string) ([]*model.Bill, error) {
	bills, err := s.cfg.Bills.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if tableID == "" {
		return bills, nil
	}
	out := bills[:0]
	for _, b := range bills {
		if b.TableID == tableID {
			out = append(out, b)
		}
	}
	return out, nil
}

// OpenBill returns the newest unpaid bill of a table.
func (s *Service) OpenBill(ctx context.Context, tableID string) (*model.Bill, error) {
	bills, err := s.List(ctx, tableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for i := len(bills) - 1; i >= 0; i-- {
		if !bills[i].IsPaid {
			return bills[i], nil
		}
	}
	return nil, errors.NotFoundf("open bill for table %q", tableID)
}

func (s *Service) settle(ctx context.Context, bill *model.Bill) []string {
	var failed []string
	for _, id := range bill.OrderIDs {
		if err := s.cfg.Ledger.MarkPaid(ctx, id); err != nil {
			failed = append(failed, id)
			s.cfg.Logger.Error("Failed to mark order paid",
				zap.String("bill_id", bill.ID),
				zap.String("order_id", id),
				zap.Error(err))
		}
	}
	return failed
}

// billedOrders returns the ids of orders already on a bill for the table.
// Orders on paid bills count too.
func (s *Service) billedOrders(ctx context.Context, tableID string) (set.Strings, error) {
	bills, err := s.List(ctx, tableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	billed := set.NewStrings()
	for _, b := range bills {
		billed = billed.Union(set.NewStrings(b.OrderIDs...))
	}
	return billed, nil
}
