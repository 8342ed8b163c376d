// Package qrcode issues the codes printed on tables for customer ordering.
// Images are rendered by an external service; only its URL is built here.
package qrcode

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
)

// ImageSize is the size asked of the image service.
const ImageSize = "400x400"

// Floor resolves tables.
type Floor interface {
	Get(ctx context.Context, tableID string) (*model.Table, error)
}

// Config holds the QR code dependencies.
type Config struct {
	Codes  repository.Repository[*model.QRCode]
	Floor  Floor
	Clock  clock.Clock
	Logger *zap.Logger

	TTL           time.Duration
	PublicBaseURL string
	ImageBaseURL  string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Codes == nil {
		return errors.NotValidf("nil Codes")
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
	if c.TTL <= 0 {
		return errors.NotValidf("TTL %v", c.TTL)
	}
	if _, err := url.Parse(c.ImageBaseURL); err != nil || c.ImageBaseURL == "" {
		return errors.NotValidf("image base URL %q", c.ImageBaseURL)
	}
	return nil
}

// Service issues and resolves QR codes.
type Service struct {
	cfg Config
}

// NewService returns a QR code service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{cfg: cfg}, nil
}

// Generate issues a new code for a table.
func (s *Service) Generate(ctx context.Context, tableID string) (*model.QRCode, error) {
	table, err := s.cfg.Floor.Get(ctx, tableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	now := s.cfg.Clock.Now()
	code := &model.QRCode{
		Code:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		TableID:     table.ID,
		TableNumber: table.Number,
		ExpiresAt:   now.Add(s.cfg.TTL),
		CreatedAt:   now,
	}
	if err := s.cfg.Codes.Save(ctx, code); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("QR code generated",
		zap.String("table_id", table.ID),
		zap.Int("table_number", table.Number),
		zap.Time("expires_at", code.ExpiresAt))
	return code, nil
}

// Resolve returns the code if it has not expired and its table still exists.
func (s *Service) Resolve(ctx context.Context, code string) (*model.QRCode, error) {
	qr, err := s.cfg.Codes.Get(ctx, code)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !s.cfg.Clock.Now().Before(qr.ExpiresAt) {
		return nil, errors.Annotatef(apperror.Expired, "QR code for table %d", qr.TableNumber)
	}
	if _, err := s.cfg.Floor.Get(ctx, qr.TableID); err != nil {
		return nil, errors.Trace(err)
	}
	return qr, nil
}

// OrderURL is the customer ordering page a code points at.
func (s *Service) OrderURL(code string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/order?qr=" + url.QueryEscape(code)
}

// ImageURL is the image service URL rendering the code.
func (s *Service) ImageURL(code string) string {
	return s.cfg.ImageBaseURL + "?size=" + ImageSize + "&data=" + url.QueryEscape(s.OrderURL(code))
}
