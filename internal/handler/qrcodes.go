package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"restaurant-service/internal/model"
	"restaurant-service/pkg/logger"
)

// QRCodeRequest asks for a code for a table.
type QRCodeRequest struct {
	TableID string `json:"table_id"`
}

// QRCodeResponse is a code with the URLs it renders to.
type QRCodeResponse struct {
	*model.QRCode
	OrderURL string `json:"order_url"`
	ImageURL string `json:"image_url"`
}

func (h *Handler) qrResponse(qr *model.QRCode) QRCodeResponse {
	return QRCodeResponse{
		QRCode:   qr,
		OrderURL: h.cfg.QRCodes.OrderURL(qr.Code),
		ImageURL: h.cfg.QRCodes.ImageURL(qr.Code),
	}
}

// GenerateQRCode handles issuing a code for a table
func (h *Handler) GenerateQRCode(c echo.Context) error {
	var req QRCodeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	qr, err := h.cfg.QRCodes.Generate(c.Request().Context(), req.TableID)
	if err != nil {
		return respondError(c, err, "Failed to generate QR code")
	}
	logger.FromContext(c).Info("QR code issued",
		zap.String("table_id", qr.TableID),
		zap.Time("expires_at", qr.ExpiresAt))
	return c.JSON(http.StatusCreated, h.qrResponse(qr))
}

// ResolveQRCode handles a customer scanning a code
func (h *Handler) ResolveQRCode(c echo.Context) error {
	qr, err := h.cfg.QRCodes.Resolve(c.Request().Context(), c.Param("code"))
	if err != nil {
		return respondError(c, err, "Failed to resolve QR code")
	}
	return c.JSON(http.StatusOK, h.qrResponse(qr))
}
