package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wmou-edu/portal-api/internal/dto"
	"github.com/wmou-edu/portal-api/internal/models"
	"github.com/wmou-edu/portal-api/internal/service"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
	"github.com/wmou-edu/portal-api/pkg/response"
	"github.com/wmou-edu/portal-api/pkg/storage"
)

// PaymentHandler exposes the payment submission and review endpoints.
type PaymentHandler struct {
	payments  *service.PaymentService
	dashboard *service.DashboardService
	receipts  *storage.LocalStorage
	signer    *storage.SignedURLSigner
	maxUpload int64
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, dashboard *service.DashboardService, receipts *storage.LocalStorage, signer *storage.SignedURLSigner, maxUpload int64) *PaymentHandler {
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &PaymentHandler{
		payments:  payments,
		dashboard: dashboard,
		receipts:  receipts,
		signer:    signer,
		maxUpload: maxUpload,
	}
}

// Submit records a single-course payment claim (multipart form).
func (h *PaymentHandler) Submit(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courseID := c.PostForm("course_id")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_id is required"))
		return
	}
	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "amount must be a positive number"))
		return
	}

	receipt, cleanup, err := h.openReceipt(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	payment, err := h.payments.Submit(c.Request.Context(), claims.UserID, courseID, amount, receipt)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateAdmin(c.Request.Context())
	response.Created(c, payment)
}

// SubmitBulk records one claim per course against a single receipt.
func (h *PaymentHandler) SubmitBulk(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courseIDs := c.PostFormArray("course_ids")
	if len(courseIDs) == 1 && strings.Contains(courseIDs[0], ",") {
		courseIDs = strings.Split(courseIDs[0], ",")
	}
	for i := range courseIDs {
		courseIDs[i] = strings.TrimSpace(courseIDs[i])
	}

	total, err := strconv.ParseFloat(c.PostForm("total"), 64)
	if err != nil || total <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "total must be a positive number"))
		return
	}

	receipt, cleanup, err := h.openReceipt(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	resp, err := h.payments.SubmitBulk(c.Request.Context(), claims.UserID, courseIDs, total, receipt)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateAdmin(c.Request.Context())
	response.Created(c, resp)
}

// Review records the admin decision on a claim.
func (h *PaymentHandler) Review(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	resp, err := h.payments.Review(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateAdmin(c.Request.Context())
	response.JSON(c, http.StatusOK, resp, nil)
}

// List returns the admin payment ledger.
func (h *PaymentHandler) List(c *gin.Context) {
	var filter models.PaymentFilter
	filter.Status = models.PaymentStatus(strings.ToLower(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Export streams the full ledger as CSV or PDF.
func (h *PaymentHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.payments.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "payments." + strings.ToLower(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// ReceiptLink returns a short-lived signed download URL for a receipt.
func (h *PaymentHandler) ReceiptLink(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.Role != models.RoleAdmin && payment.StudentID != claims.UserID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	token, expiresAt, err := h.signer.Generate(payment.ID, payment.ReceiptURL)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign receipt link"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}

// DownloadReceipt serves a receipt file referenced by a signed token.
// The token itself authenticates the request.
func (h *PaymentHandler) DownloadReceipt(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token"))
		return
	}
	c.File(h.receipts.Path(relPath))
}

func (h *PaymentHandler) openReceipt(c *gin.Context) (service.ReceiptUpload, func(), error) {
	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return service.ReceiptUpload{}, func() {}, appErrors.Clone(appErrors.ErrValidation, "receipt file is required")
	}
	if fileHeader.Size > h.maxUpload {
		return service.ReceiptUpload{}, func() {}, appErrors.Clone(appErrors.ErrValidation, "receipt file is too large")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return service.ReceiptUpload{}, func() {}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload")
	}
	cleanup := func() { _ = file.Close() }
	return service.ReceiptUpload{Filename: fileHeader.Filename, Content: file}, cleanup, nil
}
