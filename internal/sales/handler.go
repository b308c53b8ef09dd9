package sales

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/docket-th/docket/internal/platform/httpx"
	"github.com/docket-th/docket/internal/shared"
)

// Handler exposes quotation and invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers quotation and invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.ListQuotations)
		r.Post("/", h.CreateQuotation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ShowQuotation)
			r.Put("/", h.UpdateQuotation)
			r.Delete("/", h.DeleteQuotation)
			r.Patch("/status", h.UpdateQuotationStatus)
			r.Post("/convert-to-invoice", h.ConvertQuotation)
			r.Post("/signature", h.AddQuotationSignature)
			r.Post("/images", h.AddQuotationImages)
			r.Delete("/images/{imageID}", h.DeleteQuotationImage)
		})
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.ListInvoices)
		r.Post("/", h.CreateInvoice)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ShowInvoice)
			r.Delete("/", h.DeleteInvoice)
			r.Patch("/status", h.UpdateInvoiceStatus)
			r.Post("/payments", h.RecordPayment)
			r.Post("/signature", h.AddInvoiceSignature)
			r.Post("/images", h.AddInvoiceImages)
			r.Delete("/images/{imageID}", h.DeleteInvoiceImage)
		})
	})
}

// ============================================================================
// QUOTATIONS
// ============================================================================

func (h *Handler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.LimitOffset(r)
	req := ListQuotationsRequest{Limit: limit, Offset: offset}
	if status := r.URL.Query().Get("status"); status != "" {
		qs := QuotationStatus(status)
		req.Status = &qs
	}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
	}

	result, total, err := h.service.ListQuotations(r.Context(), req)
	if err != nil {
		h.logger.Error("list quotations failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Quotation{}
	}
	httpx.Page(w, http.StatusOK, result, limit, offset, total)
}

func (h *Handler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	quotation, err := h.service.CreateQuotation(r.Context(), req)
	if err != nil {
		h.logger.Error("create quotation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, quotation)
}

func (h *Handler) ShowQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid quotation id")
		return
	}
	quotation, err := h.service.GetQuotation(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, quotation)
}

func (h *Handler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid quotation id")
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	quotation, err := h.service.UpdateQuotation(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update quotation failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, quotation)
}

func (h *Handler) UpdateQuotationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid quotation id")
		return
	}
	var req QuotationStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	quotation, err := h.service.UpdateQuotationStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, quotation)
}

func (h *Handler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid quotation id")
		return
	}
	if err := h.service.DeleteQuotation(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) ConvertQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid quotation id")
		return
	}
	var req ConvertQuotationRequest
	// Body is optional for conversion.
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Message(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	invoice, err := h.service.ConvertToInvoice(r.Context(), id, req)
	if err != nil {
		h.logger.Error("convert quotation failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, invoice)
}

func (h *Handler) AddQuotationSignature(w http.ResponseWriter, r *http.Request) {
	h.addSignature(w, r, DocumentKindQuotation)
}

func (h *Handler) AddQuotationImages(w http.ResponseWriter, r *http.Request) {
	h.addImages(w, r, DocumentKindQuotation)
}

func (h *Handler) DeleteQuotationImage(w http.ResponseWriter, r *http.Request) {
	h.deleteImage(w, r, DocumentKindQuotation)
}

// ============================================================================
// INVOICES
// ============================================================================

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.LimitOffset(r)
	req := ListInvoicesRequest{Limit: limit, Offset: offset}
	if status := r.URL.Query().Get("status"); status != "" {
		is := InvoiceStatus(status)
		req.Status = &is
	}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
	}

	result, total, err := h.service.ListInvoices(r.Context(), req)
	if err != nil {
		h.logger.Error("list invoices failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Invoice{}
	}
	httpx.Page(w, http.StatusOK, result, limit, offset, total)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	invoice, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		h.logger.Error("create invoice failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, invoice)
}

func (h *Handler) ShowInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	invoice, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, invoice)
}

func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req InvoiceStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	invoice, err := h.service.UpdateInvoiceStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, invoice)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	invoice, err := h.service.RecordPayment(r.Context(), id, req)
	if err != nil {
		h.logger.Error("record payment failed", slog.Int64("invoice_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, invoice)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) AddInvoiceSignature(w http.ResponseWriter, r *http.Request) {
	h.addSignature(w, r, DocumentKindInvoice)
}

func (h *Handler) AddInvoiceImages(w http.ResponseWriter, r *http.Request) {
	h.addImages(w, r, DocumentKindInvoice)
}

func (h *Handler) DeleteInvoiceImage(w http.ResponseWriter, r *http.Request) {
	h.deleteImage(w, r, DocumentKindInvoice)
}

// ============================================================================
// SHARED EVIDENCE HANDLERS
// ============================================================================

func (h *Handler) addSignature(w http.ResponseWriter, r *http.Request, kind DocumentKind) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req AddSignatureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	sig, err := h.service.AddSignature(r.Context(), kind, id, req)
	if err != nil {
		h.logger.Error("add signature failed",
			slog.String("kind", string(kind)), slog.Int64("doc_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, sig)
}

func (h *Handler) addImages(w http.ResponseWriter, r *http.Request, kind DocumentKind) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req AddImagesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	images, err := h.service.AddImages(r.Context(), kind, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, images)
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request, kind DocumentKind) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid document id")
		return
	}
	imageID, err := parseParam(r, "imageID")
	if err != nil {
		httpx.Message(w, http.StatusBadRequest, "invalid image id")
		return
	}
	if err := h.service.DeleteImage(r.Context(), kind, id, imageID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, map[string]int64{"id": imageID})
}

func parseParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
