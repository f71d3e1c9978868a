package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	proposalapp "github.com/protecta/backend/internal/application/proposal"
)

// ProposalHandler handles policy proposal API endpoints
type ProposalHandler struct {
	BaseHandler
	proposalService *proposalapp.ProposalService
}

// NewProposalHandler creates a new ProposalHandler
func NewProposalHandler(proposalService *proposalapp.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
	}
}

// bindProposalID parses the :id path parameter
func (h *ProposalHandler) bindProposalID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID format")
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// @Summary      Create a new policy proposal
// @Description  Register a customer's insurance proposal in RECEIVED state
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        request body proposalapp.CreateProposalRequest true "Proposal intake data"
// @Success      201 {object} dto.Response{data=proposalapp.ProposalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	var req proposalapp.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.proposalService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get proposal by ID
// @Description  Retrieve a policy proposal by its ID
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID" format(uuid)
// @Success      200 {object} dto.Response{data=proposalapp.ProposalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals/{id} [get]
func (h *ProposalHandler) GetByID(c *gin.Context) {
	id, ok := h.bindProposalID(c)
	if !ok {
		return
	}

	resp, err := h.proposalService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
// @Summary      List proposals
// @Description  Retrieve a paginated list of proposals with optional filtering
// @Tags         proposals
// @Produce      json
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        status query string false "Proposal status" Enums(RECEIVED, VALIDATED, PENDING, APPROVED, REJECTED, CANCELED)
// @Param        category query string false "Insurance category" Enums(AUTO, LIFE, RESIDENTIAL, BUSINESS, OTHER)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]proposalapp.ProposalListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
	var filter proposalapp.ProposalListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, total, err := h.proposalService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetHistory godoc
// @Summary      Get proposal history
// @Description  Retrieve the append-only audit trail of a proposal
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]proposalapp.HistoryEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals/{id}/history [get]
func (h *ProposalHandler) GetHistory(c *gin.Context) {
	id, ok := h.bindProposalID(c)
	if !ok {
		return
	}

	entries, err := h.proposalService.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// Validate godoc
// @Summary      Run underwriting validation
// @Description  Classify the customer's risk tier, apply the underwriting limit matrix and move an accepted proposal to PENDING
// @Tags         proposals
// @Produce      json
// @Param        id path string true "Proposal ID" format(uuid)
// @Success      200 {object} dto.Response{data=proposalapp.ProposalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals/{id}/validate [post]
func (h *ProposalHandler) Validate(c *gin.Context) {
	id, ok := h.bindProposalID(c)
	if !ok {
		return
	}

	resp, err := h.proposalService.Validate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecordPaymentVerdict godoc
// @Summary      Deliver the payment verdict
// @Description  Record the payment channel's verdict for a pending proposal. Each channel may report at most once.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposal ID" format(uuid)
// @Param        request body proposalapp.VerdictRequest true "Payment verdict"
// @Success      200 {object} dto.Response{data=proposalapp.ProposalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals/{id}/payment-verdict [post]
func (h *ProposalHandler) RecordPaymentVerdict(c *gin.Context) {
	id, ok := h.bindProposalID(c)
	if !ok {
		return
	}

	var req proposalapp.VerdictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.proposalService.RecordPaymentVerdict(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecordSubscriptionVerdict godoc
// @Summary      Deliver the subscription verdict
// @Description  Record the subscription analysis verdict for a pending proposal. Each channel may report at most once.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposal ID" format(uuid)
// @Param        request body proposalapp.VerdictRequest true "Subscription verdict"
// @Success      200 {object} dto.Response{data=proposalapp.ProposalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals/{id}/subscription-verdict [post]
func (h *ProposalHandler) RecordSubscriptionVerdict(c *gin.Context) {
	id, ok := h.bindProposalID(c)
	if !ok {
		return
	}

	var req proposalapp.VerdictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.proposalService.RecordSubscriptionVerdict(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a proposal
// @Description  Cancel a proposal that has not reached a terminal decision yet
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposal ID" format(uuid)
// @Param        request body proposalapp.CancelProposalRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=proposalapp.ProposalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /proposals/{id}/cancel [post]
func (h *ProposalHandler) Cancel(c *gin.Context) {
	id, ok := h.bindProposalID(c)
	if !ok {
		return
	}

	var req proposalapp.CancelProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.proposalService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
