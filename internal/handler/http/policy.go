package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gajihub/payroll-core-go/internal/domain/policy"
	"github.com/gajihub/payroll-core-go/internal/handler/http/response"
	policyservice "github.com/gajihub/payroll-core-go/internal/service/policy"
)

type PolicyHandler interface {
	GetActive(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	CreateVersion(w http.ResponseWriter, r *http.Request)
	UpdateActive(w http.ResponseWriter, r *http.Request)
}

type policyHandlerImpl struct {
	policyService *policyservice.PolicyService
}

func NewPolicyHandler(policyService *policyservice.PolicyService) PolicyHandler {
	return &policyHandlerImpl{
		policyService: policyService,
	}
}

// GetActive implements PolicyHandler.
func (h *policyHandlerImpl) GetActive(w http.ResponseWriter, r *http.Request) {
	policyType := chi.URLParam(r, "type")

	result, err := h.policyService.GetActive(r.Context(), policyType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetHistory implements PolicyHandler.
func (h *policyHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	policyType := chi.URLParam(r, "type")

	result, err := h.policyService.GetHistory(r.Context(), policyType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateVersion implements PolicyHandler.
func (h *policyHandlerImpl) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req policy.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.policyService.CreateVersion(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Policy version created", result)
}

// UpdateActive implements PolicyHandler.
func (h *policyHandlerImpl) UpdateActive(w http.ResponseWriter, r *http.Request) {
	var req policy.UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.policyService.UpdateActive(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Policy updated", result)
}
