package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farebroker/internal/domain"
	"farebroker/internal/repository"
)

// PolicyHandler handles HTTP requests for cancellation policies.
type PolicyHandler struct {
	policyRepo repository.PolicyRepository
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(policyRepo repository.PolicyRepository) *PolicyHandler {
	return &PolicyHandler{policyRepo: policyRepo}
}

// RulePayload is one cancellation rule in policy requests and responses.
type RulePayload struct {
	ThresholdMinutes float64 `json:"threshold_minutes"`
	FeeKind          string  `json:"fee_kind"`
	FeeAmount        float64 `json:"fee_amount"`
	AppliesTo        string  `json:"applies_to"`
	RefundPercent    float64 `json:"refund_percent,omitempty"`
}

// PenaltyPayload is one no-show penalty in policy requests and responses.
type PenaltyPayload struct {
	AppliesAfterMinutes float64 `json:"applies_after_minutes"`
	Kind                string  `json:"kind"`
	Amount              float64 `json:"amount"`
}

// SavePolicyRequest is the HTTP request body for creating a policy version.
type SavePolicyRequest struct {
	Name                   string                    `json:"name"`
	Version                int                       `json:"version"`
	IsActive               bool                      `json:"is_active"`
	FreeCancellationWindow float64                   `json:"free_cancellation_window_min"`
	Rules                  []RulePayload             `json:"rules"`
	NoShowPenalties        map[string]PenaltyPayload `json:"no_show_penalties,omitempty"`
	MaxFeePercent          float64                   `json:"max_fee_percent"`
}

// PolicyResponse is the HTTP response for policy operations.
type PolicyResponse struct {
	ID                     string                    `json:"id"`
	Name                   string                    `json:"name"`
	Version                int                       `json:"version"`
	IsActive               bool                      `json:"is_active"`
	FreeCancellationWindow float64                   `json:"free_cancellation_window_min"`
	Rules                  []RulePayload             `json:"rules"`
	NoShowPenalties        map[string]PenaltyPayload `json:"no_show_penalties,omitempty"`
	MaxFeePercent          float64                   `json:"max_fee_percent"`
	CreatedAt              string                    `json:"created_at"`
}

// GetActivePolicy handles GET /v1/policies/active
func (h *PolicyHandler) GetActivePolicy(c *gin.Context) {
	policy, err := h.policyRepo.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPolicyResponse(policy))
}

// SavePolicy handles POST /v1/policies
func (h *PolicyHandler) SavePolicy(c *gin.Context) {
	var req SavePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" || req.Version <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and a positive version are required"})
		return
	}

	policy := &domain.CancellationPolicy{
		ID:                     uuid.New().String(),
		Name:                   req.Name,
		Version:                req.Version,
		IsActive:               req.IsActive,
		FreeCancellationWindow: req.FreeCancellationWindow,
		MaxFeePercent:          req.MaxFeePercent,
		CreatedAt:              time.Now().UTC(),
	}
	for _, r := range req.Rules {
		policy.Rules = append(policy.Rules, domain.CancellationRule{
			ThresholdMinutes: r.ThresholdMinutes,
			FeeKind:          domain.FeeKind(r.FeeKind),
			FeeAmount:        r.FeeAmount,
			AppliesTo:        domain.AppliesTo(r.AppliesTo),
			RefundPercent:    r.RefundPercent,
		})
	}
	if len(req.NoShowPenalties) > 0 {
		policy.NoShowPenalties = make(map[domain.CancelledBy]domain.NoShowPenalty, len(req.NoShowPenalties))
		for by, p := range req.NoShowPenalties {
			policy.NoShowPenalties[domain.CancelledBy(by)] = domain.NoShowPenalty{
				AppliesAfterMinutes: p.AppliesAfterMinutes,
				Kind:                domain.FeeKind(p.Kind),
				Amount:              p.Amount,
			}
		}
	}

	if err := h.policyRepo.Save(c.Request.Context(), policy); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPolicyResponse(policy))
}

func toPolicyResponse(policy *domain.CancellationPolicy) PolicyResponse {
	resp := PolicyResponse{
		ID:                     policy.ID,
		Name:                   policy.Name,
		Version:                policy.Version,
		IsActive:               policy.IsActive,
		FreeCancellationWindow: policy.FreeCancellationWindow,
		MaxFeePercent:          policy.MaxFeePercent,
		CreatedAt:              policy.CreatedAt.Format(time.RFC3339),
	}
	for _, r := range policy.Rules {
		resp.Rules = append(resp.Rules, RulePayload{
			ThresholdMinutes: r.ThresholdMinutes,
			FeeKind:          string(r.FeeKind),
			FeeAmount:        r.FeeAmount,
			AppliesTo:        string(r.AppliesTo),
			RefundPercent:    r.RefundPercent,
		})
	}
	if len(policy.NoShowPenalties) > 0 {
		resp.NoShowPenalties = make(map[string]PenaltyPayload, len(policy.NoShowPenalties))
		for by, p := range policy.NoShowPenalties {
			resp.NoShowPenalties[string(by)] = PenaltyPayload{
				AppliesAfterMinutes: p.AppliesAfterMinutes,
				Kind:                string(p.Kind),
				Amount:              p.Amount,
			}
		}
	}
	return resp
}
