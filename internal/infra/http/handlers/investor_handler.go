package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/http/middleware"
)

// InvestorHandler serves the read APIs scoped to the session's investor.
type InvestorHandler struct {
	InvestorRepo   entity.InvestorRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	EnrollmentRepo entity.EnrollmentRepositoryInterface
	Log            *zap.Logger
}

func NewInvestorHandler(
	investorRepo entity.InvestorRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	enrollmentRepo entity.EnrollmentRepositoryInterface,
	log *zap.Logger,
) *InvestorHandler {
	return &InvestorHandler{
		InvestorRepo:   investorRepo,
		LeadRepo:       leadRepo,
		EnrollmentRepo: enrollmentRepo,
		Log:            log,
	}
}

func (h *InvestorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.CurrentUser(r)
	ctx := r.Context()

	contributions, err := h.InvestorRepo.Contributions(ctx, u.InvestorID)
	if err != nil {
		h.Log.Error("contributions query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	leads, err := h.LeadRepo.List(ctx, entity.LeadFilter{InvestorID: u.InvestorID})
	if err != nil {
		h.Log.Error("leads query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	enrollments, err := h.EnrollmentRepo.ListByInvestor(ctx, u.InvestorID)
	if err != nil {
		h.Log.Error("enrollments query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	var active, converted int
	for _, l := range leads {
		switch l.Status {
		case entity.LeadStatusActive:
			active++
		case entity.LeadStatusConverted:
			converted++
		}
	}

	laborCosts := decimal.Zero
	for _, e := range enrollments {
		laborCosts = laborCosts.Add(e.LaborCost)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"contributions":     contributions,
		"total_leads":       len(leads),
		"active_leads":      active,
		"converted_leads":   converted,
		"total_enrollments": len(enrollments),
		"total_labor_costs": laborCosts,
	})
}

func (h *InvestorHandler) Leads(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.CurrentUser(r)

	filter := entity.LeadFilter{
		InvestorID: u.InvestorID,
		Status:     r.URL.Query().Get("status"),
	}

	leads, err := h.LeadRepo.List(r.Context(), filter)
	if err != nil {
		h.Log.Error("leads query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load leads")
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "leads": leads})
}

func (h *InvestorHandler) Enrollments(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.CurrentUser(r)

	enrollments, err := h.EnrollmentRepo.ListByInvestor(r.Context(), u.InvestorID)
	if err != nil {
		h.Log.Error("enrollments query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load enrollments")
		return
	}
	if enrollments == nil {
		enrollments = []*entity.Enrollment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "enrollments": enrollments})
}

// ROI reports total invested versus commission. Commission tracking is not
// wired to a revenue source yet, so it stays at zero and ROI is the cost side.
func (h *InvestorHandler) ROI(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.CurrentUser(r)
	ctx := r.Context()

	leadCosts, err := h.LeadRepo.TotalCost(ctx, u.InvestorID)
	if err != nil {
		h.Log.Error("lead cost query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to calculate ROI")
		return
	}

	laborCosts, err := h.EnrollmentRepo.TotalLaborCost(ctx, u.InvestorID)
	if err != nil {
		h.Log.Error("labor cost query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to calculate ROI")
		return
	}

	totalInvested := leadCosts.Add(laborCosts)
	totalCommission := decimal.Zero
	netProfit := totalCommission.Sub(totalInvested)

	roiPercentage := decimal.Zero
	if totalInvested.IsPositive() {
		roiPercentage = netProfit.Div(totalInvested).Mul(decimal.NewFromInt(100)).Round(2)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"total_invested":    totalInvested,
		"total_lead_costs":  leadCosts,
		"total_labor_costs": laborCosts,
		"total_commission":  totalCommission,
		"net_profit":        netProfit,
		"roi_percentage":    roiPercentage,
	})
}
