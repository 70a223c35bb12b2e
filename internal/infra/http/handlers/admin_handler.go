package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/http/middleware"
	"github.com/calebrws/investor-portal/internal/usecase"
)

const maxUploadBytes = 32 << 20

type AdminHandler struct {
	ImportUC       *usecase.ImportFileUseCase
	ReconcileUC    *usecase.ReconcileUseCase
	CreateUserUC   *usecase.CreateUserUseCase
	InvestorRepo   entity.InvestorRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	EnrollmentRepo entity.EnrollmentRepositoryInterface
	UploadRepo     entity.UploadHistoryRepositoryInterface
	UploadsDir     string
	Log            *zap.Logger
}

type UploadResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	RecordsImported int    `json:"records_imported"`
	RecordsSkipped  int    `json:"records_skipped"`
	RecordsFailed   int    `json:"records_failed"`
}

// UploadInvestorData receives a multipart data file, stores it under the
// uploads directory, and runs the import pipeline. Enrollment imports are
// followed by a reconcile pass so matching leads flip to converted.
func (h *AdminHandler) UploadInvestorData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	investorName := r.FormValue("investor")
	dataType := r.FormValue("data_type")
	if investorName == "" || dataType == "" {
		writeErrorResponse(w, http.StatusBadRequest, "investor and data type required")
		return
	}

	kind := usecase.RecordKind(strings.TrimSuffix(strings.ToLower(dataType), "s"))
	if !kind.Valid() {
		writeErrorResponse(w, http.StatusBadRequest, "data type must be leads or enrollments")
		return
	}

	path, err := h.saveUpload(header.Filename, file)
	if err != nil {
		h.Log.Error("upload save failed", zap.String("file", header.Filename), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	result, err := h.ImportUC.Execute(r.Context(), usecase.ImportFileInput{
		Path:         path,
		InvestorName: investorName,
		Kind:         kind,
	})
	os.Remove(path)
	if err != nil {
		middleware.RecordImport(string(kind), "failure", 0)
		var domainErr *usecase.DomainError
		if errors.As(err, &domainErr) {
			switch domainErr.Code {
			case usecase.CodeInvestorNotFound:
				writeErrorResponse(w, http.StatusNotFound, domainErr.Message)
			case usecase.CodeUnsupportedFile:
				writeErrorResponse(w, http.StatusBadRequest, domainErr.Message)
			default:
				writeErrorResponse(w, http.StatusUnprocessableEntity, domainErr.Message)
			}
			return
		}
		h.Log.Error("import failed", zap.String("file", header.Filename), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "import failed")
		return
	}
	middleware.RecordImport(string(kind), "success", result.RecordsImported)

	if kind == usecase.KindEnrollment {
		if err := h.ReconcileUC.Execute(r.Context()); err != nil {
			h.Log.Warn("reconcile after import failed", zap.Error(err))
		} else {
			middleware.RecordReconcile()
		}
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:         true,
		Message:         fmt.Sprintf("Successfully imported %ss for %s", kind, investorName),
		RecordsImported: result.RecordsImported,
		RecordsSkipped:  result.RecordsSkipped,
		RecordsFailed:   result.RecordsFailed,
	})
}

func (h *AdminHandler) saveUpload(name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(h.UploadsDir, 0o755); err != nil {
		return "", err
	}

	// filepath.Base strips any client-supplied directory components.
	path := filepath.Join(h.UploadsDir, filepath.Base(name))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contributions, err := h.InvestorRepo.Contributions(ctx, "")
	if err != nil {
		h.Log.Error("contributions query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	leadCosts, err := h.LeadRepo.TotalCost(ctx, "")
	if err != nil {
		h.Log.Error("lead cost query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	laborCosts, err := h.EnrollmentRepo.TotalLaborCost(ctx, "")
	if err != nil {
		h.Log.Error("labor cost query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	uploads, err := h.UploadRepo.List(ctx, 20)
	if err != nil {
		h.Log.Warn("upload history query failed", zap.Error(err))
	}
	if uploads == nil {
		uploads = []*entity.UploadRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"contributions":     contributions,
		"total_lead_costs":  leadCosts,
		"total_labor_costs": laborCosts,
		"total_invested":    leadCosts.Add(laborCosts),
		"recent_uploads":    uploads,
	})
}

type CreateInvestorRequest struct {
	Name     string          `json:"name"`
	LeadCost decimal.Decimal `json:"lead_cost"`
	Username string          `json:"username,omitempty"`
	Password string          `json:"password,omitempty"`
}

// CreateInvestor provisions an investor and, when credentials are supplied,
// a portal login bound to it.
func (h *AdminHandler) CreateInvestor(w http.ResponseWriter, r *http.Request) {
	var req CreateInvestorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	investor, err := entity.NewInvestor(req.Name, req.LeadCost)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.InvestorRepo.Create(r.Context(), investor); err != nil {
		if errors.Is(err, entity.ErrInvestorExists) {
			writeErrorResponse(w, http.StatusConflict, "an investor with this name already exists")
			return
		}
		h.Log.Error("investor create failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to create investor")
		return
	}

	if req.Username != "" && req.Password != "" {
		if _, err := h.CreateUserUC.Execute(r.Context(), req.Username, req.Password, &investor.ID, false); err != nil {
			h.Log.Error("investor user create failed",
				zap.String("investor", investor.Name), zap.Error(err))
			writeErrorResponse(w, http.StatusConflict, "investor created but login provisioning failed")
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "investor": investor})
}

type UpdateInvestorRequest struct {
	Name     *string          `json:"name,omitempty"`
	LeadCost *decimal.Decimal `json:"lead_cost,omitempty"`
}

// UpdateInvestor edits name or lead rate. Rate changes only affect leads
// created afterwards.
func (h *AdminHandler) UpdateInvestor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateInvestorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == nil && req.LeadCost == nil {
		writeErrorResponse(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.LeadCost != nil && req.LeadCost.IsNegative() {
		writeErrorResponse(w, http.StatusBadRequest, "lead_cost must not be negative")
		return
	}

	if err := h.InvestorRepo.Update(r.Context(), id, req.Name, req.LeadCost); err != nil {
		if errors.Is(err, entity.ErrInvestorNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "investor not found")
			return
		}
		h.Log.Error("investor update failed", zap.String("id", id), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to update investor")
		return
	}

	investor, err := h.InvestorRepo.FindByID(r.Context(), id)
	if err != nil {
		h.Log.Warn("investor reload failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "investor": investor})
}

func (h *AdminHandler) ListInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := h.InvestorRepo.List(r.Context())
	if err != nil {
		h.Log.Error("investors query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "failed to load investors")
		return
	}
	if investors == nil {
		investors = []*entity.Investor{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "investors": investors})
}
