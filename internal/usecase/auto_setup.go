package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/entity"
)

// AutoSetupUseCase provisions the portal on first boot: the two investors,
// their logins plus an admin, and any CSV files already waiting in the
// uploads directory. Every step is a no-op when its data already exists.
type AutoSetupUseCase struct {
	InvestorRepo   entity.InvestorRepositoryInterface
	UserRepo       entity.UserRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	EnrollmentRepo entity.EnrollmentRepositoryInterface
	CreateUser     *CreateUserUseCase
	Import         *ImportFileUseCase
	Reconcile      *ReconcileUseCase
	UploadsDir     string
	Log            *zap.Logger
}

// seed investors and their bootstrap credentials; passwords are dev defaults
// meant to be rotated by the admin.
var seedInvestors = []struct {
	Name     string
	LeadCost decimal.Decimal
	Username string
	Password string
}{
	{"Eric", decimal.NewFromFloat(42.00), "eric", "eric123"},
	{"Phillip", decimal.NewFromFloat(40.00), "phillip", "phillip123"},
}

func (uc *AutoSetupUseCase) Execute(ctx context.Context) error {
	if err := uc.seedInvestors(ctx); err != nil {
		return err
	}
	if err := uc.seedUsers(ctx); err != nil {
		return err
	}
	uc.autoImport(ctx)
	return nil
}

func (uc *AutoSetupUseCase) seedInvestors(ctx context.Context) error {
	existing, err := uc.InvestorRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	uc.Log.Info("auto-setup: creating investors")
	for _, seed := range seedInvestors {
		investor, err := entity.NewInvestor(seed.Name, seed.LeadCost)
		if err != nil {
			return err
		}
		if err := uc.InvestorRepo.Create(ctx, investor); err != nil {
			return err
		}
	}
	return nil
}

func (uc *AutoSetupUseCase) seedUsers(ctx context.Context) error {
	if _, err := uc.UserRepo.FindByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return err
	}

	uc.Log.Info("auto-setup: creating user accounts")
	for _, seed := range seedInvestors {
		investor, err := uc.InvestorRepo.FindByName(ctx, seed.Name)
		if err != nil {
			return err
		}
		if _, err := uc.CreateUser.Execute(ctx, seed.Username, seed.Password, &investor.ID, false); err != nil {
			return err
		}
	}
	if _, err := uc.CreateUser.Execute(ctx, "admin", "admin123", nil, true); err != nil {
		return err
	}
	return nil
}

// autoImport loads CSVs left in the uploads directory, but only into an empty
// database. Investor and kind come from filename heuristics; files that match
// neither are left alone.
func (uc *AutoSetupUseCase) autoImport(ctx context.Context) {
	leads, err := uc.LeadRepo.List(ctx, entity.LeadFilter{})
	if err != nil || len(leads) > 0 {
		return
	}
	enrollments, err := uc.EnrollmentRepo.List(ctx, 1, 0)
	if err != nil || len(enrollments) > 0 {
		return
	}

	entries, err := os.ReadDir(uc.UploadsDir)
	if err != nil {
		uc.Log.Info("auto-setup: no uploads directory, skipping import")
		return
	}

	imported := 0
	var enrollmentsSeen bool
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}

		investorName, kind, ok := classifyUploadName(e.Name())
		if !ok {
			uc.Log.Warn("auto-setup: cannot classify file, skipping", zap.String("file", e.Name()))
			continue
		}

		result, err := uc.Import.Execute(ctx, ImportFileInput{
			Path:         filepath.Join(uc.UploadsDir, e.Name()),
			InvestorName: investorName,
			Kind:         kind,
		})
		if err != nil {
			uc.Log.Warn("auto-setup: import failed", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		imported += result.RecordsImported
		if kind == KindEnrollment {
			enrollmentsSeen = true
		}
	}

	if enrollmentsSeen {
		if err := uc.Reconcile.Execute(ctx); err != nil {
			uc.Log.Warn("auto-setup: reconcile failed", zap.Error(err))
		}
	}
	if imported > 0 {
		uc.Log.Info("auto-setup: seeded data from uploads", zap.Int("records", imported))
	}
}

// classifyUploadName infers the investor and record kind from a filename like
// "eric_leads_2024.csv".
func classifyUploadName(name string) (investor string, kind RecordKind, ok bool) {
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "eric"):
		investor = "Eric"
	case strings.Contains(lower, "phill"):
		investor = "Phillip"
	default:
		return "", "", false
	}

	switch {
	case strings.Contains(lower, "lead"):
		kind = KindLead
	case strings.Contains(lower, "enrollment"):
		kind = KindEnrollment
	default:
		return "", "", false
	}

	return investor, kind, true
}
