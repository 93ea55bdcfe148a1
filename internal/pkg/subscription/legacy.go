package subscription

import (
	"errors"
	"fmt"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// MigrationDetail is the per-user outcome of one migration run.
type MigrationDetail struct {
	UserID  uint   `json:"usuarioId"`
	Email   string `json:"email"`
	Action  string `json:"acao"`
	Message string `json:"mensagem,omitempty"`
}

// MigrationReport aggregates a full batch run. Partial failures are counted
// and detailed, never fatal to the batch.
type MigrationReport struct {
	TotalProcessed int               `json:"totalProcessados"`
	Migrated       int               `json:"migrados"`
	Errors         int               `json:"erros"`
	Details        []MigrationDetail `json:"detalhes"`
}

const (
	migrationActionSkipped      = "ignorado"
	migrationActionMigrated     = "migrado"
	migrationActionWouldMigrate = "seria_migrado"
	migrationActionCleaned      = "legado_removido"
	migrationActionError        = "erro"
)

// ExtractLegacyShape pulls the flattened columns off a user row. The second
// return is false when no legacy data is present.
func ExtractLegacyShape(u *models.User) (models.Subscription, bool) {
	if !u.HasLegacySubscriptionFields() {
		return models.Subscription{}, false
	}

	sub := models.Subscription{
		UserID:                u.ID,
		Status:                models.NormalizeSubscriptionStatus(u.LegacyStatus),
		HotmartSubscriberCode: u.LegacyHotmartSubscriberCode,
		ExpiresAt:             u.LegacyExpiresAt,
		NextChargeAt:          u.LegacyNextChargeAt,
		PaymentUpToDate:       u.LegacyPaymentUpToDate == nil || *u.LegacyPaymentUpToDate,
	}
	if u.LegacyPlanID != nil {
		sub.PlanID = *u.LegacyPlanID
	}
	return sub, true
}

// ToConsolidated completes a legacy-derived subscription with plan data.
// Pure; plan may be nil when the legacy plan reference resolves to nothing.
func ToConsolidated(sub models.Subscription, plan *models.Plan) models.Subscription {
	if plan != nil {
		sub.PlanID = plan.ID
		sub.PlanName = plan.Name
		sub.PlanHotmartCode = plan.HotmartCode
		sub.EnabledFeatures = encodeFeatureCodes(plan.FeatureCodes())
	} else if sub.EnabledFeatures == "" {
		sub.EnabledFeatures = "[]"
	}
	return sub
}

// MigrateLegacyShapes walks every user and consolidates flattened
// subscription fields into Subscription rows. Safe to re-run: users already
// consolidated are skipped (or merely cleaned up when stale legacy columns
// survive a crashed earlier run). A user is never left with neither shape:
// legacy columns are cleared only after the consolidated row persisted.
func (s *Service) MigrateLegacyShapes(dryRun bool) (*MigrationReport, error) {
	users, err := s.repo.ListUsersWithSubscriptions()
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{Details: make([]MigrationDetail, 0, len(users))}
	for i := range users {
		u := &users[i]
		report.TotalProcessed++

		detail := s.migrateUser(u, dryRun)
		if detail.Action == migrationActionError {
			report.Errors++
		}
		// Cleanup-only users count as migrated too, so a dry run and the
		// real run report the same totals for the same dataset.
		switch detail.Action {
		case migrationActionMigrated, migrationActionWouldMigrate, migrationActionCleaned:
			report.Migrated++
		}
		if detail.Action != migrationActionSkipped {
			report.Details = append(report.Details, detail)
		}
	}
	return report, nil
}

// migrateUser handles a single user; any failure is caught and reported,
// the batch continues.
func (s *Service) migrateUser(u *models.User, dryRun bool) MigrationDetail {
	detail := MigrationDetail{UserID: u.ID, Email: u.Email}

	if u.IsAdmin() || !u.HasLegacySubscriptionFields() {
		detail.Action = migrationActionSkipped
		return detail
	}

	// Consolidated shape already present: only the legacy cleanup is left.
	if u.Subscription != nil {
		if dryRun {
			detail.Action = migrationActionWouldMigrate
			detail.Message = "assinatura consolidada já existe; campos legados seriam removidos"
			return detail
		}
		if err := s.repo.ClearLegacyFields(u.ID); err != nil {
			detail.Action = migrationActionError
			detail.Message = fmt.Sprintf("falha ao remover campos legados: %v", err)
			return detail
		}
		detail.Action = migrationActionCleaned
		return detail
	}

	sub, consolidatedErr := s.consolidateFromLegacy(u)
	if consolidatedErr != nil {
		detail.Action = migrationActionError
		detail.Message = consolidatedErr.Error()
		return detail
	}

	if dryRun {
		detail.Action = migrationActionWouldMigrate
		detail.Message = fmt.Sprintf("seria migrado para status %q", sub.Status)
		return detail
	}

	if err := s.repo.UpsertSubscription(sub); err != nil {
		// Legacy fields are intentionally preserved on failure.
		detail.Action = migrationActionError
		detail.Message = fmt.Sprintf("falha ao gravar assinatura consolidada: %v", err)
		return detail
	}
	if err := s.repo.ClearLegacyFields(u.ID); err != nil {
		detail.Action = migrationActionError
		detail.Message = fmt.Sprintf("assinatura gravada mas campos legados não removidos: %v", err)
		return detail
	}

	detail.Action = migrationActionMigrated
	detail.Message = fmt.Sprintf("migrado para status %q", sub.Status)
	return detail
}

// consolidateFromLegacy builds the consolidated subscription for a user:
// (a) adopt a real Subscription row referenced by legacy id or keyed by the
// user id, (b) otherwise synthesize one from the flattened fields plus the
// referenced plan.
func (s *Service) consolidateFromLegacy(u *models.User) (*models.Subscription, error) {
	if u.LegacySubscriptionID != nil {
		if existing, err := s.repo.GetSubscriptionByID(*u.LegacySubscriptionID); err == nil {
			if existing.UserID == 0 || existing.UserID == u.ID {
				existing.UserID = u.ID
				return existing, nil
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("falha ao buscar assinatura legada %d: %w", *u.LegacySubscriptionID, err)
		}
	}
	if existing, err := s.repo.GetSubscriptionByUserID(u.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("falha ao buscar assinatura do usuário: %w", err)
	}

	shape, ok := ExtractLegacyShape(u)
	if !ok {
		return nil, errors.New("nenhum campo legado presente")
	}

	var plan *models.Plan
	if u.LegacyPlanID != nil {
		p, err := s.repo.GetPlanByID(*u.LegacyPlanID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("falha ao buscar plano %d: %w", *u.LegacyPlanID, err)
		}
		plan = p
	}

	sub := ToConsolidated(shape, plan)
	return &sub, nil
}
