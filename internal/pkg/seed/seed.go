package seed

import (
	"errors"
	"fmt"
	"log"

	"github.com/festaflow/festaflow/app/models"
	"gorm.io/gorm"
)

// Result summarizes what a seed run changed.
type Result struct {
	FeaturesCreated int  `json:"funcionalidades_criadas"`
	FeaturesUpdated int  `json:"funcionalidades_atualizadas"`
	PlansCreated    int  `json:"planos_criados"`
	PlansUpdated    int  `json:"planos_atualizados"`
	Reset           bool `json:"reset"`
}

type featureSeed struct {
	Code      string
	Name      string
	Category  string
	SortOrder int
}

type planSeed struct {
	Name              string
	HotmartCode       string
	PriceCents        int64
	BillingInterval   string
	IsHighlighted     bool
	MaxEventsPerMonth *int
	MaxClients        *int
	MaxUsers          *int
	MaxStorageGB      *int
	FeatureCodes      []string
}

func intPtr(v int) *int { return &v }

// The canonical catalog. Editing this slice and re-running the seed endpoint
// is how the product catalog evolves; the upsert keys are Feature.Code and
// Plan.HotmartCode.
var featureCatalog = []featureSeed{
	{Code: "gestao_clientes", Name: "Gestão de clientes", Category: "core", SortOrder: 10},
	{Code: "gestao_eventos", Name: "Gestão de eventos", Category: "core", SortOrder: 20},
	{Code: "controle_pagamentos", Name: "Controle de pagamentos", Category: "financeiro", SortOrder: 30},
	{Code: "controle_custos", Name: "Controle de custos", Category: "financeiro", SortOrder: 40},
	{Code: "catalogo_servicos", Name: "Catálogo de serviços", Category: "core", SortOrder: 50},
	{Code: "pre_cadastro", Name: "Pré-cadastro de clientes", Category: "captacao", SortOrder: 60},
	{Code: "relatorios", Name: "Relatórios financeiros", Category: "financeiro", SortOrder: 70},
	{Code: "relatorios_avancados", Name: "Relatórios avançados", Category: "financeiro", SortOrder: 80},
	{Code: "multiplos_usuarios", Name: "Múltiplos usuários", Category: "conta", SortOrder: 90},
}

var planCatalog = []planSeed{
	{
		Name:              "Essencial",
		HotmartCode:       "FF-ESSENCIAL-M",
		PriceCents:        4990,
		BillingInterval:   models.PlanIntervalMonthly,
		MaxEventsPerMonth: intPtr(10),
		MaxClients:        intPtr(50),
		MaxUsers:          intPtr(1),
		MaxStorageGB:      intPtr(1),
		FeatureCodes: []string{
			"gestao_clientes", "gestao_eventos", "controle_pagamentos", "catalogo_servicos",
		},
	},
	{
		Name:              "Profissional",
		HotmartCode:       "FF-PRO-M",
		PriceCents:        9990,
		BillingInterval:   models.PlanIntervalMonthly,
		IsHighlighted:     true,
		MaxEventsPerMonth: intPtr(40),
		MaxClients:        intPtr(300),
		MaxUsers:          intPtr(3),
		MaxStorageGB:      intPtr(10),
		FeatureCodes: []string{
			"gestao_clientes", "gestao_eventos", "controle_pagamentos", "controle_custos",
			"catalogo_servicos", "pre_cadastro", "relatorios",
		},
	},
	{
		Name:            "Premium",
		HotmartCode:     "FF-PREMIUM-M",
		PriceCents:      19990,
		BillingInterval: models.PlanIntervalMonthly,
		MaxUsers:        intPtr(10),
		FeatureCodes: []string{
			"gestao_clientes", "gestao_eventos", "controle_pagamentos", "controle_custos",
			"catalogo_servicos", "pre_cadastro", "relatorios", "relatorios_avancados",
			"multiplos_usuarios",
		},
	},
	{
		Name:            "Premium Anual",
		HotmartCode:     "FF-PREMIUM-A",
		PriceCents:      199900,
		BillingInterval: models.PlanIntervalYearly,
		MaxUsers:        intPtr(10),
		FeatureCodes: []string{
			"gestao_clientes", "gestao_eventos", "controle_pagamentos", "controle_custos",
			"catalogo_servicos", "pre_cadastro", "relatorios", "relatorios_avancados",
			"multiplos_usuarios",
		},
	},
}

// Apply upserts the feature and plan catalog. With reset it wipes both
// tables first; subscriptions keep working because they reference plans by
// hotmart code on the next webhook, but running reset in production between
// a wipe and a re-seed is the operator's risk to take.
func Apply(db *gorm.DB, reset bool) (*Result, error) {
	result := &Result{Reset: reset}

	if reset {
		if err := wipe(db); err != nil {
			return nil, fmt.Errorf("falha ao limpar catálogo: %w", err)
		}
	}

	featureByCode := make(map[string]*models.Feature, len(featureCatalog))
	for _, fs := range featureCatalog {
		feature, created, err := upsertFeature(db, fs)
		if err != nil {
			return nil, fmt.Errorf("funcionalidade %s: %w", fs.Code, err)
		}
		if created {
			result.FeaturesCreated++
		} else {
			result.FeaturesUpdated++
		}
		featureByCode[fs.Code] = feature
	}

	for _, ps := range planCatalog {
		created, err := upsertPlan(db, ps, featureByCode)
		if err != nil {
			return nil, fmt.Errorf("plano %s: %w", ps.HotmartCode, err)
		}
		if created {
			result.PlansCreated++
		} else {
			result.PlansUpdated++
		}
	}

	log.Printf("[Seed] catalog applied: %d/%d features, %d/%d plans (created/updated), reset=%v",
		result.FeaturesCreated, result.FeaturesUpdated, result.PlansCreated, result.PlansUpdated, reset)
	return result, nil
}

func wipe(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM plan_features").Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Plan{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Feature{}).Error
	})
}

func upsertFeature(db *gorm.DB, fs featureSeed) (*models.Feature, bool, error) {
	var feature models.Feature
	err := db.Where("code = ?", fs.Code).First(&feature).Error
	if err == nil {
		feature.Name = fs.Name
		feature.Category = fs.Category
		feature.SortOrder = fs.SortOrder
		feature.IsActive = true
		return &feature, false, db.Save(&feature).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	feature = models.Feature{
		Code:      fs.Code,
		Name:      fs.Name,
		Category:  fs.Category,
		SortOrder: fs.SortOrder,
		IsActive:  true,
	}
	if err := db.Create(&feature).Error; err != nil {
		return nil, false, err
	}
	return &feature, true, nil
}

func upsertPlan(db *gorm.DB, ps planSeed, featureByCode map[string]*models.Feature) (bool, error) {
	features := make([]models.Feature, 0, len(ps.FeatureCodes))
	for _, code := range ps.FeatureCodes {
		f, ok := featureByCode[code]
		if !ok {
			return false, fmt.Errorf("funcionalidade desconhecida no plano: %s", code)
		}
		features = append(features, *f)
	}

	var plan models.Plan
	err := db.Where("hotmart_code = ?", ps.HotmartCode).First(&plan).Error
	created := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		plan = models.Plan{HotmartCode: ps.HotmartCode}
		created = true
	}

	plan.Name = ps.Name
	plan.PriceCents = ps.PriceCents
	plan.BillingInterval = ps.BillingInterval
	plan.IsActive = true
	plan.IsHighlighted = ps.IsHighlighted
	plan.MaxEventsPerMonth = ps.MaxEventsPerMonth
	plan.MaxClients = ps.MaxClients
	plan.MaxUsers = ps.MaxUsers
	plan.MaxStorageGB = ps.MaxStorageGB

	if created {
		plan.Features = features
		return true, db.Create(&plan).Error
	}
	if err := db.Save(&plan).Error; err != nil {
		return false, err
	}
	return false, db.Model(&plan).Association("Features").Replace(features)
}
