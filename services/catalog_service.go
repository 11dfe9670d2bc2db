package services

import (
	"context"
	"strings"

	"labquote/catalog"
	"labquote/models"
	"labquote/pricing"
	"labquote/storage"

	"gorm.io/gorm"
)

// CatalogService serves the three price lists from the database.
type CatalogService struct {
	db   *gorm.DB
	fees pricing.Fees
}

func NewCatalogService(db *gorm.DB, fees pricing.Fees) *CatalogService {
	return &CatalogService{db: db, fees: fees.WithDefaults()}
}

func (s *CatalogService) Fees() pricing.Fees { return s.fees }

// Snapshot loads the current price list for pricing a quotation.
func (s *CatalogService) Snapshot(ctx context.Context) (*catalog.Catalog, error) {
	return catalog.Load(ctx, s.db, s.fees)
}

// Seed upserts a catalog file.
func (s *CatalogService) Seed(ctx context.Context, f *catalog.File) (catalog.SeedResult, error) {
	return catalog.Seed(ctx, s.db, f)
}

func (s *CatalogService) ListToxicity(ctx context.Context, q catalog.Query) ([]models.ToxicityTest, error) {
	var list []models.ToxicityTest
	if err := s.db.WithContext(ctx).Order("category, code").Find(&list).Error; err != nil {
		return nil, err
	}
	return catalog.FilterToxicity(list, q), nil
}

func (s *CatalogService) ListEfficacy(ctx context.Context, q catalog.Query) ([]models.EfficacyModel, error) {
	var list []models.EfficacyModel
	if err := s.db.WithContext(ctx).Order("disease_area, code").Find(&list).Error; err != nil {
		return nil, err
	}
	return catalog.FilterEfficacy(list, q), nil
}

func (s *CatalogService) ListClinicalPathology(ctx context.Context, q catalog.Query) ([]models.ClinicalPathologyTest, error) {
	var list []models.ClinicalPathologyTest
	if err := s.db.WithContext(ctx).Order("panel, code").Find(&list).Error; err != nil {
		return nil, err
	}
	return catalog.FilterClinicalPathology(list, q), nil
}

func (s *CatalogService) GetToxicity(ctx context.Context, code string) (*models.ToxicityTest, error) {
	var t models.ToxicityTest
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&t).Error; err != nil {
		return nil, translate(err, "toxicity test "+code)
	}
	return &t, nil
}

func (s *CatalogService) GetEfficacy(ctx context.Context, code string) (*models.EfficacyModel, error) {
	var m models.EfficacyModel
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		return nil, translate(err, "efficacy model "+code)
	}
	return &m, nil
}

func (s *CatalogService) GetClinicalPathology(ctx context.Context, code string) (*models.ClinicalPathologyTest, error) {
	var p models.ClinicalPathologyTest
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, translate(err, "clinical pathology test "+code)
	}
	return &p, nil
}

func checkModalities(list models.StringList) error {
	for _, m := range list {
		if strings.TrimSpace(m) == "" {
			return validation("empty modality")
		}
	}
	return nil
}

// SaveToxicity creates the entry or, when code already exists, replaces it.
func (s *CatalogService) SaveToxicity(ctx context.Context, actor Actor, in models.ToxicityTest) (*models.ToxicityTest, error) {
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, validation("code and name are required")
	}
	if in.Price < 0 {
		return nil, validation("price must not be negative")
	}
	if err := checkModalities(in.Modalities); err != nil {
		return nil, err
	}
	if in.Modalities == nil {
		in.Modalities = models.StringList{}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ToxicityTest
		err := tx.Where("code = ?", in.Code).First(&existing).Error
		switch {
		case err == nil:
			in.ID = existing.ID
			in.CreatedAt = existing.CreatedAt
		case storage.IsNotFound(err):
			in.ID = 0
		default:
			return err
		}
		if err := tx.Save(&in).Error; err != nil {
			return translate(err, "toxicity test")
		}
		return record(tx, actor, EntityCatalog, in.ID, "save", "toxicity %s price %d", in.Code, in.Price)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *CatalogService) SaveEfficacy(ctx context.Context, actor Actor, in models.EfficacyModel) (*models.EfficacyModel, error) {
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, validation("code and name are required")
	}
	if in.SetupFee < 0 || in.PricePerGroup < 0 {
		return nil, validation("prices must not be negative")
	}
	if in.DefaultGroups < 0 || in.DefaultAnimalsPerGroup < 0 {
		return nil, validation("defaults must not be negative")
	}
	if err := checkModalities(in.Modalities); err != nil {
		return nil, err
	}
	if in.Modalities == nil {
		in.Modalities = models.StringList{}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.EfficacyModel
		err := tx.Where("code = ?", in.Code).First(&existing).Error
		switch {
		case err == nil:
			in.ID = existing.ID
			in.CreatedAt = existing.CreatedAt
		case storage.IsNotFound(err):
			in.ID = 0
		default:
			return err
		}
		if err := tx.Save(&in).Error; err != nil {
			return translate(err, "efficacy model")
		}
		return record(tx, actor, EntityCatalog, in.ID, "save", "efficacy %s setup %d per group %d", in.Code, in.SetupFee, in.PricePerGroup)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *CatalogService) SaveClinicalPathology(ctx context.Context, actor Actor, in models.ClinicalPathologyTest) (*models.ClinicalPathologyTest, error) {
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, validation("code and name are required")
	}
	if !catalog.ValidPanel(in.Panel) {
		return nil, validation("unknown panel %q", in.Panel)
	}
	if in.PricePerSample < 0 || in.MinSamples < 0 {
		return nil, validation("price and minimum must not be negative")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ClinicalPathologyTest
		err := tx.Where("code = ?", in.Code).First(&existing).Error
		switch {
		case err == nil:
			in.ID = existing.ID
			in.CreatedAt = existing.CreatedAt
		case storage.IsNotFound(err):
			in.ID = 0
		default:
			return err
		}
		if err := tx.Save(&in).Error; err != nil {
			return translate(err, "clinical pathology test")
		}
		return record(tx, actor, EntityCatalog, in.ID, "save", "clinical pathology %s per sample %d", in.Code, in.PricePerSample)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Delete removes an entry from whichever list holds code. Existing
// quotations keep their copied item names and prices.
func (s *CatalogService) Delete(ctx context.Context, actor Actor, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.ToxicityTest{}, &models.EfficacyModel{}, &models.ClinicalPathologyTest{}} {
			res := tx.Where("code = ?", code).Delete(m)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				return record(tx, actor, EntityCatalog, 0, "delete", "%s deleted", code)
			}
		}
		return notFound("catalog item", code)
	})
}
