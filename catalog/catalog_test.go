package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"labquote/models"
	"labquote/pricing"
	"labquote/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultFees, f.Fees)
	assert.NotEmpty(t, f.Toxicity)
	assert.NotEmpty(t, f.Efficacy)
	assert.NotEmpty(t, f.ClinicalPathology)

	c := New(f)
	assert.Equal(t, len(f.Toxicity)+len(f.Efficacy)+len(f.ClinicalPathology), c.Len())
	tx, ok := c.Toxicity("TX-RD4W-R")
	require.True(t, ok)
	assert.True(t, tx.AnalysisApplicable)
	_, ok = c.Efficacy("TX-RD4W-R")
	assert.False(t, ok, "lists are separate")
	codes := c.Codes()
	assert.IsNonDecreasing(t, codes)
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "toxicity: [\n"},
		{"duplicate code", `
toxicity:
  - {code: TX-A, name: a, price: 1}
efficacy:
  - {code: TX-A, name: b, setup_fee: 1, price_per_group: 1}
`},
		{"missing name", `
toxicity:
  - {code: TX-A, price: 1}
`},
		{"negative price", `
toxicity:
  - {code: TX-A, name: a, price: -1}
`},
		{"unknown panel", `
clinical_pathology:
  - {code: CP-A, name: a, panel: astrology, price_per_sample: 1}
`},
		{"negative fee", `
fees: {vat_percent: -10}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidFile)
		})
	}
}

func TestLoadFile(t *testing.T) {
	f, err := LoadFile("")
	require.NoError(t, err)
	assert.NotEmpty(t, f.Toxicity)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fees: {rounding_unit: 10000}
toxicity:
  - {code: TX-ONLY, name: only, price: 100}
`), 0o600))
	f, err = LoadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Toxicity, 1)
	assert.Equal(t, int64(10000), f.Fees.RoundingUnit)
	assert.Equal(t, pricing.DefaultFees.VATPercent, f.Fees.VATPercent, "missing fees fall back to defaults")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFilters(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	glp := false
	nonGLP := FilterToxicity(f.Toxicity, Query{GLP: &glp})
	for _, tt := range nonGLP {
		assert.False(t, tt.GLP, tt.Code)
	}

	genotox := FilterToxicity(f.Toxicity, Query{Group: "GENOTOXICITY"})
	for _, tt := range genotox {
		assert.Equal(t, "genotoxicity", tt.Category)
	}

	biologic := FilterToxicity(f.Toxicity, Query{Modality: "biologic"})
	for _, tt := range biologic {
		assert.True(t, models.AppliesToModality(tt.Modalities, "biologic"), tt.Code)
	}

	ames := FilterToxicity(f.Toxicity, Query{Text: "ames"})
	require.Len(t, ames, 1)
	assert.Equal(t, "TX-GEN-AMES", ames[0].Code)

	hem := FilterClinicalPathology(f.ClinicalPathology, Query{Group: models.PanelHematology})
	require.NotEmpty(t, hem)
	for _, p := range hem {
		assert.Equal(t, models.PanelHematology, p.Panel)
	}

	assert.Len(t, FilterEfficacy(f.Efficacy, Query{}), len(f.Efficacy))
}

func TestSeedAndLoad(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close(db) })
	require.NoError(t, storage.Migrate(ctx, db))

	f, err := Default()
	require.NoError(t, err)
	res, err := Seed(ctx, db, f)
	require.NoError(t, err)
	assert.Equal(t, len(f.Toxicity), res.Toxicity)

	f.Toxicity[0].Price = 1
	_, err = Seed(ctx, db, f)
	require.NoError(t, err, "seeding twice upserts by code")

	var n int64
	require.NoError(t, db.Model(&models.ToxicityTest{}).Count(&n).Error)
	assert.EqualValues(t, len(f.Toxicity), n)

	c, err := Load(ctx, db, f.Fees)
	require.NoError(t, err)
	tx, ok := c.Toxicity(f.Toxicity[0].Code)
	require.True(t, ok)
	assert.Equal(t, int64(1), tx.Price)
	assert.Equal(t, f.Fees, c.Fees())
}
