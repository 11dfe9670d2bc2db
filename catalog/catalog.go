// Package catalog loads the test price list and serves lookups by code.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"labquote/models"
	"labquote/pricing"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalog.yaml
var defaultFile []byte

var ErrInvalidFile = errors.New("invalid catalog file")

var panels = map[string]bool{
	models.PanelHematology:   true,
	models.PanelBiochemistry: true,
	models.PanelCoagulation:  true,
	models.PanelUrinalysis:   true,
}

// File is the on-disk catalog layout.
type File struct {
	Fees              pricing.Fees                   `yaml:"fees"`
	Toxicity          []models.ToxicityTest          `yaml:"toxicity"`
	Efficacy          []models.EfficacyModel         `yaml:"efficacy"`
	ClinicalPathology []models.ClinicalPathologyTest `yaml:"clinical_pathology"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.Fees = f.Fees.WithDefaults()
	return &f, nil
}

// Default returns the embedded price list.
func Default() (*File, error) {
	return Parse(defaultFile)
}

// LoadFile reads a catalog from path, or the embedded one when path is empty.
func LoadFile(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks codes are present and unique and prices are sane.
func (f *File) Validate() error {
	seen := make(map[string]bool)
	check := func(code, name string) error {
		code = strings.TrimSpace(code)
		if code == "" || strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: entry %q needs a code and a name", ErrInvalidFile, code)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate code %s", ErrInvalidFile, code)
		}
		seen[code] = true
		return nil
	}

	for _, t := range f.Toxicity {
		if err := check(t.Code, t.Name); err != nil {
			return err
		}
		if t.Price < 0 {
			return fmt.Errorf("%w: %s has a negative price", ErrInvalidFile, t.Code)
		}
	}
	for _, m := range f.Efficacy {
		if err := check(m.Code, m.Name); err != nil {
			return err
		}
		if m.SetupFee < 0 || m.PricePerGroup < 0 {
			return fmt.Errorf("%w: %s has a negative price", ErrInvalidFile, m.Code)
		}
	}
	for _, p := range f.ClinicalPathology {
		if err := check(p.Code, p.Name); err != nil {
			return err
		}
		if p.PricePerSample < 0 || p.MinSamples < 0 {
			return fmt.Errorf("%w: %s has a negative price or minimum", ErrInvalidFile, p.Code)
		}
		if !panels[p.Panel] {
			return fmt.Errorf("%w: %s has unknown panel %q", ErrInvalidFile, p.Code, p.Panel)
		}
	}
	if f.Fees.MethodValidationFee < 0 || f.Fees.PerSampleFee < 0 || f.Fees.RoundingUnit < 0 || f.Fees.VATPercent < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidFile)
	}
	return nil
}

// ValidPanel reports whether p is a known clinical pathology panel.
func ValidPanel(p string) bool {
	return panels[p]
}

// Catalog is an in-memory snapshot keyed by code. It satisfies pricing.Catalog.
type Catalog struct {
	fees pricing.Fees
	tox  map[string]models.ToxicityTest
	eff  map[string]models.EfficacyModel
	cp   map[string]models.ClinicalPathologyTest
}

// New indexes the entries of f.
func New(f *File) *Catalog {
	c := &Catalog{
		fees: f.Fees.WithDefaults(),
		tox:  make(map[string]models.ToxicityTest, len(f.Toxicity)),
		eff:  make(map[string]models.EfficacyModel, len(f.Efficacy)),
		cp:   make(map[string]models.ClinicalPathologyTest, len(f.ClinicalPathology)),
	}
	for _, t := range f.Toxicity {
		c.tox[t.Code] = t
	}
	for _, m := range f.Efficacy {
		c.eff[m.Code] = m
	}
	for _, p := range f.ClinicalPathology {
		c.cp[p.Code] = p
	}
	return c
}

// Load builds a snapshot from the catalog tables.
func Load(ctx context.Context, db *gorm.DB, fees pricing.Fees) (*Catalog, error) {
	f := &File{Fees: fees}
	if err := db.WithContext(ctx).Order("code").Find(&f.Toxicity).Error; err != nil {
		return nil, fmt.Errorf("load toxicity tests: %w", err)
	}
	if err := db.WithContext(ctx).Order("code").Find(&f.Efficacy).Error; err != nil {
		return nil, fmt.Errorf("load efficacy models: %w", err)
	}
	if err := db.WithContext(ctx).Order("code").Find(&f.ClinicalPathology).Error; err != nil {
		return nil, fmt.Errorf("load clinical pathology tests: %w", err)
	}
	return New(f), nil
}

func (c *Catalog) Fees() pricing.Fees { return c.fees }

func (c *Catalog) Toxicity(code string) (models.ToxicityTest, bool) {
	t, ok := c.tox[code]
	return t, ok
}

func (c *Catalog) Efficacy(code string) (models.EfficacyModel, bool) {
	m, ok := c.eff[code]
	return m, ok
}

func (c *Catalog) ClinicalPathology(code string) (models.ClinicalPathologyTest, bool) {
	p, ok := c.cp[code]
	return p, ok
}

// Len is the total number of entries across the three lists.
func (c *Catalog) Len() int {
	return len(c.tox) + len(c.eff) + len(c.cp)
}

// Query narrows catalog listings. Group matches category, disease area or
// panel depending on the list.
type Query struct {
	Modality string
	GLP      *bool
	Group    string
	Text     string
}

func (q Query) matchText(fields ...string) bool {
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// FilterToxicity applies q to a toxicity list.
func FilterToxicity(list []models.ToxicityTest, q Query) []models.ToxicityTest {
	out := make([]models.ToxicityTest, 0, len(list))
	for _, t := range list {
		if !models.AppliesToModality(t.Modalities, q.Modality) {
			continue
		}
		if q.GLP != nil && t.GLP != *q.GLP {
			continue
		}
		if q.Group != "" && !strings.EqualFold(t.Category, q.Group) {
			continue
		}
		if !q.matchText(t.Code, t.Name, t.Species) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterEfficacy applies q to an efficacy list. GLP is ignored.
func FilterEfficacy(list []models.EfficacyModel, q Query) []models.EfficacyModel {
	out := make([]models.EfficacyModel, 0, len(list))
	for _, m := range list {
		if !models.AppliesToModality(m.Modalities, q.Modality) {
			continue
		}
		if q.Group != "" && !strings.EqualFold(m.DiseaseArea, q.Group) {
			continue
		}
		if !q.matchText(m.Code, m.Name, m.Species) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FilterClinicalPathology applies q to a clinical pathology list.
func FilterClinicalPathology(list []models.ClinicalPathologyTest, q Query) []models.ClinicalPathologyTest {
	out := make([]models.ClinicalPathologyTest, 0, len(list))
	for _, p := range list {
		if q.Group != "" && !strings.EqualFold(p.Panel, q.Group) {
			continue
		}
		if !q.matchText(p.Code, p.Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SeedResult counts rows written by Seed.
type SeedResult struct {
	Toxicity          int
	Efficacy          int
	ClinicalPathology int
}

// Seed upserts every entry of f by code inside one transaction.
func Seed(ctx context.Context, db *gorm.DB, f *File) (SeedResult, error) {
	var res SeedResult
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(f.Toxicity) > 0 {
			rows := append([]models.ToxicityTest(nil), f.Toxicity...)
			if err := tx.Clauses(upsert).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed toxicity tests: %w", err)
			}
			res.Toxicity = len(rows)
		}
		if len(f.Efficacy) > 0 {
			rows := append([]models.EfficacyModel(nil), f.Efficacy...)
			if err := tx.Clauses(upsert).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed efficacy models: %w", err)
			}
			res.Efficacy = len(rows)
		}
		if len(f.ClinicalPathology) > 0 {
			rows := append([]models.ClinicalPathologyTest(nil), f.ClinicalPathology...)
			if err := tx.Clauses(upsert).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed clinical pathology tests: %w", err)
			}
			res.ClinicalPathology = len(rows)
		}
		return nil
	})
	return res, err
}

// Codes returns every code in the snapshot, sorted.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, c.Len())
	for k := range c.tox {
		codes = append(codes, k)
	}
	for k := range c.eff {
		codes = append(codes, k)
	}
	for k := range c.cp {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}
