package pricing

import (
	"labquote/models"
)

// Catalog resolves catalog codes to priced entries.
type Catalog interface {
	Toxicity(code string) (models.ToxicityTest, bool)
	Efficacy(code string) (models.EfficacyModel, bool)
	ClinicalPathology(code string) (models.ClinicalPathologyTest, bool)
}

// Result is a fully priced set of quotation lines.
type Result struct {
	Items   []models.QuotationItem `json:"items"`
	Summary Summary                `json:"summary"`
}

// Quote prices the requested lines of one quotation type against the catalog.
func Quote(cat Catalog, fees Fees, quotationType, modality string, inputs []models.QuotationItemInput, d Discount) (Result, error) {
	fees = fees.WithDefaults()

	items := make([]models.QuotationItem, 0, len(inputs))
	amounts := make([]int64, 0, len(inputs))
	var analysis []int

	for i, in := range inputs {
		item, err := priceItem(cat, quotationType, modality, in)
		if err != nil {
			return Result{}, err
		}
		item.SortOrder = i + 1
		if item.WithAnalysis {
			analysis = append(analysis, AnalysisSamples(item.Groups, item.AnimalsPerGroup, item.Timepoints)*item.Quantity)
		}
		items = append(items, item)
		amounts = append(amounts, item.Amount)
	}

	summary, err := Summarize(fees, Subtotal(amounts), AnalysisCost(fees, analysis), d)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: items, Summary: summary}, nil
}

func priceItem(cat Catalog, quotationType, modality string, in models.QuotationItemInput) (models.QuotationItem, error) {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	item := models.QuotationItem{
		CatalogCode:     in.CatalogCode,
		Quantity:        qty,
		Groups:          in.Groups,
		AnimalsPerGroup: in.AnimalsPerGroup,
		Timepoints:      in.Timepoints,
		Samples:         in.Samples,
	}

	switch quotationType {
	case models.QuotationTypeToxicity:
		t, ok := cat.Toxicity(in.CatalogCode)
		if !ok {
			return item, invalid("unknown toxicity test %q", in.CatalogCode)
		}
		if !models.AppliesToModality(t.Modalities, modality) {
			return item, invalid("%s does not apply to modality %s", t.Code, modality)
		}
		if in.WithAnalysis {
			if !t.AnalysisApplicable {
				return item, invalid("%s does not offer bioanalysis", t.Code)
			}
			if AnalysisSamples(in.Groups, in.AnimalsPerGroup, in.Timepoints) == 0 {
				return item, invalid("%s analysis needs groups, animals per group and timepoints", t.Code)
			}
		}
		item.Name, item.Category, item.GLP = t.Name, t.Category, t.GLP
		item.WithAnalysis = in.WithAnalysis
		item.UnitPrice = t.Price

	case models.QuotationTypeEfficacy:
		m, ok := cat.Efficacy(in.CatalogCode)
		if !ok {
			return item, invalid("unknown efficacy model %q", in.CatalogCode)
		}
		if !models.AppliesToModality(m.Modalities, modality) {
			return item, invalid("%s does not apply to modality %s", m.Code, modality)
		}
		if item.Groups == 0 {
			item.Groups = m.DefaultGroups
		}
		if item.AnimalsPerGroup == 0 {
			item.AnimalsPerGroup = m.DefaultAnimalsPerGroup
		}
		price, err := EfficacyUnitPrice(m.SetupFee, m.PricePerGroup, item.Groups)
		if err != nil {
			return item, err
		}
		item.Name, item.Category = m.Name, m.DiseaseArea
		item.UnitPrice = price

	case models.QuotationTypeClinicalPathology:
		p, ok := cat.ClinicalPathology(in.CatalogCode)
		if !ok {
			return item, invalid("unknown clinical pathology test %q", in.CatalogCode)
		}
		price, err := ClinicalPathologyUnitPrice(p.PricePerSample, in.Samples, p.MinSamples)
		if err != nil {
			return item, err
		}
		if item.Samples < p.MinSamples {
			item.Samples = p.MinSamples
		}
		item.Name, item.Category = p.Name, p.Panel
		item.UnitPrice = price

	default:
		return item, invalid("unknown quotation type %q", quotationType)
	}

	amount, err := ItemAmount(item.UnitPrice, item.Quantity)
	if err != nil {
		return item, err
	}
	item.Amount = amount
	return item, nil
}
