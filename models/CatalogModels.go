package models

import (
	"time"
)

// Modalities used to scope catalog items.
const (
	ModalitySmallMolecule = "small_molecule"
	ModalityBiologic      = "biologic"
	ModalityCellTherapy   = "cell_therapy"
	ModalityGeneTherapy   = "gene_therapy"
	ModalityVaccine       = "vaccine"
	ModalityMedicalDevice = "medical_device"
)

// ToxicityTest is a catalog entry for a toxicity study.
type ToxicityTest struct {
	ID                 uint       `gorm:"primaryKey;column:id" json:"id" yaml:"-"`
	Code               string     `gorm:"column:code;uniqueIndex;not null" json:"code" yaml:"code" binding:"required" example:"TX-RD4W-R"`
	Name               string     `gorm:"column:name;not null" json:"name" yaml:"name" binding:"required" example:"4-week repeated dose toxicity (rat)"`
	Category           string     `gorm:"column:category;index" json:"category" yaml:"category" example:"repeated_dose"`
	Species            string     `gorm:"column:species" json:"species" yaml:"species" example:"rat"`
	Route              string     `gorm:"column:route" json:"route" yaml:"route" example:"oral"`
	DurationWeeks      int        `gorm:"column:duration_weeks" json:"duration_weeks" yaml:"duration_weeks" example:"4"`
	GLP                bool       `gorm:"column:glp" json:"glp" yaml:"glp" example:"true"`
	Modalities         StringList `gorm:"column:modalities" json:"modalities" yaml:"modalities" swaggertype:"array,string"`
	Price              int64      `gorm:"column:price;not null" json:"price" yaml:"price" example:"48000000"`
	AnalysisApplicable bool       `gorm:"column:analysis_applicable" json:"analysis_applicable" yaml:"analysis_applicable"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"created_at" yaml:"-"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updated_at" yaml:"-"`
}

func (ToxicityTest) TableName() string {
	return "toxicity_test"
}

// EfficacyModel is a catalog entry for a disease model used in efficacy studies.
type EfficacyModel struct {
	ID                     uint       `gorm:"primaryKey;column:id" json:"id" yaml:"-"`
	Code                   string     `gorm:"column:code;uniqueIndex;not null" json:"code" yaml:"code" binding:"required" example:"EF-CIA-M"`
	Name                   string     `gorm:"column:name;not null" json:"name" yaml:"name" binding:"required" example:"Collagen-induced arthritis (mouse)"`
	DiseaseArea            string     `gorm:"column:disease_area;index" json:"disease_area" yaml:"disease_area" example:"immunology"`
	Species                string     `gorm:"column:species" json:"species" yaml:"species" example:"mouse"`
	Modalities             StringList `gorm:"column:modalities" json:"modalities" yaml:"modalities" swaggertype:"array,string"`
	SetupFee               int64      `gorm:"column:setup_fee" json:"setup_fee" yaml:"setup_fee" example:"3000000"`
	PricePerGroup          int64      `gorm:"column:price_per_group" json:"price_per_group" yaml:"price_per_group" example:"4500000"`
	DefaultGroups          int        `gorm:"column:default_groups" json:"default_groups" yaml:"default_groups" example:"5"`
	DefaultAnimalsPerGroup int        `gorm:"column:default_animals_per_group" json:"default_animals_per_group" yaml:"default_animals_per_group" example:"10"`
	CreatedAt              time.Time  `gorm:"column:created_at" json:"created_at" yaml:"-"`
	UpdatedAt              time.Time  `gorm:"column:updated_at" json:"updated_at" yaml:"-"`
}

func (EfficacyModel) TableName() string {
	return "efficacy_model"
}

// Clinical pathology panels
const (
	PanelHematology   = "hematology"
	PanelBiochemistry = "biochemistry"
	PanelCoagulation  = "coagulation"
	PanelUrinalysis   = "urinalysis"
)

// ClinicalPathologyTest is a catalog entry billed per sample.
type ClinicalPathologyTest struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id" yaml:"-"`
	Code           string    `gorm:"column:code;uniqueIndex;not null" json:"code" yaml:"code" binding:"required" example:"CP-HEM-CBC"`
	Name           string    `gorm:"column:name;not null" json:"name" yaml:"name" binding:"required" example:"Complete blood count"`
	Panel          string    `gorm:"column:panel;index" json:"panel" yaml:"panel" example:"hematology"`
	PricePerSample int64     `gorm:"column:price_per_sample;not null" json:"price_per_sample" yaml:"price_per_sample" example:"35000"`
	MinSamples     int       `gorm:"column:min_samples" json:"min_samples" yaml:"min_samples" example:"10"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at" yaml:"-"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at" yaml:"-"`
}

func (ClinicalPathologyTest) TableName() string {
	return "clinical_pathology_test"
}

// AppliesToModality reports whether a catalog item with the given modality
// list can be quoted for modality. An empty list applies to every modality.
func AppliesToModality(list StringList, modality string) bool {
	if modality == "" || len(list) == 0 {
		return true
	}
	return list.Contains(modality)
}
