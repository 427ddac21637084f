package models

import "time"

// Template categories.
const (
	CategoryAll            = "All Templates"
	CategoryEcommerce      = "E-commerce"
	CategoryLeadGeneration = "Lead Generation"
	CategorySaaS           = "SaaS"
	CategoryEducation      = "Education"
	CategoryMarketing      = "Marketing"
	CategoryHealthcare     = "Healthcare"
	CategoryRealEstate     = "Real Estate"
	CategoryConsulting     = "Consulting"
)

var templateCategories = map[string]struct{}{
	CategoryEcommerce:      {},
	CategoryLeadGeneration: {},
	CategorySaaS:           {},
	CategoryEducation:      {},
	CategoryMarketing:      {},
	CategoryHealthcare:     {},
	CategoryRealEstate:     {},
	CategoryConsulting:     {},
}

// ValidCategory reports whether name is a concrete template category.
func ValidCategory(name string) bool {
	_, ok := templateCategories[name]
	return ok
}

// Difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Template is a reusable funnel blueprint from the catalogue.
type Template struct {
	ID            string          `json:"id" bson:"_id" yaml:"-"`
	Name          string          `json:"name" bson:"name" yaml:"name"`
	Description   string          `json:"description" bson:"description" yaml:"description"`
	Category      string          `json:"category" bson:"category" yaml:"category"`
	Preview       string          `json:"preview,omitempty" bson:"preview,omitempty" yaml:"preview"`
	Steps         []StepBlueprint `json:"steps" bson:"steps" yaml:"steps"`
	Rating        float64         `json:"rating" bson:"rating" yaml:"rating"`
	Downloads     int64           `json:"downloads" bson:"downloads" yaml:"downloads"`
	Featured      bool            `json:"featured" bson:"featured" yaml:"featured"`
	Tags          []string        `json:"tags" bson:"tags" yaml:"tags"`
	Difficulty    string          `json:"difficulty" bson:"difficulty" yaml:"difficulty"`
	EstimatedTime string          `json:"estimatedTime" bson:"estimatedTime" yaml:"estimated_time"`
	IsActive      bool            `json:"isActive" bson:"isActive" yaml:"-"`
	CreatedBy     string          `json:"createdBy,omitempty" bson:"createdBy,omitempty" yaml:"-"`
	CreatedAt     time.Time       `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt     time.Time       `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// StepBlueprint describes a step a template instantiates into a funnel.
type StepBlueprint struct {
	Type        StepType       `json:"type" bson:"type" yaml:"type"`
	Title       string         `json:"title" bson:"title" yaml:"title"`
	Description string         `json:"description,omitempty" bson:"description,omitempty" yaml:"description"`
	Settings    map[string]any `json:"settings" bson:"settings" yaml:"settings"`
	Order       int            `json:"order" bson:"order" yaml:"order"`
}

// CategoryCount is one entry of the category facet.
type CategoryCount struct {
	Name  string `json:"name" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}
