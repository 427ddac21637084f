package models

// StepType tags the kind of page or action a step represents.
type StepType string

const (
	StepLanding       StepType = "landing"
	StepForm          StepType = "form"
	StepCheckout      StepType = "checkout"
	StepEmail         StepType = "email"
	StepUpsell        StepType = "upsell"
	StepCommunity     StepType = "community"
	StepTypeAnalytics StepType = "analytics"
	StepThankYou      StepType = "thank-you"
)

var stepTypes = map[StepType]struct{}{
	StepLanding:       {},
	StepForm:          {},
	StepCheckout:      {},
	StepEmail:         {},
	StepUpsell:        {},
	StepCommunity:     {},
	StepTypeAnalytics: {},
	StepThankYou:      {},
}

func (t StepType) Valid() bool {
	_, ok := stepTypes[t]
	return ok
}

// Step is one stage of a funnel. Settings is an open bag whose keys depend on Type.
type Step struct {
	ID          string         `json:"id" bson:"id"`
	Type        StepType       `json:"type" bson:"type"`
	Title       string         `json:"title" bson:"title"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Settings    map[string]any `json:"settings" bson:"settings"`
	Order       int            `json:"order" bson:"order"`
	IsActive    bool           `json:"isActive" bson:"isActive"`
}
