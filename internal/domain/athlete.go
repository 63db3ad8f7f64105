package domain

import (
	"fmt"
	"strings"
	"time"
)

// NIL (name, image and likeness) valuation tiers.
const (
	NILTierElite      = "elite"
	NILTierPremium    = "premium"
	NILTierRising     = "rising"
	NILTierDeveloping = "developing"
)

// Brand partnership statuses.
const (
	PartnershipPending   = "pending"
	PartnershipActive    = "active"
	PartnershipCompleted = "completed"
	PartnershipCancelled = "cancelled"
)

// Athlete is a represented athlete. Money fields are integer cents.
type Athlete struct {
	ID                    string                `json:"id"`
	OrgID                 string                `json:"org_id"`
	FirstName             string                `json:"first_name"`
	LastName              string                `json:"last_name"`
	Email                 string                `json:"email,omitempty"`
	Phone                 string                `json:"phone,omitempty"`
	Position              string                `json:"position,omitempty"`
	Sport                 string                `json:"sport,omitempty"`
	School                string                `json:"school,omitempty"`
	ClassYear             string                `json:"class_year,omitempty"`
	Hometown              string                `json:"hometown,omitempty"`
	HeightInches          *int                  `json:"height_inches,omitempty"`
	WeightLbs             *int                  `json:"weight_lbs,omitempty"`
	NILTier               string                `json:"nil_tier,omitempty"`
	NILValue              *int64                `json:"nil_value,omitempty"`
	TotalContractValue    *int64                `json:"total_contract_value,omitempty"`
	CurrentGrade          string                `json:"current_grade,omitempty"`
	ScoutingReports       []ScoutingReport      `json:"scouting_reports"`
	Events                []AthleteEvent        `json:"events"`
	DevelopmentActivities []DevelopmentActivity `json:"development_activities"`
	BrandPartnerships     []BrandPartnership    `json:"brand_partnerships"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// FullName returns "first last".
func (a *Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// ScoutingReport is a written evaluation with a letter grade. Evaluation is markdown.
type ScoutingReport struct {
	ID         string    `json:"id"`
	Evaluation string    `json:"evaluation"`
	Grade      string    `json:"grade"`
	Scout      string    `json:"scout,omitempty"`
	Date       time.Time `json:"date"`
}

// AthleteEvent is an appearance or obligation tracked on the athlete record.
type AthleteEvent struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Date      time.Time      `json:"date"`
	Fulfilled bool           `json:"fulfilled"`
	Type      string         `json:"type,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DevelopmentActivity is a professional-development entry (media training, financial literacy, ...).
type DevelopmentActivity struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
}

// BrandPartnership is a sponsorship deal. Value is cents; InKind describes non-cash compensation.
type BrandPartnership struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	Value       *int64   `json:"value,omitempty"`
	InKind      string   `json:"in_kind,omitempty"`
	Obligations []string `json:"obligations,omitempty"`
	Status      string   `json:"status"`
}

// Validate checks the athlete's invariants.
func (a *Athlete) Validate() error {
	if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if a.Email != "" {
		if err := ValidateEmail(a.Email); err != nil {
			return err
		}
	}
	if a.NILTier != "" && !oneOf(a.NILTier, NILTierElite, NILTierPremium, NILTierRising, NILTierDeveloping) {
		return fmt.Errorf("invalid nil tier: %s", a.NILTier)
	}
	if a.HeightInches != nil && *a.HeightInches <= 0 {
		return fmt.Errorf("height must be positive")
	}
	if a.WeightLbs != nil && *a.WeightLbs <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	if err := validateOptionalAmount("nil value", a.NILValue); err != nil {
		return err
	}
	if err := validateOptionalAmount("total contract value", a.TotalContractValue); err != nil {
		return err
	}
	for _, bp := range a.BrandPartnerships {
		if strings.TrimSpace(bp.Company) == "" {
			return fmt.Errorf("brand partnership company is required")
		}
		if !oneOf(bp.Status, PartnershipPending, PartnershipActive, PartnershipCompleted, PartnershipCancelled) {
			return fmt.Errorf("invalid brand partnership status: %s", bp.Status)
		}
		if err := validateOptionalAmount("brand partnership value", bp.Value); err != nil {
			return err
		}
	}
	for _, ev := range a.Events {
		if strings.TrimSpace(ev.Title) == "" {
			return fmt.Errorf("athlete event title is required")
		}
	}
	return nil
}

func validateOptionalAmount(field string, v *int64) error {
	if v != nil && *v < 0 {
		return fmt.Errorf("%s cannot be negative", field)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
