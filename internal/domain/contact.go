package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContactType classifies a person in the agency's network.
type ContactType string

const (
	ContactCoach            ContactType = "coach"
	ContactScout            ContactType = "scout"
	ContactBrand            ContactType = "brand"
	ContactMedia            ContactType = "media"
	ContactFamily           ContactType = "family"
	ContactAttorney         ContactType = "attorney"
	ContactFinancialAdvisor ContactType = "financial_advisor"
	ContactOther            ContactType = "other"
)

// Valid reports whether t is a known contact type.
func (t ContactType) Valid() bool {
	switch t {
	case ContactCoach, ContactScout, ContactBrand, ContactMedia, ContactFamily,
		ContactAttorney, ContactFinancialAdvisor, ContactOther:
		return true
	}
	return false
}

// Contact is a person associated with the organization's network.
type Contact struct {
	ID              string      `json:"id"`
	OrgID           string      `json:"org_id"`
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Company         string      `json:"company,omitempty"`
	Title           string      `json:"title,omitempty"`
	ContactType     ContactType `json:"contact_type"`
	Notes           string      `json:"notes,omitempty"`
	LastContactedAt *time.Time  `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// FullName returns "first last".
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate checks the contact's invariants.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("contact name is required")
	}
	if !c.ContactType.Valid() {
		return fmt.Errorf("invalid contact type: %s", c.ContactType)
	}
	if c.Email != "" {
		if err := ValidateEmail(c.Email); err != nil {
			return err
		}
	}
	return nil
}
