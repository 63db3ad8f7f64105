package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContractType is the kind of agreement.
type ContractType string

const (
	ContractEndorsement  ContractType = "endorsement"
	ContractNIL          ContractType = "nil"
	ContractProfessional ContractType = "professional"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractPending    ContractStatus = "pending"
	ContractActive     ContractStatus = "active"
	ContractExpired    ContractStatus = "expired"
	ContractTerminated ContractStatus = "terminated"
)

// Contract is an agreement between the organization's athlete and a partner.
// Value and payment amounts are integer cents so schedule totals are exact.
type Contract struct {
	ID              string          `json:"id"`
	OrgID           string          `json:"org_id"`
	AthleteID       string          `json:"athlete_id"`
	Title           string          `json:"title"`
	Partner         string          `json:"partner"`
	Type            ContractType    `json:"type"`
	Status          ContractStatus  `json:"status"`
	Value           int64           `json:"value"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	Terms           string          `json:"terms,omitempty"`
	PaymentSchedule []Payment       `json:"payment_schedule"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Athlete         *AthleteSummary `json:"athlete,omitempty"`
}

// AthleteSummary is the athlete name attached to contract listings.
type AthleteSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AthleteName returns the attached athlete's full name, or "".
func (c *Contract) AthleteName() string {
	if c.Athlete == nil {
		return ""
	}
	return strings.TrimSpace(c.Athlete.FirstName + " " + c.Athlete.LastName)
}

// Payment is one installment of a contract's payment schedule.
type Payment struct {
	Amount      int64      `json:"amount"`
	DueDate     time.Time  `json:"due_date"`
	Description string     `json:"description,omitempty"`
	Paid        bool       `json:"paid"`
	PaidDate    *time.Time `json:"paid_date,omitempty"`
}

// ScheduledTotal sums every installment.
func (c *Contract) ScheduledTotal() int64 {
	var total int64
	for _, p := range c.PaymentSchedule {
		total += p.Amount
	}
	return total
}

// PaidTotal sums the installments marked paid.
func (c *Contract) PaidTotal() int64 {
	var total int64
	for _, p := range c.PaymentSchedule {
		if p.Paid {
			total += p.Amount
		}
	}
	return total
}

// ScheduleBalanced reports whether the schedule adds up to the contract value.
func (c *Contract) ScheduleBalanced() bool {
	return c.ScheduledTotal() == c.Value
}

// Validate checks the contract's invariants.
func (c *Contract) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("contract title is required")
	}
	if c.AthleteID == "" {
		return fmt.Errorf("athlete is required")
	}
	switch c.Type {
	case ContractEndorsement, ContractNIL, ContractProfessional:
	default:
		return fmt.Errorf("invalid contract type: %s", c.Type)
	}
	switch c.Status {
	case ContractDraft, ContractPending, ContractActive, ContractExpired, ContractTerminated:
	default:
		return fmt.Errorf("invalid contract status: %s", c.Status)
	}
	if c.Value < 0 {
		return fmt.Errorf("contract value cannot be negative")
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("end date cannot be before start date")
	}
	for i, p := range c.PaymentSchedule {
		if err := ValidatePositiveAmount(p.Amount); err != nil {
			return fmt.Errorf("payment %d: %w", i+1, err)
		}
		if p.DueDate.IsZero() {
			return fmt.Errorf("payment %d: due date is required", i+1)
		}
	}
	return nil
}

// SetPaid flips a payment's paid flag, stamping or clearing paid_date.
func (p *Payment) SetPaid(paid bool, now time.Time) {
	p.Paid = paid
	if paid {
		t := now
		p.PaidDate = &t
	} else {
		p.PaidDate = nil
	}
}
