package filter

import (
	"time"

	"github.com/rosterdesk/platform/internal/domain"
)

// Contract sort fields.
const (
	ContractSortTitle     = "title"
	ContractSortPartner   = "partner"
	ContractSortAthlete   = "athlete"
	ContractSortValue     = "value"
	ContractSortStartDate = "start_date"
	ContractSortEndDate   = "end_date"
	ContractSortStatus    = "status"
	ContractSortCreatedAt = "created_at"
)

var ContractSortFields = []string{
	ContractSortTitle, ContractSortPartner, ContractSortAthlete, ContractSortValue,
	ContractSortStartDate, ContractSortEndDate, ContractSortStatus, ContractSortCreatedAt,
}

// ContractFilter is the FilterSpec for contracts.
type ContractFilter struct {
	Search    string
	Type      string
	Status    string
	AthleteID string
	Value     Range[int64]
	StartDate DateRange
	EndDate   DateRange
	Sort
}

// Contracts returns the contracts matching f, ordered by f.Sort.
// Search covers title, partner and the attached athlete's name.
func Contracts(in []domain.Contract, f ContractFilter) []domain.Contract {
	keep := func(c *domain.Contract) bool {
		start := c.StartDate
		return search(f.Search, c.Title, c.Partner, c.AthleteName()) &&
			category(f.Type, string(c.Type)) &&
			category(f.Status, string(c.Status)) &&
			category(f.AthleteID, c.AthleteID) &&
			f.Value.Contains(c.Value) &&
			f.StartDate.Contains(&start) &&
			f.EndDate.Contains(c.EndDate)
	}
	return run(in, keep, contractComparator(f.By), f.desc())
}

func contractComparator(by string) cmpFunc[domain.Contract] {
	switch by {
	case ContractSortTitle:
		return byString(newCollator(), func(c domain.Contract) string { return c.Title })
	case ContractSortPartner:
		return byString(newCollator(), func(c domain.Contract) string { return c.Partner })
	case ContractSortAthlete:
		return byString(newCollator(), func(c domain.Contract) string { return c.AthleteName() })
	case ContractSortStatus:
		return byString(newCollator(), func(c domain.Contract) string { return string(c.Status) })
	case ContractSortValue:
		return byNumber(func(c domain.Contract) int64 { return c.Value })
	case ContractSortStartDate:
		return byDate(func(c domain.Contract) *time.Time { return timePtr(c.StartDate) })
	case ContractSortEndDate:
		return byDate(func(c domain.Contract) *time.Time { return c.EndDate })
	case ContractSortCreatedAt:
		return byDate(func(c domain.Contract) *time.Time { return timePtr(c.CreatedAt) })
	}
	return nil
}
