package filter

import (
	"time"

	"github.com/rosterdesk/platform/internal/domain"
)

// Athlete sort fields.
const (
	AthleteSortName               = "name"
	AthleteSortPosition           = "position"
	AthleteSortClassYear          = "class_year"
	AthleteSortNILValue           = "nil_value"
	AthleteSortTotalContractValue = "total_contract_value"
	AthleteSortGrade              = "current_grade"
	AthleteSortCreatedAt          = "created_at"
)

// AthleteSortFields lists the accepted athlete sort fields.
var AthleteSortFields = []string{
	AthleteSortName, AthleteSortPosition, AthleteSortClassYear, AthleteSortNILValue,
	AthleteSortTotalContractValue, AthleteSortGrade, AthleteSortCreatedAt,
}

// AthleteFilter is the FilterSpec for athletes.
type AthleteFilter struct {
	Search       string
	Position     string
	Sport        string
	NILTier      string
	CurrentGrade string
	ClassYear    string
	NILValue     Range[int64]
	Sort
}

// Athletes returns the athletes matching f, ordered by f.Sort.
// A missing nil_value counts as 0 in both the range filter and the sort.
func Athletes(in []domain.Athlete, f AthleteFilter) []domain.Athlete {
	keep := func(a *domain.Athlete) bool {
		return search(f.Search, a.FirstName+" "+a.LastName, a.School, a.Email) &&
			category(f.Position, a.Position) &&
			category(f.Sport, a.Sport) &&
			category(f.NILTier, a.NILTier) &&
			category(f.CurrentGrade, a.CurrentGrade) &&
			category(f.ClassYear, a.ClassYear) &&
			f.NILValue.Contains(orZero(a.NILValue))
	}
	return run(in, keep, athleteComparator(f.By), f.desc())
}

func athleteComparator(by string) cmpFunc[domain.Athlete] {
	switch by {
	case AthleteSortName:
		return byString(newCollator(), func(a domain.Athlete) string { return a.FirstName + " " + a.LastName })
	case AthleteSortPosition:
		return byString(newCollator(), func(a domain.Athlete) string { return a.Position })
	case AthleteSortClassYear:
		return byString(newCollator(), func(a domain.Athlete) string { return a.ClassYear })
	case AthleteSortGrade:
		return byString(newCollator(), func(a domain.Athlete) string { return a.CurrentGrade })
	case AthleteSortNILValue:
		return byNumber(func(a domain.Athlete) int64 { return orZero(a.NILValue) })
	case AthleteSortTotalContractValue:
		return byNumber(func(a domain.Athlete) int64 { return orZero(a.TotalContractValue) })
	case AthleteSortCreatedAt:
		return byDate(func(a domain.Athlete) *time.Time { return timePtr(a.CreatedAt) })
	}
	return nil
}
