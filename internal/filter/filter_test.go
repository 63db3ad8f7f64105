package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cents(v int64) *int64 { return &v }

func day(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }

func athletes() []domain.Athlete {
	return []domain.Athlete{
		{ID: "1", FirstName: "Marcus", LastName: "Hill", Position: "QB", NILTier: domain.NILTierElite, NILValue: cents(250000), CreatedAt: day(3)},
		{ID: "2", FirstName: "Jalen", LastName: "Reed", Position: "WR", NILTier: domain.NILTierRising, CreatedAt: day(1)},
		{ID: "3", FirstName: "andre", LastName: "Brooks", Position: "QB", NILTier: domain.NILTierRising, NILValue: cents(40000), CreatedAt: day(2)},
		{ID: "4", FirstName: "Zion", LastName: "Carter", Position: "RB", NILValue: cents(0)},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func athleteIDs(in []domain.Athlete) []string {
	return ids(in, func(a domain.Athlete) string { return a.ID })
}

func TestAthletes_EmptySpecIsIdentity(t *testing.T) {
	in := athletes()
	out := Athletes(in, AthleteFilter{})
	assert.Equal(t, in, out)

	assert.Empty(t, Athletes(nil, AthleteFilter{}))
	assert.NotNil(t, Athletes(nil, AthleteFilter{}))
}

func TestAthletes_DoesNotMutateInput(t *testing.T) {
	in := athletes()
	before := athleteIDs(in)
	_ = Athletes(in, AthleteFilter{Sort: Sort{By: AthleteSortName, Direction: Desc}})
	assert.Equal(t, before, athleteIDs(in))
}

func TestAthletes_Search(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"full name", "Marcus Hill", []string{"1"}},
		{"case insensitive", "REED", []string{"2"}},
		{"substring", "ar", []string{"1", "4"}},
		{"blank matches all", "   ", []string{"1", "2", "3", "4"}},
		{"no match", "nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, athleteIDs(Athletes(athletes(), AthleteFilter{Search: tt.search})))
		})
	}
}

func TestAthletes_Categorical(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, athleteIDs(Athletes(athletes(), AthleteFilter{Position: "QB"})))
	assert.Equal(t, []string{"1", "2", "3", "4"}, athleteIDs(Athletes(athletes(), AthleteFilter{Position: All})))
	// empty means no filter, not "match empty tier"
	assert.Len(t, Athletes(athletes(), AthleteFilter{NILTier: ""}), 4)
}

func TestAthletes_CombinedFiltersAreANDed(t *testing.T) {
	f := AthleteFilter{
		Search:   "a",
		Position: "QB",
		NILTier:  domain.NILTierRising,
		NILValue: Range[int64]{Min: cents(10000)},
	}
	assert.Equal(t, []string{"3"}, athleteIDs(Athletes(athletes(), f)))
}

func TestAthletes_NILValueRange(t *testing.T) {
	// missing nil_value counts as 0 and so falls inside [0, 40000]
	f := AthleteFilter{NILValue: Range[int64]{Min: cents(0), Max: cents(40000)}}
	assert.Equal(t, []string{"2", "3", "4"}, athleteIDs(Athletes(athletes(), f)))

	f = AthleteFilter{NILValue: Range[int64]{Min: cents(40000)}}
	assert.Equal(t, []string{"1", "3"}, athleteIDs(Athletes(athletes(), f)), "inclusive min")
}

func TestAthletes_SortByNILValueMissingIsZero(t *testing.T) {
	asc := Athletes(athletes(), AthleteFilter{Sort: Sort{By: AthleteSortNILValue, Direction: Asc}})
	// 2 (missing) and 4 (explicit 0) tie and keep input order
	assert.Equal(t, []string{"2", "4", "3", "1"}, athleteIDs(asc))

	desc := Athletes(athletes(), AthleteFilter{Sort: Sort{By: AthleteSortNILValue, Direction: Desc}})
	assert.Equal(t, []string{"1", "3", "2", "4"}, athleteIDs(desc))
}

func TestAthletes_SortByNameIsLocaleAware(t *testing.T) {
	out := Athletes(athletes(), AthleteFilter{Sort: Sort{By: AthleteSortName}})
	// "andre" sorts with the A's despite the lowercase initial
	assert.Equal(t, []string{"3", "2", "1", "4"}, athleteIDs(out))
}

func TestAthletes_SortByDateMissingLastBothWays(t *testing.T) {
	asc := Athletes(athletes(), AthleteFilter{Sort: Sort{By: AthleteSortCreatedAt, Direction: Asc}})
	assert.Equal(t, []string{"2", "3", "1", "4"}, athleteIDs(asc))

	desc := Athletes(athletes(), AthleteFilter{Sort: Sort{By: AthleteSortCreatedAt, Direction: Desc}})
	assert.Equal(t, []string{"1", "3", "2", "4"}, athleteIDs(desc))
}

func TestAthletes_UnknownSortKeepsOrder(t *testing.T) {
	out := Athletes(athletes(), AthleteFilter{Sort: Sort{By: "shoe_size", Direction: Desc}})
	assert.Equal(t, []string{"1", "2", "3", "4"}, athleteIDs(out))
}

func TestContacts(t *testing.T) {
	last := day(10)
	in := []domain.Contact{
		{ID: "c1", FirstName: "Dana", LastName: "Reed", Company: "State U", ContactType: domain.ContactCoach, LastContactedAt: &last},
		{ID: "c2", FirstName: "Lee", LastName: "Ortiz", Company: "Nike", ContactType: domain.ContactBrand},
		{ID: "c3", FirstName: "Sam", LastName: "Park", Company: "ESPN", ContactType: domain.ContactMedia},
	}
	contactIDs := func(cs []domain.Contact) []string {
		return ids(cs, func(c domain.Contact) string { return c.ID })
	}

	assert.Equal(t, []string{"c2"}, contactIDs(Contacts(in, ContactFilter{Search: "nike"})))
	assert.Equal(t, []string{"c1"}, contactIDs(Contacts(in, ContactFilter{ContactType: "coach"})))
	assert.Equal(t, []string{"c1", "c2", "c3"}, contactIDs(Contacts(in, ContactFilter{ContactType: "all"})))

	out := Contacts(in, ContactFilter{Sort: Sort{By: ContactSortLastContacted, Direction: Desc}})
	assert.Equal(t, []string{"c1", "c2", "c3"}, contactIDs(out))

	out = Contacts(in, ContactFilter{Sort: Sort{By: ContactSortCompany, Direction: Desc}})
	assert.Equal(t, []string{"c1", "c2", "c3"}, contactIDs(out))

	from := day(11)
	assert.Empty(t, Contacts(in, ContactFilter{LastContacted: DateRange{From: &from}}))
}

func contracts() []domain.Contract {
	end := day(20)
	return []domain.Contract{
		{ID: "k1", Title: "Cleats", Partner: "Nike", Type: domain.ContractEndorsement, Status: domain.ContractDraft, Value: 10000, StartDate: day(1), Athlete: &domain.AthleteSummary{FirstName: "Marcus", LastName: "Hill"}},
		{ID: "k2", Title: "Collective", Partner: "Boosters", Type: domain.ContractNIL, Status: domain.ContractActive, Value: 500000, StartDate: day(5), EndDate: &end},
		{ID: "k3", Title: "Drinks", Partner: "Gatorade", Type: domain.ContractEndorsement, Status: domain.ContractExpired, Value: 75000, StartDate: day(3)},
	}
}

func contractIDs(cs []domain.Contract) []string {
	return ids(cs, func(c domain.Contract) string { return c.ID })
}

func TestContracts_StatusFilter(t *testing.T) {
	assert.Equal(t, []string{"k2"}, contractIDs(Contracts(contracts(), ContractFilter{Status: "active"})))
}

func TestContracts_SearchIncludesAthleteName(t *testing.T) {
	assert.Equal(t, []string{"k1"}, contractIDs(Contracts(contracts(), ContractFilter{Search: "hill"})))
	assert.Equal(t, []string{"k3"}, contractIDs(Contracts(contracts(), ContractFilter{Search: "gator"})))
}

func TestContracts_Ranges(t *testing.T) {
	f := ContractFilter{Value: Range[int64]{Min: cents(10000), Max: cents(75000)}}
	assert.Equal(t, []string{"k1", "k3"}, contractIDs(Contracts(contracts(), f)))

	from, to := day(3), day(5)
	f = ContractFilter{StartDate: DateRange{From: &from, To: &to}}
	assert.Equal(t, []string{"k2", "k3"}, contractIDs(Contracts(contracts(), f)))

	// contracts without an end date never satisfy a bounded end-date range
	f = ContractFilter{EndDate: DateRange{To: &to}}
	assert.Empty(t, Contracts(contracts(), f))
}

func TestContracts_SortByEndDateMissingLast(t *testing.T) {
	asc := Contracts(contracts(), ContractFilter{Sort: Sort{By: ContractSortEndDate}})
	assert.Equal(t, "k2", asc[0].ID)
	desc := Contracts(contracts(), ContractFilter{Sort: Sort{By: ContractSortEndDate, Direction: Desc}})
	assert.Equal(t, "k2", desc[0].ID)

	byValue := Contracts(contracts(), ContractFilter{Sort: Sort{By: ContractSortValue, Direction: Desc}})
	assert.Equal(t, []string{"k2", "k3", "k1"}, contractIDs(byValue))
}

func TestParseContractFilter(t *testing.T) {
	q := url.Values{
		"q":         {"nike"},
		"status":    {"active"},
		"value_min": {"1000"},
		"value_max": {"oops"},
		"start_to":  {"2026-03-05"},
		"sort":      {"value"},
		"dir":       {"DESC"},
	}
	f := ParseContractFilter(q)
	assert.Equal(t, "nike", f.Search)
	assert.Equal(t, "active", f.Status)
	require.NotNil(t, f.Value.Min)
	assert.Equal(t, int64(1000), *f.Value.Min)
	assert.Nil(t, f.Value.Max)
	require.NotNil(t, f.StartDate.To)
	assert.Equal(t, time.Date(2026, 3, 5, 23, 59, 59, 999999999, time.UTC), *f.StartDate.To)
	assert.Equal(t, Sort{By: ContractSortValue, Direction: Desc}, f.Sort)
}

func TestParseSort_RejectsUnknownColumn(t *testing.T) {
	s := ParseSort(url.Values{"sort": {"password"}, "dir": {"sideways"}}, AthleteSortFields)
	assert.Equal(t, Sort{By: "", Direction: Asc}, s)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page, info := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, PageInfo{Page: 2, PerPage: 2, Total: 5, TotalPages: 3}, info)

	page, info = Paginate(items, 9, 2)
	assert.Equal(t, []int{5}, page)
	assert.Equal(t, 3, info.Page)

	page, info = Paginate([]int{}, 1, 10)
	assert.Empty(t, page)
	assert.Equal(t, 1, info.TotalPages)
}
