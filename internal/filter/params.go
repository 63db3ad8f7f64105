package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseSort extracts sort and dir from URL query values. Columns outside
// allowed are dropped, which leaves the input order untouched.
func ParseSort(q url.Values, allowed []string) Sort {
	by := q.Get("sort")
	if !isAllowed(by, allowed) {
		by = ""
	}
	dir := Direction(strings.ToLower(q.Get("dir")))
	if dir != Desc {
		dir = Asc
	}
	return Sort{By: by, Direction: dir}
}

// ParseAthleteFilter reads an AthleteFilter from query values.
func ParseAthleteFilter(q url.Values) AthleteFilter {
	return AthleteFilter{
		Search:       q.Get("q"),
		Position:     q.Get("position"),
		Sport:        q.Get("sport"),
		NILTier:      q.Get("nil_tier"),
		CurrentGrade: q.Get("current_grade"),
		ClassYear:    q.Get("class_year"),
		NILValue:     parseRange(q, "nil_value_min", "nil_value_max"),
		Sort:         ParseSort(q, AthleteSortFields),
	}
}

// ParseContactFilter reads a ContactFilter from query values.
func ParseContactFilter(q url.Values) ContactFilter {
	return ContactFilter{
		Search:        q.Get("q"),
		ContactType:   q.Get("contact_type"),
		Company:       q.Get("company"),
		LastContacted: parseDateRange(q, "last_contacted_from", "last_contacted_to"),
		Sort:          ParseSort(q, ContactSortFields),
	}
}

// ParseContractFilter reads a ContractFilter from query values.
func ParseContractFilter(q url.Values) ContractFilter {
	return ContractFilter{
		Search:    q.Get("q"),
		Type:      q.Get("type"),
		Status:    q.Get("status"),
		AthleteID: q.Get("athlete_id"),
		Value:     parseRange(q, "value_min", "value_max"),
		StartDate: parseDateRange(q, "start_from", "start_to"),
		EndDate:   parseDateRange(q, "end_from", "end_to"),
		Sort:      ParseSort(q, ContractSortFields),
	}
}

// parseRange reads integer cents bounds. Malformed values are ignored.
func parseRange(q url.Values, minKey, maxKey string) Range[int64] {
	var r Range[int64]
	if v, err := strconv.ParseInt(q.Get(minKey), 10, 64); err == nil {
		r.Min = &v
	}
	if v, err := strconv.ParseInt(q.Get(maxKey), 10, 64); err == nil {
		r.Max = &v
	}
	return r
}

// parseDateRange reads RFC 3339 timestamps or YYYY-MM-DD dates. A bare
// "to" date covers the whole day.
func parseDateRange(q url.Values, fromKey, toKey string) DateRange {
	var r DateRange
	if t, _, ok := parseTime(q.Get(fromKey)); ok {
		r.From = &t
	}
	if t, dateOnly, ok := parseTime(q.Get(toKey)); ok {
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &t
	}
	return r
}

func parseTime(s string) (time.Time, bool, bool) {
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}

func isAllowed(col string, allowed []string) bool {
	for _, a := range allowed {
		if col == a {
			return true
		}
	}
	return false
}
