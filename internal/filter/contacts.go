package filter

import (
	"time"

	"github.com/rosterdesk/platform/internal/domain"
)

// Contact sort fields.
const (
	ContactSortName          = "name"
	ContactSortCompany       = "company"
	ContactSortType          = "contact_type"
	ContactSortLastContacted = "last_contacted_at"
	ContactSortCreatedAt     = "created_at"
)

var ContactSortFields = []string{
	ContactSortName, ContactSortCompany, ContactSortType, ContactSortLastContacted, ContactSortCreatedAt,
}

// ContactFilter is the FilterSpec for contacts.
type ContactFilter struct {
	Search        string
	ContactType   string
	Company       string
	LastContacted DateRange
	Sort
}

// Contacts returns the contacts matching f, ordered by f.Sort.
func Contacts(in []domain.Contact, f ContactFilter) []domain.Contact {
	keep := func(c *domain.Contact) bool {
		return search(f.Search, c.FirstName+" "+c.LastName, c.Company, c.Title, c.Email) &&
			category(f.ContactType, string(c.ContactType)) &&
			category(f.Company, c.Company) &&
			f.LastContacted.Contains(c.LastContactedAt)
	}
	return run(in, keep, contactComparator(f.By), f.desc())
}

func contactComparator(by string) cmpFunc[domain.Contact] {
	switch by {
	case ContactSortName:
		return byString(newCollator(), func(c domain.Contact) string { return c.FirstName + " " + c.LastName })
	case ContactSortCompany:
		return byString(newCollator(), func(c domain.Contact) string { return c.Company })
	case ContactSortType:
		return byString(newCollator(), func(c domain.Contact) string { return string(c.ContactType) })
	case ContactSortLastContacted:
		return byDate(func(c domain.Contact) *time.Time { return c.LastContactedAt })
	case ContactSortCreatedAt:
		return byDate(func(c domain.Contact) *time.Time { return timePtr(c.CreatedAt) })
	}
	return nil
}
