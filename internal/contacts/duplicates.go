package contacts

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/meishi/internal/keyword"
	"github.com/hyperjump/meishi/internal/models"
	"github.com/hyperjump/meishi/pkg/utils"
)

// Duplicate reasons.
const (
	ReasonEmail = "email"
	ReasonPhone = "phone"
	ReasonName  = "name"
)

const (
	// maxNameDistance is the largest edit distance at which two names are
	// treated as the same person.
	maxNameDistance = 2
	// minNameRunes keeps short names from matching each other by distance alone.
	minNameRunes = 5
	// minPhoneDigits is the shortest digit suffix compared between phones.
	minPhoneDigits = 8
)

// Duplicate is a stored contact that likely refers to the same person.
type Duplicate struct {
	Contact *models.Contact `json:"contact"`
	Reasons []string        `json:"reasons"`
}

// FindDuplicates returns stored contacts, other than c itself, that share
// its email, its phone number or a near-identical name.
func (s *Service) FindDuplicates(ctx context.Context, c *models.Contact) ([]Duplicate, error) {
	all, err := s.storage.ListContacts(ctx, "", 0, 0)
	if err != nil {
		return nil, err
	}
	dups := []Duplicate{}
	for _, other := range all {
		if other.ID == c.ID {
			continue
		}
		if reasons := duplicateReasons(c, other); len(reasons) > 0 {
			dups = append(dups, Duplicate{Contact: other, Reasons: reasons})
		}
	}
	return dups, nil
}

func duplicateReasons(a, b *models.Contact) []string {
	var reasons []string
	if a.Email != "" && strings.EqualFold(strings.TrimSpace(a.Email), strings.TrimSpace(b.Email)) {
		reasons = append(reasons, ReasonEmail)
	}
	if samePhone(a.Phone, b.Phone) {
		reasons = append(reasons, ReasonPhone)
	}
	if similarName(a.Name, b.Name) {
		reasons = append(reasons, ReasonName)
	}
	return reasons
}

// samePhone compares digits only, so "+91 98765 43210" matches "98765-43210".
// When lengths differ the shorter number must be a suffix of the longer.
func samePhone(a, b string) bool {
	da, db := utils.DigitsOnly(a), utils.DigitsOnly(b)
	if len(da) < minPhoneDigits || len(db) < minPhoneDigits {
		return false
	}
	if len(da) > len(db) {
		da, db = db, da
	}
	return strings.HasSuffix(db, da)
}

func similarName(a, b string) bool {
	a, b = utils.CollapseSpace(a), utils.CollapseSpace(b)
	if utf8.RuneCountInString(a) < minNameRunes || utf8.RuneCountInString(b) < minNameRunes {
		return strings.EqualFold(a, b) && a != ""
	}
	return keyword.NameDistance(a, b) <= maxNameDistance
}
