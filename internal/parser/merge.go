package parser

import (
	"strings"

	"github.com/hyperjump/meishi/internal/models"
)

// Merge combines the two side breakdowns into one record. Name takes the
// longer value with ties to the front; company takes the longer value with
// ties to the back; the rest prefer the front. Title is not merged.
func Merge(front, back models.SideData) models.ContactRecord {
	return models.ContactRecord{
		Name:    longer(front.Name, back.Name, true),
		Company: longer(front.Company, back.Company, false),
		Phone:   firstNonEmpty(front.Phone, back.Phone),
		Email:   firstNonEmpty(front.Email, back.Email),
		Website: firstNonEmpty(front.Website, back.Website),
		Address: firstNonEmpty(front.Address, back.Address),
	}
}

func longer(front, back string, tieToFront bool) string {
	front, back = strings.TrimSpace(front), strings.TrimSpace(back)
	switch {
	case front == "":
		return back
	case back == "":
		return front
	case len(front) > len(back):
		return front
	case len(back) > len(front):
		return back
	case tieToFront:
		return front
	default:
		return back
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
