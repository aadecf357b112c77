package entity

import (
	"net/url"
	"strings"
	"time"

	"prodi/internal/domain/value"
)

// Profile is a company card owned by a wallet. It is always written whole.
type Profile struct {
	Wallet       value.Wallet
	Company      string
	Type         value.CompanyType
	Region       string
	Marketplaces string
	Contact      string
	Email        string
	Website      string
	Logo         string
	Media        string
	Pitch        string
	Privacy      value.Privacy
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VisibleTo reports whether viewer may open the company page.
// Private profiles are shown to their owner only.
func (p Profile) VisibleTo(viewer value.Wallet) bool {
	return p.Privacy != value.PrivacyPrivate || p.Wallet == viewer
}

// Matches is a case-insensitive substring match on company, region or email.
// An empty query matches nothing.
func (p Profile) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}

	return strings.Contains(strings.ToLower(p.Company), q) ||
		strings.Contains(strings.ToLower(p.Region), q) ||
		strings.Contains(strings.ToLower(p.Email), q)
}

// DealLink is the deep link that opens the deal form with this company as
// the second party.
func (p Profile) DealLink() string {
	q := url.Values{}
	q.Set("counterparty", p.Wallet.String())
	q.Set("company", p.Company)

	return "/deal?" + q.Encode()
}
