package postgrest

import (
	"fmt"
	"strings"
	"time"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
)

// timestamp accepts both timestamptz and zone-less timestamp renderings.
type timestamp time.Time

//nolint:gochecknoglobals
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*t = timestamp{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed.UTC())
			return nil
		}
	}

	return fmt.Errorf("unsupported timestamp %q", s)
}

type profileRow struct {
	Wallet       string    `json:"wallet"`
	Company      string    `json:"company"`
	Type         string    `json:"type"`
	Region       string    `json:"region"`
	Marketplaces string    `json:"marketplaces"`
	Contact      string    `json:"contact"`
	Email        string    `json:"email"`
	Website      string    `json:"website"`
	Logo         string    `json:"logo"`
	Media        string    `json:"media"`
	Pitch        string    `json:"pitch"`
	Privacy      string    `json:"privacy"`
	CreatedAt    timestamp `json:"created_at"`
	UpdatedAt    timestamp `json:"updated_at"`
}

func fromProfile(p entity.Profile) profileRow {
	return profileRow{
		Wallet:       p.Wallet.String(),
		Company:      p.Company,
		Type:         p.Type.String(),
		Region:       p.Region,
		Marketplaces: p.Marketplaces,
		Contact:      p.Contact,
		Email:        p.Email,
		Website:      p.Website,
		Logo:         p.Logo,
		Media:        p.Media,
		Pitch:        p.Pitch,
		Privacy:      p.Privacy.String(),
		CreatedAt:    timestamp(p.CreatedAt),
		UpdatedAt:    timestamp(p.UpdatedAt),
	}
}

func (r profileRow) toDomain() entity.Profile {
	return entity.Profile{
		Wallet:       value.Wallet(r.Wallet),
		Company:      r.Company,
		Type:         value.CompanyType(r.Type),
		Region:       r.Region,
		Marketplaces: r.Marketplaces,
		Contact:      r.Contact,
		Email:        r.Email,
		Website:      r.Website,
		Logo:         r.Logo,
		Media:        r.Media,
		Pitch:        r.Pitch,
		Privacy:      value.Privacy(r.Privacy),
		CreatedAt:    time.Time(r.CreatedAt),
		UpdatedAt:    time.Time(r.UpdatedAt),
	}
}

type dealRow struct {
	ID              string    `json:"id"`
	InitiatorWallet string    `json:"initiator_wallet"`
	PartnerWallet   string    `json:"partner_wallet"`
	Marketplaces    string    `json:"marketplaces"`
	Regions         string    `json:"regions"`
	IsExclusiveMP   bool      `json:"is_exclusive_mp"`
	IsExclusiveReg  bool      `json:"is_exclusive_reg"`
	RRCControl      string    `json:"rrc_control"`
	Guarantees      string    `json:"guarantees"`
	CustomTerms     string    `json:"custom_terms"`
	Status          string    `json:"status"`
	BlockchainTx    *string   `json:"blockchain_tx"`
	MemoStatus      *string   `json:"memo_status"`
	CreatedAt       timestamp `json:"created_at"`
	UpdatedAt       timestamp `json:"updated_at"`
}

func fromDeal(d entity.Deal) dealRow {
	return dealRow{
		ID:              d.ID.String(),
		InitiatorWallet: d.InitiatorWallet.String(),
		PartnerWallet:   d.PartnerWallet.String(),
		Marketplaces:    d.Terms.Marketplaces,
		Regions:         d.Terms.Regions,
		IsExclusiveMP:   d.Terms.IsExclusiveMP,
		IsExclusiveReg:  d.Terms.IsExclusiveReg,
		RRCControl:      d.Terms.RRCControl,
		Guarantees:      d.Terms.Guarantees,
		CustomTerms:     d.Terms.CustomTerms,
		Status:          d.Status.String(),
		BlockchainTx:    d.BlockchainTx,
		MemoStatus:      memoStatusValue(d.MemoStatus),
		CreatedAt:       timestamp(d.CreatedAt),
		UpdatedAt:       timestamp(d.UpdatedAt),
	}
}

func (r dealRow) toDomain() (entity.Deal, error) {
	id, err := value.ParseDealID(r.ID)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("value.ParseDealID: %w", err)
	}

	var memoStatus value.MemoStatus
	if r.MemoStatus != nil {
		memoStatus = value.MemoStatus(*r.MemoStatus)
	}

	return entity.Deal{
		ID:              id,
		InitiatorWallet: value.Wallet(r.InitiatorWallet),
		PartnerWallet:   value.Wallet(r.PartnerWallet),
		Terms: entity.DealTerms{
			Marketplaces:   r.Marketplaces,
			Regions:        r.Regions,
			IsExclusiveMP:  r.IsExclusiveMP,
			IsExclusiveReg: r.IsExclusiveReg,
			RRCControl:     r.RRCControl,
			Guarantees:     r.Guarantees,
			CustomTerms:    r.CustomTerms,
		},
		Status:       value.DealStatus(r.Status),
		BlockchainTx: r.BlockchainTx,
		MemoStatus:   memoStatus,
		CreatedAt:    time.Time(r.CreatedAt),
		UpdatedAt:    time.Time(r.UpdatedAt),
	}, nil
}

// memoStatusValue renders MemoStatusNone as null.
func memoStatusValue(s value.MemoStatus) *string {
	if s == value.MemoStatusNone {
		return nil
	}

	v := s.String()

	return &v
}
