package persistence

import (
	"time"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
)

const profileColumns = `wallet, company, type, region, marketplaces, contact, email,
	website, logo, media, pitch, privacy, created_at, updated_at`

const dealColumns = `id, initiator_wallet, partner_wallet, marketplaces, regions,
	is_exclusive_mp, is_exclusive_reg, rrc_control, guarantees, custom_terms,
	status, blockchain_tx, memo_status, created_at, updated_at`

// profileSchema maps a row of the profiles table.
type profileSchema struct {
	Wallet       string    `db:"wallet"`
	Company      string    `db:"company"`
	Type         string    `db:"type"`
	Region       string    `db:"region"`
	Marketplaces string    `db:"marketplaces"`
	Contact      string    `db:"contact"`
	Email        string    `db:"email"`
	Website      string    `db:"website"`
	Logo         string    `db:"logo"`
	Media        string    `db:"media"`
	Pitch        string    `db:"pitch"`
	Privacy      string    `db:"privacy"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func fromProfile(p entity.Profile) profileSchema {
	return profileSchema{
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
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
}

func (s profileSchema) toDomain() entity.Profile {
	return entity.Profile{
		Wallet:       value.Wallet(s.Wallet),
		Company:      s.Company,
		Type:         value.CompanyType(s.Type),
		Region:       s.Region,
		Marketplaces: s.Marketplaces,
		Contact:      s.Contact,
		Email:        s.Email,
		Website:      s.Website,
		Logo:         s.Logo,
		Media:        s.Media,
		Pitch:        s.Pitch,
		Privacy:      value.Privacy(s.Privacy),
		CreatedAt:    s.CreatedAt.UTC(),
		UpdatedAt:    s.UpdatedAt.UTC(),
	}
}

// dealSchema maps a row of the deals table. memo_status is NULL until a
// memo is requested.
type dealSchema struct {
	ID              string    `db:"id"`
	InitiatorWallet string    `db:"initiator_wallet"`
	PartnerWallet   string    `db:"partner_wallet"`
	Marketplaces    string    `db:"marketplaces"`
	Regions         string    `db:"regions"`
	IsExclusiveMP   bool      `db:"is_exclusive_mp"`
	IsExclusiveReg  bool      `db:"is_exclusive_reg"`
	RRCControl      string    `db:"rrc_control"`
	Guarantees      string    `db:"guarantees"`
	CustomTerms     string    `db:"custom_terms"`
	Status          string    `db:"status"`
	BlockchainTx    *string   `db:"blockchain_tx"`
	MemoStatus      *string   `db:"memo_status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func fromDeal(d entity.Deal) dealSchema {
	return dealSchema{
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
		MemoStatus:      memoStatusColumn(d.MemoStatus),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func (s dealSchema) toDomain() (entity.Deal, error) {
	id, err := value.ParseDealID(s.ID)
	if err != nil {
		return entity.Deal{}, err
	}

	status, err := value.ParseDealStatus(s.Status)
	if err != nil {
		return entity.Deal{}, err
	}

	var memoStatus value.MemoStatus
	if s.MemoStatus != nil {
		memoStatus = value.MemoStatus(*s.MemoStatus)
	}

	return entity.Deal{
		ID:              id,
		InitiatorWallet: value.Wallet(s.InitiatorWallet),
		PartnerWallet:   value.Wallet(s.PartnerWallet),
		Terms: entity.DealTerms{
			Marketplaces:   s.Marketplaces,
			Regions:        s.Regions,
			IsExclusiveMP:  s.IsExclusiveMP,
			IsExclusiveReg: s.IsExclusiveReg,
			RRCControl:     s.RRCControl,
			Guarantees:     s.Guarantees,
			CustomTerms:    s.CustomTerms,
		},
		Status:       status,
		BlockchainTx: s.BlockchainTx,
		MemoStatus:   memoStatus,
		CreatedAt:    s.CreatedAt.UTC(),
		UpdatedAt:    s.UpdatedAt.UTC(),
	}, nil
}

func memoStatusColumn(s value.MemoStatus) *string {
	if s == value.MemoStatusNone {
		return nil
	}

	v := s.String()

	return &v
}
