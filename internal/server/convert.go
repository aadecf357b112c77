package server

import (
	"prodi/internal/domain/entity"
	"prodi/internal/domain/service/deal"
	"prodi/internal/domain/service/profile"
	"prodi/internal/domain/value"
	"prodi/pkg/lox"
	"prodi/pkg/rest"
)

func newRESTWalletChallenge(c entity.WalletChallenge) rest.WalletChallenge {
	return rest.WalletChallenge{
		Address:   c.Wallet.String(),
		Nonce:     c.Nonce,
		Message:   c.Message,
		ExpiresAt: c.ExpiresAt,
	}
}

func newRESTWalletSession(s entity.WalletSession) rest.WalletSession {
	return rest.WalletSession{
		Address:   s.Wallet.String(),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

func newRESTProfile(p entity.Profile) rest.Profile {
	return rest.Profile{
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
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func newRESTProfileView(v profile.View) rest.ProfileView {
	return rest.ProfileView{
		Profile:  newRESTProfile(v.Profile),
		IsOwner:  v.IsOwner,
		DealLink: v.DealLink,
	}
}

func newDomainProfileForm(f rest.ProfileForm) profile.Form {
	return profile.Form{
		Company:      f.Company,
		Type:         f.Type,
		Region:       f.Region,
		Marketplaces: f.Marketplaces,
		Contact:      f.Contact,
		Email:        f.Email,
		Website:      f.Website,
		Logo:         f.Logo,
		Media:        f.Media,
		Pitch:        f.Pitch,
		Privacy:      f.Privacy,
	}
}

func newRESTDeal(d entity.Deal) rest.Deal {
	var memoStatus *string
	if d.MemoStatus != value.MemoStatusNone {
		s := d.MemoStatus.String()
		memoStatus = &s
	}

	return rest.Deal{
		DealTerms: rest.DealTerms{
			Marketplaces:   d.Terms.Marketplaces,
			Regions:        d.Terms.Regions,
			IsExclusiveMP:  d.Terms.IsExclusiveMP,
			IsExclusiveReg: d.Terms.IsExclusiveReg,
			RRCControl:     d.Terms.RRCControl,
			Guarantees:     d.Terms.Guarantees,
			CustomTerms:    d.Terms.CustomTerms,
		},
		ID:              d.ID.String(),
		InitiatorWallet: d.InitiatorWallet.String(),
		PartnerWallet:   d.PartnerWallet.String(),
		Status:          d.Status.String(),
		BlockchainTx:    d.BlockchainTx,
		MemoStatus:      memoStatus,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func newRESTDealInbox(inbox entity.DealInbox) rest.DealInbox {
	return rest.DealInbox{
		Incoming: lox.Map(inbox.Incoming, newRESTDeal),
		Outgoing: lox.Map(inbox.Outgoing, newRESTDeal),
	}
}

func newRESTDealDraft(d deal.Draft) rest.DealDraft {
	draft := rest.DealDraft{
		Counterparty: d.Counterparty,
		Company:      d.Company,
	}

	if d.Partner != nil {
		partner := newRESTProfile(*d.Partner)
		draft.Partner = &partner
	}

	return draft
}

func newDomainDealForm(f rest.DealForm) deal.Form {
	return deal.Form{
		Marketplaces:   f.Marketplaces,
		Regions:        f.Regions,
		IsExclusiveMP:  f.IsExclusiveMP,
		IsExclusiveReg: f.IsExclusiveReg,
		RRCControl:     f.RRCControl,
		Guarantees:     f.Guarantees,
		CustomTerms:    f.CustomTerms,
		RecordMemo:     f.RecordMemo,
	}
}
