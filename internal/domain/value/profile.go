package value

import (
	"strings"

	"prodi/internal/domain"
	"prodi/pkg/errcodes"
)

type CompanyType string

const (
	CompanyTypeProducer    CompanyType = "producer"
	CompanyTypeDistributor CompanyType = "distributor"
	CompanyTypeRetail      CompanyType = "retail"
	CompanyTypeAgent       CompanyType = "agent"
)

// ParseCompanyType falls back to producer for an empty value.
func ParseCompanyType(s string) (CompanyType, error) {
	switch t := CompanyType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return CompanyTypeProducer, nil
	case CompanyTypeProducer, CompanyTypeDistributor, CompanyTypeRetail, CompanyTypeAgent:
		return t, nil
	default:
		return "", domain.NewError(errcodes.InvalidCompanyType, "unknown company type "+s)
	}
}

func (t CompanyType) String() string {
	return string(t)
}

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
	PrivacyCustom  Privacy = "custom"
)

// ParsePrivacy falls back to public for an empty value.
func ParsePrivacy(s string) (Privacy, error) {
	switch p := Privacy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PrivacyPublic, nil
	case PrivacyPublic, PrivacyPrivate, PrivacyCustom:
		return p, nil
	default:
		return "", domain.NewError(errcodes.InvalidPrivacy, "unknown privacy "+s)
	}
}

func (p Privacy) String() string {
	return string(p)
}
