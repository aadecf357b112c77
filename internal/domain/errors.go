package domain

import (
	"errors"

	"prodi/pkg/errcodes"
)

// AppError is the domain error type. Its kind is derived from the code so
// the transport layer can map it to a status without knowing the domain.
type AppError = errcodes.Error

//nolint:gochecknoglobals
var codeKinds = map[errcodes.ErrorCode]errcodes.Kind{
	errcodes.ValidationError:         errcodes.KindInvalidArgument,
	errcodes.InvalidWalletAddress:    errcodes.KindInvalidArgument,
	errcodes.InvalidProfile:          errcodes.KindInvalidArgument,
	errcodes.InvalidCompanyType:      errcodes.KindInvalidArgument,
	errcodes.InvalidPrivacy:          errcodes.KindInvalidArgument,
	errcodes.InvalidDealID:           errcodes.KindInvalidArgument,
	errcodes.InvalidDealStatus:       errcodes.KindInvalidArgument,
	errcodes.CounterpartyRequired:    errcodes.KindInvalidArgument,
	errcodes.SelfDeal:                errcodes.KindInvalidArgument,
	errcodes.NotFound:                errcodes.KindNotFound,
	errcodes.ProfileNotFound:         errcodes.KindNotFound,
	errcodes.DealNotFound:            errcodes.KindNotFound,
	errcodes.WalletNotConnected:      errcodes.KindUnauthorized,
	errcodes.WalletSignatureRejected: errcodes.KindUnauthorized,
	errcodes.WalletSessionExpired:    errcodes.KindUnauthorized,
	errcodes.Forbidden:               errcodes.KindForbidden,
	errcodes.NotDealPartner:          errcodes.KindForbidden,
	errcodes.Conflict:                errcodes.KindConflict,
	errcodes.DealStatusConflict:      errcodes.KindConflict,
	errcodes.MemoNotRequested:        errcodes.KindUnprocessableEntity,
}

// NewError creates a domain error.
func NewError(code errcodes.ErrorCode, message string) *AppError {
	return errcodes.New(codeKinds[code], code, message)
}

// WrapError wraps err with domain context.
func WrapError(err error, code errcodes.ErrorCode, message string) *AppError {
	return errcodes.Wrap(err, codeKinds[code], code, message)
}

// IsAppError reports whether err carries a domain error.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code of a domain error.
func GetCode(err error) (errcodes.ErrorCode, bool) {
	if appErr, ok := errcodes.As(err); ok {
		return appErr.Code, true
	}
	return "", false
}
