package errcodes

// ErrorCode is a stable machine-readable error identifier returned to API
// clients in the "code" field.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	InternalServerError ErrorCode = "InternalServerError"
	TimeoutExceeded     ErrorCode = "TimeoutExceeded"
	Forbidden           ErrorCode = "Forbidden"
	ValidationError     ErrorCode = "ValidationError"
	NotFound            ErrorCode = "NotFound"
	Conflict            ErrorCode = "Conflict"

	// Wallet connector.
	WalletNotConnected      ErrorCode = "WalletNotConnected"
	WalletSignatureRejected ErrorCode = "WalletSignatureRejected"
	WalletSessionExpired    ErrorCode = "WalletSessionExpired"
	InvalidWalletAddress    ErrorCode = "InvalidWalletAddress"

	// Profiles.
	ProfileNotFound    ErrorCode = "ProfileNotFound"
	InvalidProfile     ErrorCode = "InvalidProfile"
	InvalidCompanyType ErrorCode = "InvalidCompanyType"
	InvalidPrivacy     ErrorCode = "InvalidPrivacy"

	// Deals.
	DealNotFound         ErrorCode = "DealNotFound"
	InvalidDealID        ErrorCode = "InvalidDealID"
	InvalidDealStatus    ErrorCode = "InvalidDealStatus"
	CounterpartyRequired ErrorCode = "CounterpartyRequired"
	SelfDeal             ErrorCode = "SelfDeal"
	DealStatusConflict   ErrorCode = "DealStatusConflict"
	NotDealPartner       ErrorCode = "NotDealPartner"

	// Secondary ledger.
	LedgerUnavailable ErrorCode = "LedgerUnavailable"
	MemoNotRequested  ErrorCode = "MemoNotRequested"
)
