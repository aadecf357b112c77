package value

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"prodi/internal/domain"
	"prodi/pkg/errcodes"
)

// Wallet is an EVM address in its canonical lowercased form. Profiles and
// deals are keyed by it, so two spellings of one address always collide.
type Wallet string

func ParseWallet(s string) (Wallet, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return "", domain.NewError(errcodes.InvalidWalletAddress, "wallet address is empty")
	}

	if !common.IsHexAddress(s) || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return "", domain.NewError(errcodes.InvalidWalletAddress, "wallet address is not a valid EVM address")
	}

	return Wallet(strings.ToLower(s)), nil
}

func (w Wallet) String() string {
	return string(w)
}

func (w Wallet) IsZero() bool {
	return w == ""
}

// Address returns the checksummed form used when verifying signatures.
func (w Wallet) Address() common.Address {
	return common.HexToAddress(string(w))
}
