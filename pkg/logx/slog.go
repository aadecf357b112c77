package logx

import (
	"fmt"
	"log/slog"

	"github.com/lmittmann/tint"
)

var Error = tint.Err //nolint:gochecknoglobals

func Stringer(name string, value fmt.Stringer) slog.Attr {
	return slog.String(name, value.String())
}

// Wallet tags a record with the wallet it concerns.
func Wallet(value fmt.Stringer) slog.Attr {
	return Stringer(FieldWallet, value)
}
