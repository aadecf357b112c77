package connectors

import (
	"errors"

	"prodi/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// ErrNotConnected is reported by Ping before the first Client call.
var ErrNotConnected = errors.New("not connected")
