package tracelog

import (
	"github.com/mrzor/tracelog/internal/wire"
)

// FormatVersion is the tracelog format version this decoder implements.
// Traces are accepted when their major version matches.
var FormatVersion = wire.MustParseVersion("1.0.0")

// negotiate decodes the header at the start of buf and checks it against
// the expected format version. Nothing past the header is inspected.
func negotiate(buf []byte, expected wire.Version) (wire.Config, error) {
	if len(buf) == 0 || wire.EventType(buf[0]) != wire.EventConfig {
		return wire.Config{}, &MissingConfigError{}
	}

	cfg, err := wire.DecodeConfig(buf)
	if err != nil {
		return wire.Config{}, err
	}

	if !cfg.Version.Compatible(expected) {
		return wire.Config{}, &VersionMismatchError{Expected: expected, Actual: cfg.Version}
	}

	return cfg, nil
}
