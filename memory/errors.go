package memory

import "fmt"

// BadCartridgeError reports a ROM image that cannot be loaded: wrong size
// or an unsupported cartridge type. A header checksum mismatch is not an
// error (see NewCartridge).
type BadCartridgeError struct {
	Reason string
}

func (e *BadCartridgeError) Error() string {
	return fmt.Sprintf("bad cartridge: %s", e.Reason)
}

func badCartridge(format string, args ...any) error {
	return &BadCartridgeError{Reason: fmt.Sprintf(format, args...)}
}
