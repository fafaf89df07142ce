package crypto

import (
	"errors"
	"runtime"
)

// SecureWipe overwrites a byte slice containing sensitive data with zeros.
// It returns an error if the slice is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	for i := range data {
		data[i] = 0
	}

	// Keep the slice reachable so the zeroing is not optimized away.
	runtime.KeepAlive(data)

	return nil
}

// ZeroBytes erases sensitive data, ignoring the error from SecureWipe.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}
