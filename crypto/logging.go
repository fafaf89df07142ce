package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// opFields builds the standard logging fields for a crypto operation.
func opFields(cipher CipherID, operation string) logrus.Fields {
	return logrus.Fields{
		"package":   "crypto",
		"cipher":    uint8(cipher),
		"operation": operation,
	}
}

// previewFields describes sensitive data for logging without exposing it:
// only a short prefix and the total size are recorded.
func previewFields(name string, data []byte) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		n := 8
		if len(data) < n {
			n = len(data)
		}
		preview = fmt.Sprintf("%x", data[:n])
		if len(data) > n {
			preview += "..."
		}
	}
	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}
