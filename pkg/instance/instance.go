package instance

import (
	"os"
	"strings"
)

const defaultID = "local"

var idEnvKeys = []string{"LEDGERVIEW_INSTANCE_ID", "DYNO", "HOSTNAME"}

// ID returns the identifier logged with every process start, falling back to
// "local" when no platform variable is set.
func ID() string {
	for _, key := range idEnvKeys {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return defaultID
}
