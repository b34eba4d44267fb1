package config

import (
	"os"
	"strings"

	"github.com/quantgate/binance-gateway/pkg/logger"
)

// ResolveCredential turns a credential reference into its value. The
// reference is tried as an environment variable name first, then as a file
// path whose trimmed contents hold the value, and finally used verbatim.
// The verbatim fallback logs a warning naming only the reference source,
// never the resolved value.
func ResolveCredential(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if v, ok := os.LookupEnv(ref); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	if data, err := os.ReadFile(ref); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}

	logger.WithComponent("config").Warn("credential reference is neither an environment variable nor a readable file, using it as a literal value")
	return ref
}
