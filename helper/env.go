package helper

import (
	"strings"

	"github.com/relloyd/country-metrics/constants"
)

// NameToEnvVar forms a sanitised environment variable name using constants.EnvVarPrefix,
// e.g. "store-host" becomes "CM_STORE_HOST".
func NameToEnvVar(name string) string {
	n := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(strings.TrimSpace(name)))
	return constants.EnvVarPrefix + "_" + n
}
