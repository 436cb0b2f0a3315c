package deployments

import (
	"strings"

	"camtrap/internal/textutil"
)

var (
	trueValues  = []string{"true", "t", "yes", "y", "1"}
	falseValues = []string{"false", "f", "no", "n", "0"}
)

// NormalizeBool maps spreadsheet yes/no spellings onto "true"/"false".
// Anything else, including blank, yields "".
func NormalizeBool(value string) string {
	if _, ok := textutil.Canonical(value, trueValues); ok {
		return "true"
	}
	if _, ok := textutil.Canonical(value, falseValues); ok {
		return "false"
	}
	return ""
}

// NormalizeCameraModel prefixes Reconyx HyperFire models with the maker so
// "HF2 PRO COVERT" becomes "Reconyx-HF2 PRO COVERT".
func NormalizeCameraModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return ""
	}
	upper := strings.ToUpper(model)
	if strings.HasPrefix(upper, "RECONYX") {
		return model
	}
	if strings.Contains(upper, "HF2") || strings.Contains(upper, "HYPERFIRE") {
		return "Reconyx-" + model
	}
	return model
}

// DeploymentID joins site and serial with an underscore, dropping the
// separator when either part is empty.
func DeploymentID(siteID, serial string) string {
	return strings.Trim(strings.TrimSpace(siteID)+"_"+strings.TrimSpace(serial), "_")
}
