package intent

import "strings"

// ServiceIntent is the classified service category for a user message.
type ServiceIntent string

const (
	ServiceCertification  ServiceIntent = "certification-inspection"
	ServiceGrounding      ServiceIntent = "grounding-installation"
	ServiceMaintenance    ServiceIntent = "maintenance"
	ServiceFireProtection ServiceIntent = "fire-protection"
	ServicePanelDesign    ServiceIntent = "panel-design"
	ServiceSupplies       ServiceIntent = "supplies"
	ServiceUnknown        ServiceIntent = "unknown"
)

// All lists every known intent in classification priority order.
var All = []ServiceIntent{
	ServiceCertification,
	ServiceGrounding,
	ServiceMaintenance,
	ServiceFireProtection,
	ServicePanelDesign,
	ServiceSupplies,
}

// Known reports whether the intent is a concrete service (not unknown).
func (s ServiceIntent) Known() bool {
	for _, intent := range All {
		if s == intent {
			return true
		}
	}
	return false
}

// Parse maps a raw string to a ServiceIntent, returning ServiceUnknown for
// anything outside the closed set.
func Parse(raw string) ServiceIntent {
	candidate := ServiceIntent(strings.TrimSpace(strings.ToLower(raw)))
	if candidate.Known() {
		return candidate
	}
	return ServiceUnknown
}
