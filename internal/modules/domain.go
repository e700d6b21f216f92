package modules

import "github.com/brightmark-io/brightmark/internal/access"

// ModuleInfo describes one assessment module as shown to clients.
type ModuleInfo struct {
	Kind        access.ModuleKind `json:"kind"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
}

// Catalog returns the static module catalog in display order.
func Catalog() []ModuleInfo {
	return []ModuleInfo{
		{Kind: access.ModuleK12, Label: "K-12", Description: "Primary and secondary education assessments"},
		{Kind: access.ModulePostSecondary, Label: "Post-Secondary", Description: "College and university assessments"},
		{Kind: access.ModuleTutoring, Label: "Tutoring", Description: "Tutoring center assessments"},
	}
}

// Visible filters the catalog down to modules the capability set can reach.
func Visible(caps access.CapabilitySet) []ModuleInfo {
	out := make([]ModuleInfo, 0, len(caps.ModuleAccess))
	for _, info := range Catalog() {
		if caps.HasModule(info.Kind) {
			out = append(out, info)
		}
	}
	return out
}
