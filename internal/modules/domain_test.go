package modules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightmark-io/brightmark/internal/access"
)

func TestVisibleFiltersByAssignment(t *testing.T) {
	caps := access.DerivePermissions(access.RoleCustomer, []access.ModuleKind{access.ModuleTutoring}, access.UnlimitedQuota)
	visible := Visible(caps)
	require.Len(t, visible, 1)
	require.Equal(t, access.ModuleTutoring, visible[0].Kind)
}

func TestVisibleFullCatalogForAdmins(t *testing.T) {
	caps := access.DerivePermissions(access.RoleAdmin, nil, access.UnlimitedQuota)
	visible := Visible(caps)
	require.Len(t, visible, len(Catalog()))
}

func TestCatalogCoversEveryModuleKind(t *testing.T) {
	kinds := make(map[access.ModuleKind]bool)
	for _, info := range Catalog() {
		kinds[info.Kind] = true
		require.NotEmpty(t, info.Label)
	}
	for _, m := range access.AllModules() {
		require.True(t, kinds[m], "catalog missing %s", m)
	}
}
