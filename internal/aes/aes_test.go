package aes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileYAML = `profiles:
  qtl:
    y_label: "QTL regions"
    fill_scale: "mono:#ff0000"
    line_colour: "#ff0000"
    point_shape: "rect"
    show_name: true
  methylation:
    y_label: "Methylation"
    fill_scale: "magma"
`

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aesthetics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryLoad(t *testing.T) {
	reg, err := NewRegistry(writeProfileFile(t, profileYAML))
	require.NoError(t, err)

	p, ok := reg.Profile("qtl")
	require.True(t, ok)
	assert.Equal(t, "QTL regions", p.YLabel)
	assert.True(t, p.ShowName)

	_, ok = reg.Profile("nope")
	assert.False(t, ok)

	snap := reg.Snapshot()
	assert.Len(t, snap.Profiles, 2)
	assert.Equal(t, int64(1), snap.Version)
}

func TestRegistryRejectsInvalidProfile(t *testing.T) {
	_, err := NewRegistry(writeProfileFile(t, `profiles:
  bad:
    fill_scale: "rainbow"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestRegistryEmptyPath(t *testing.T) {
	_, err := NewRegistry("  ")
	require.Error(t, err)
}

func TestResolverOrder(t *testing.T) {
	reg, err := NewRegistry(writeProfileFile(t, profileYAML))
	require.NoError(t, err)

	ov, err := ParseOverrides(`{"qtl": {"y_label": "My QTLs"}, "gwas": {"fill_scale": "plasma"}}`)
	require.NoError(t, err)

	res := NewResolver(reg, ov)

	// override > registry
	qtl := res.Resolve("qtl")
	assert.Equal(t, "My QTLs", qtl.YLabel)
	assert.Equal(t, "mono:#ff0000", qtl.FillScale)
	assert.True(t, qtl.ShowName)

	// override > builtin
	gwas := res.Resolve("gwas")
	assert.Equal(t, "plasma", gwas.FillScale)
	assert.Equal(t, "GWAS peaks", gwas.YLabel)

	// unknown tag falls back to the default profile, keeping the tag as id
	unknown := res.Resolve("mystery")
	assert.Equal(t, "mystery", unknown.ID)
	assert.Equal(t, Defaults()[DefaultTag].YLabel, unknown.YLabel)
}

func TestResolverWithoutRegistry(t *testing.T) {
	res := NewResolver(nil, nil)
	can := res.Resolve("can")
	assert.True(t, can.ShowName)
	assert.Equal(t, "Candidate genes", can.YLabel)
}

func TestParseOverrides(t *testing.T) {
	ov, err := ParseOverrides(`{"de": {"show_name": true, "bogus_key": 1}}`)
	require.NoError(t, err)
	p := ov.apply("de", Defaults()["de"])
	assert.True(t, p.ShowName)

	ov, err = ParseOverrides("")
	require.NoError(t, err)
	assert.Nil(t, ov)

	_, err = ParseOverrides("{not json")
	require.Error(t, err)

	_, err = ParseOverrides(`[1,2]`)
	require.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := Defaults()["gwas"]
	merged := Merge(base, Profile{LineColour: "#000000"})
	assert.Equal(t, "#000000", merged.LineColour)
	assert.Equal(t, base.YLabel, merged.YLabel)
	assert.Equal(t, base.FillScale, merged.FillScale)
}
