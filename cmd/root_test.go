package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/resale-geojoin/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"run", "points", "config"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "resale-geojoin", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	for _, name := range []string{"footprints", "transactions", "csv-out", "geojson-out", "xlsx-out", "sqlite-out", "points-out"} {
		flag := runCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "run should have --%s flag", name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestPointsCommand_Flags(t *testing.T) {
	for _, name := range []string{"footprints", "out"} {
		assert.NotNil(t, pointsCmd.Flags().Lookup(name), "points should have --%s flag", name)
	}
}

func TestApplyRunFlags_OnlyChanged(t *testing.T) {
	c := &config.Config{
		Footprints:   config.FootprintsConfig{Path: "HDBExistingBuilding.geojson"},
		Transactions: config.TransactionsConfig{Path: "combined_resale_data.csv"},
		Output:       config.OutputConfig{CSV: "transactions_with_lonlat.csv", GeoJSON: "transactions_with_lonlat.geojson"},
	}

	require.NoError(t, runCmd.Flags().Set("csv-out", "out/joined.csv"))
	require.NoError(t, runCmd.Flags().Set("sqlite-out", "out/geojoin.db"))
	t.Cleanup(func() {
		_ = runCmd.Flags().Set("csv-out", "")
		_ = runCmd.Flags().Set("sqlite-out", "")
		runCmd.Flags().Lookup("csv-out").Changed = false
		runCmd.Flags().Lookup("sqlite-out").Changed = false
	})

	applyRunFlags(runCmd, c)

	assert.Equal(t, "out/joined.csv", c.Output.CSV)
	assert.Equal(t, "out/geojoin.db", c.Output.SQLite)
	assert.Equal(t, "transactions_with_lonlat.geojson", c.Output.GeoJSON)
	assert.Equal(t, "HDBExistingBuilding.geojson", c.Footprints.Path)
}

func TestAbsPath(t *testing.T) {
	got := absPath("transactions_with_lonlat.csv")
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "transactions_with_lonlat.csv", filepath.Base(got))
}
