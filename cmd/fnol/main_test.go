package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/claimsdesk/fnol/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := rootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "stdio", "extract", "version"}, names)
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := config.NewAppConfig()

	unchanged := applyServeOverrides(cfg, "", 0)
	assert.Equal(t, cfg.Addr(), unchanged.Addr())

	changed := applyServeOverrides(cfg, "127.0.0.1", 9090)
	assert.Equal(t, "127.0.0.1", changed.Host())
	assert.Equal(t, 9090, changed.Port())
}

func TestRunExtract_RequiresInput(t *testing.T) {
	err := runExtract(t.Context(), extractCmd(), "", "", "", " ", nil)
	assert.ErrorContains(t, err, "nothing to extract")
}
