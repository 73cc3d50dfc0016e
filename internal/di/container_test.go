package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/fraud-shield/internal/core"
	"github.com/mikey/fraud-shield/internal/factory"
	"github.com/mikey/fraud-shield/internal/ports"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "llm:\n  provider: mock\n" +
		"cache:\n  type: file\n  path: " + filepath.Join(dir, "cache.json") + "\n" +
		"history:\n  type: file\n  path: " + filepath.Join(dir, "history.json") + "\n" +
		"server:\n  listen_address: 127.0.0.1:0\n" +
		"logging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildContainer(t *testing.T) {
	container, err := BuildContainer(writeConfig(t))
	require.NoError(t, err)

	err = container.Invoke(func(frontend ports.Frontend, service *core.ScanService, ledger core.HistoryLedger) {
		assert.NotNil(t, frontend)
		assert.Equal(t, "mock", service.Provider())

		record, err := service.Handle(context.Background(), &core.ScanRequest{Type: core.AnalysisScam, Text: "urgent: verify your bank"})
		require.NoError(t, err)
		assert.Equal(t, core.VerdictScam, record.Verdict)
		require.NoError(t, ledger.Append(context.Background(), record))
	})
	require.NoError(t, err)
}

func TestBuildCLIContainer(t *testing.T) {
	flags, err := ParseFlags([]string{"-config", writeConfig(t), "-type", "url", "-url", "http://x.test", "-json"})
	require.NoError(t, err)
	assert.Equal(t, "url", flags.Type)
	assert.True(t, flags.JSONOutput)

	container, err := BuildCLIContainer(flags)
	require.NoError(t, err)

	err = container.Invoke(func(service *core.ScanService, hf *factory.HistoryFactory) {
		record, err := service.Handle(context.Background(), &core.ScanRequest{Type: core.AnalysisURL, URL: flags.URL})
		require.NoError(t, err)
		assert.Equal(t, core.VerdictSuspicious, record.Verdict)

		_, err = hf.CreateHistoryLedger()
		require.NoError(t, err)
	})
	require.NoError(t, err)
}

func TestParseFlags_Invalid(t *testing.T) {
	_, err := ParseFlags([]string{"-no-such-flag"})
	assert.Error(t, err)
}
