package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmonsim/internal/config"
	"netmonsim/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "netmonsim "+Version)
	assert.Contains(t, out, "Commit: "+GitCommit)
}

func TestGenerateJSON(t *testing.T) {
	out, err := execute(t, "generate", "-n", "5", "-d", "0s", "--format", "json", "--seed", "7")
	require.NoError(t, err)

	var seqs []uint64
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var p models.Packet
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &p))
		seqs = append(seqs, p.Seq)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, seqs)
}

func TestGenerateTableWithNavigation(t *testing.T) {
	out, err := execute(t, "generate", "-n", "0", "-d", "0s", "--format", "table", "--navigate", "https://phishing-bank.com")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], " No."))
	assert.Contains(t, out, "\n!")
	assert.Contains(t, out, "phishing-bank.com")
	assert.Contains(t, out, "security score")
	assert.NotContains(t, out, "\x1b[")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := execute(t, "generate", "-n", "1", "-d", "0s", "--format", "xml")
	assert.EqualError(t, err, "unsupported format: xml")

	_, err = execute(t, "generate", "-n", "-1", "-d", "0s", "--format", "json")
	assert.Error(t, err)
}

func TestGenerateBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture: [oops"), 0o644))

	_, err := execute(t, "generate", "-n", "1", "-d", "0s", "--format", "json", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")

	_, err = execute(t, "generate", "-n", "1", "-d", "0s", "--format", "json", "--config", "")
	assert.NoError(t, err)
}

func TestExportAndReport(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "export", "-n", "10", "-d", "0s", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported ")

	out, err = execute(t, "report", "-n", "10", "-d", "0s", "--dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Report written to ")
	path := strings.TrimSpace(strings.TrimPrefix(out, "Report written to "))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Security Score")

	pcaps, err := filepath.Glob(filepath.Join(dir, "capture_*.pcap"))
	require.NoError(t, err)
	assert.Len(t, pcaps, 1)
}

func TestSimulationRun(t *testing.T) {
	cfg := config.Default()
	cfg.Traffic.Seed = 1
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	sim := simulation{
		count:    3,
		duration: 10 * time.Second,
		navigate: []string{"https://securebank.com"},
		open:     []string{"prince.nigeria@totally-real.com"},
		click:    []string{"https://phishing-bank.com"},
	}
	packets, a := sim.run(cfg, start)

	assert.False(t, a.monitor.Running())
	require.Greater(t, len(packets), 3+int(sim.duration/cfg.Capture.Interval))
	for i, p := range packets {
		assert.Equal(t, uint64(i+1), p.Seq)
		assert.False(t, p.CapturedAt.Before(start))
		assert.False(t, p.CapturedAt.After(start.Add(sim.duration)))
	}

	total, suspicious := a.stats.Totals()
	assert.EqualValues(t, len(packets), total)
	assert.NotZero(t, suspicious)
	assert.True(t, clickSuspicious(a, "https://phishing-bank.com"))
	assert.False(t, clickSuspicious(a, "https://securebank.com"))
}
