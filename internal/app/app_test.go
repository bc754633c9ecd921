package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynagrid/internal/attachment"
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/docstore"
	"github.com/vk/dynagrid/internal/docstore/filestore"
	"github.com/vk/dynagrid/internal/system"
	"github.com/vk/dynagrid/internal/testutil"
	"github.com/vk/dynagrid/internal/topology"
)

// writeTwoBus stores the two-bus document with an attached generator model
// under dir/key.hcl and returns the document.
func writeTwoBus(t *testing.T, dir, key string) *system.Document {
	t.Helper()
	ctx, _ := testutil.Context(t)
	doc, err := system.New(100, 60)
	require.NoError(t, err)
	for _, c := range testutil.TwoBus() {
		require.NoError(t, doc.Add(ctx, c))
	}
	dev, err := device.Compose(device.Generator, "gen-2-1-dyn", 60, testutil.GeneratorBlocks())
	require.NoError(t, err)
	require.NoError(t, attachment.Attach(ctx, doc, dev, testutil.Generator))
	require.NoError(t, docstore.Save(ctx, filestore.New(dir), key, doc))
	return doc
}

func newTestApp(t *testing.T, paths ...string) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()
	cfg, err := NewConfig(Config{Paths: paths, LogLevel: "debug", LogFormat: "text", WorkerCount: 2})
	require.NoError(t, err)
	out, logs := &bytes.Buffer{}, &testutil.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("DYNAGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return NewApp(out, logs, cfg), out, logs
}

func TestRun_SummarizesDocuments(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeTwoBus(t, dir, "two-bus")
	a, out, logs := newTestApp(t, dir)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "two-bus: base_power=100 base_frequency=60")
	assert.Contains(t, text, "components: 6 (Bus=2 Branch=1 StaticInjection=2 DynamicInjection=1)")
	assert.Contains(t, text, `device "gen-2-1-dyn" DynamicGenerator states=6 algebraic=2 static=gen-2-1`)
	assert.Contains(t, text, "islands: 1")
	assert.Contains(t, text, "connectivity: ok")
	assert.Contains(t, logs.String(), "Documents discovered.")
}

func TestRun_ReportsConnectivityIssues(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	ctx, _ := testutil.Context(t)
	doc := writeTwoBus(t, dir, "base")
	require.NoError(t, doc.Add(ctx, topology.NewBus("Bus 3", 3, topology.BusPQ, 230)))
	spare, err := device.Compose(device.Generator, "spare", 60, testutil.GeneratorBlocks())
	require.NoError(t, err)
	require.NoError(t, doc.Add(ctx, spare))
	require.NoError(t, docstore.Save(ctx, filestore.New(dir), "islanded", doc))
	a, out, logs := newTestApp(t, filepath.Join(dir, "islanded.hcl"))

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err, "connectivity issues are advisory")
	text := out.String()
	assert.Contains(t, text, `orphan bus "Bus 3"`)
	assert.Contains(t, text, "islands: 2")
	assert.Contains(t, text, "connectivity: island [Bus 3]: no reference bus")
	assert.Contains(t, text, `device "spare" DynamicGenerator states=6 algebraic=2 static=(orphaned)`)
	assert.NotContains(t, text, "base: ", "only the named file is loaded")
	assert.Contains(t, logs.String(), "Connectivity issue.")
}

func TestRun_CopiesIntoStore(t *testing.T) {
	// --- Arrange ---
	src, dst := t.TempDir(), t.TempDir()
	writeTwoBus(t, filepath.Join(src, "area"), "two-bus")
	cfg, err := NewConfig(Config{Paths: []string{src}, WorkerCount: 1, StoreURI: "file://" + dst})
	require.NoError(t, err)
	logs := &testutil.SafeBuffer{}

	// --- Act ---
	err = NewApp(&bytes.Buffer{}, logs, cfg).Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	ctx, _ := testutil.Context(t)
	keys, err := filestore.New(dst).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"area/two-bus"}, keys)
	doc, err := docstore.Open(ctx, filestore.New(dst), "area/two-bus")
	require.NoError(t, err)
	assert.Len(t, doc.DynamicDevices(), 1)
	assert.Contains(t, logs.String(), "Documents copied.")
}

func TestOpenStoreRejectsUnknownScheme(t *testing.T) {
	_, _, err := openStore(context.Background(), &Config{StoreURI: "ftp://host/x"})
	assert.ErrorContains(t, err, "invalid store-uri")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "s3://key:xxxxx@host/bucket", redact("s3://key:secret@host/bucket"))
}

func TestRun_InvalidDocumentFails(t *testing.T) {
	dir := t.TempDir()
	writeTwoBus(t, dir, "good")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.hcl"), []byte(`component "Bus" {`), 0o600))
	a, _, _ := newTestApp(t, dir)

	err := a.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, component.ErrDeserialization)
	assert.Contains(t, err.Error(), "bad")
}

func TestRun_RejectsNonHCLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	a, _, _ := newTestApp(t, path)

	err := a.Run(context.Background())

	assert.ErrorContains(t, err, "is not an .hcl document")
}

func TestRun_EmptyDirectory(t *testing.T) {
	a, out, logs := newTestApp(t, t.TempDir())

	require.NoError(t, a.Run(context.Background()))

	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "No documents found.")
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
		wantDB  string
	}{
		{name: "no paths", cfg: Config{WorkerCount: 1}, wantErr: "document path"},
		{name: "no workers", cfg: Config{Paths: []string{"."}}, wantErr: "workers"},
		{name: "store without database", cfg: Config{Paths: []string{"."}, WorkerCount: 1, StoreURI: "mongodb://x"}, wantDB: DefaultStoreDatabase},
		{name: "no store", cfg: Config{Paths: []string{"."}, WorkerCount: 4}},
		{name: "unknown store scheme", cfg: Config{Paths: []string{"."}, WorkerCount: 1, StoreURI: "postgres://db"}, wantErr: "invalid store-uri"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)

			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDB, cfg.StoreDatabase)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger("warn", "json", &buf).Info("hidden")
	newLogger("warn", "json", &buf).Warn("shown")
	newLogger("bogus", "text", &buf).Info("fallback")

	text := buf.String()
	assert.NotContains(t, text, "hidden")
	assert.Contains(t, text, `"msg":"shown"`)
	assert.Contains(t, text, "msg=fallback")
}
