package harness

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

var writeGolden = flag.Bool("write-golden", false, "If true, rewrites golden files in txtar archives")

func newTestSynthesizer(t *testing.T, cfg Config) *Synthesizer {
	t.Helper()
	if cfg.Package == "" {
		cfg.Package = DefaultConfig.Package
	}
	if cfg.RuntimeImport == "" {
		cfg.RuntimeImport = DefaultConfig.RuntimeImport
	}
	s, err := NewSynthesizer(cfg, nil)
	require.NoError(t, err)
	return s
}

func writeFixtures(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{0x00}, 0o644))
	}
}

func TestFullRunGeneratesOneTestPerFixture(t *testing.T) {
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "valid")
	writeFixtures(t, fixtures, "i32.const.wasm", "block-basic.wasm")

	cfg := Config{
		FixtureDir:    fixtures,
		Output:        filepath.Join(dir, "gen_test.go"),
		SkipProvision: true,
	}
	s := newTestSynthesizer(t, cfg)

	count, err := s.FullRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "func Test_block_basic_wasm(t *testing.T) {")
	assert.Contains(t, text, "func Test_i32_const_wasm(t *testing.T) {")
	assert.Equal(t, 1, strings.Count(text, "func Test_block_basic_wasm("))
	assert.Equal(t, 1, strings.Count(text, "func Test_i32_const_wasm("))
	// Deterministic lexicographic order.
	assert.Less(t,
		strings.Index(text, "Test_block_basic_wasm"),
		strings.Index(text, "Test_i32_const_wasm"))
}

func TestFullRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "valid")
	writeFixtures(t, fixtures, "i32.const.wasm", "block-basic.wasm", "elem.2.wasm")

	cfg := Config{
		FixtureDir:    fixtures,
		Output:        filepath.Join(dir, "gen_test.go"),
		SkipProvision: true,
	}
	s := newTestSynthesizer(t, cfg)

	_, err := s.FullRun(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	_, err = s.FullRun(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("regeneration not byte-identical (-first +second):\n%s", diff)
	}
}

func TestFullRunCollisionIsFatal(t *testing.T) {
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "valid")
	writeFixtures(t, fixtures, "a.b.wasm", "a-b.wasm")

	cfg := Config{
		FixtureDir:    fixtures,
		Output:        filepath.Join(dir, "gen_test.go"),
		SkipProvision: true,
	}
	s := newTestSynthesizer(t, cfg)

	_, err := s.FullRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision")
	_, statErr := os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(statErr), "no output document should be written on collision")
}

func TestFullRunProvisionFailureLeavesOutputUntouched(t *testing.T) {
	src := t.TempDir()
	fixtures := filepath.Join(src, "valid")
	cmd := writeScript(t, src, "exit 1")

	output := filepath.Join(src, "gen_test.go")
	require.NoError(t, os.WriteFile(output, []byte("// prior document\n"), 0o644))

	cfg := Config{
		FixtureDir: fixtures,
		SourceDir:  src,
		ExtractCmd: cmd,
		Output:     output,
	}
	s := newTestSynthesizer(t, cfg)

	_, err := s.FullRun(context.Background())
	require.Error(t, err)

	out, readErr := os.ReadFile(output)
	require.NoError(t, readErr)
	assert.Equal(t, "// prior document\n", string(out))
}

func TestSingleRunToleratesMissingFixture(t *testing.T) {
	// The test block is emitted unconditionally; a missing fixture
	// surfaces at test-run time, not at generation time.
	dir := t.TempDir()
	cfg := Config{
		FixtureDir: "testsuite/valid",
		Output:     filepath.Join(dir, "gen_test.go"),
	}
	s := newTestSynthesizer(t, cfg)

	require.NoError(t, s.SingleRun("foo.wasm"))

	out, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(out), "func Test_foo_wasm(t *testing.T) {")
}

func TestSingleRunIsAppendOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		FixtureDir: "testsuite/valid",
		Output:     filepath.Join(dir, "gen_test.go"),
	}
	s := newTestSynthesizer(t, cfg)

	require.NoError(t, s.SingleRun("first.wasm"))
	before, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	require.NoError(t, s.SingleRun("second.wasm"))
	after, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(after), string(before)),
		"single mode must not alter previously emitted blocks")
	assert.Contains(t, string(after), "func Test_second_wasm(t *testing.T) {")
}

func TestSingleRunDetectsCollision(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		FixtureDir: "testsuite/valid",
		Output:     filepath.Join(dir, "gen_test.go"),
	}
	s := newTestSynthesizer(t, cfg)

	require.NoError(t, s.SingleRun("a.b.wasm"))
	err := s.SingleRun("a-b.wasm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision")
}

func TestAscendPrependsParentSegments(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		FixtureDir: "testsuite/valid",
		Output:     filepath.Join(dir, "gen_test.go"),
		Ascend:     2,
	}
	s := newTestSynthesizer(t, cfg)

	require.NoError(t, s.SingleRun("foo.wasm"))
	out, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(out), `const fixtureRoot = "../../testsuite/valid"`)
}

func TestRuntimeImportDrivesPackageSelector(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		FixtureDir:    "testsuite/valid",
		Output:        filepath.Join(dir, "gen_test.go"),
		RuntimeImport: "example.com/modules/engine",
	}
	s := newTestSynthesizer(t, cfg)

	require.NoError(t, s.SingleRun("foo.wasm"))
	out, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, `"example.com/modules/engine"`)
	assert.Contains(t, text, "rt := engine.Default()")
	assert.NotContains(t, text, "wasm.Default()")
}

func TestRenderDocumentGolden(t *testing.T) {
	archivePath := filepath.Join("testdata", "gen.txtar")
	archive, err := txtar.ParseFile(archivePath)
	require.NoError(t, err)

	cfg := Config{FixtureDir: "testsuite/valid"}
	s := newTestSynthesizer(t, cfg)

	cases, err := BuildCases([]string{"i32.const.wasm", "block-basic.wasm"})
	require.NoError(t, err)
	doc, err := s.renderDocument(cases)
	require.NoError(t, err)

	if *writeGolden {
		for i := range archive.Files {
			if archive.Files[i].Name == "golden.go" {
				archive.Files[i].Data = doc
			}
		}
		require.NoError(t, os.WriteFile(archivePath, txtar.Format(archive), 0o644))
		t.Logf("wrote updated golden file: %s", archivePath)
		return
	}

	var want string
	for _, f := range archive.Files {
		if f.Name == "golden.go" {
			want = string(f.Data)
		}
	}
	require.NotEmpty(t, want, "golden.go missing from %s", archivePath)

	if diff := cmp.Diff(want, string(doc)); diff != "" {
		t.Errorf("renderDocument() mismatch (-want +got):\n%s", diff)
	}
}
