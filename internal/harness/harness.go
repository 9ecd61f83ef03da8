// Package harness turns a directory of binary wasm conformance fixtures
// into a generated Go test file, one test function per fixture. Each
// generated test loads its fixture into a fresh runtime and asserts the
// load succeeded.
package harness

// Config carries the generation settings. Paths are interpreted
// relative to the working directory the generator runs from, which is
// expected to be the directory the generated tests will also run from;
// Ascend compensates when the test binary runs deeper in the tree.
type Config struct {
	// FixtureDir holds the binary fixtures after provisioning.
	FixtureDir string
	// SourceDir is the directory the extraction executable runs in.
	SourceDir string
	// ExtractCmd is the extraction executable, invoked with no arguments.
	ExtractCmd string
	// Output is the generated test file.
	Output string
	// Package is the package clause of the generated file.
	Package string
	// RuntimeImport is the import path of the runtime package the
	// generated tests load fixtures into.
	RuntimeImport string
	// Ascend prepends this many "../" segments to the fixture root
	// emitted into the generated file.
	Ascend int
	// SkipProvision skips the destructive fixture-directory reset and
	// the extraction step in full mode.
	SkipProvision bool
	// TemplateFile optionally overrides the embedded template archive.
	TemplateFile string
}

// DefaultConfig matches a generator invoked from within the runtime
// package directory.
var DefaultConfig = Config{
	FixtureDir:    "testsuite/valid",
	SourceDir:     "testsuite",
	ExtractCmd:    "./extract.sh",
	Output:        "testsuite_gen_test.go",
	Package:       "wasm_test",
	RuntimeImport: "github.com/carbonwasm/carbon/wasm",
	Ascend:        0,
}

// GeneratedCase is one synthesized test, bound 1:1 to a fixture file.
type GeneratedCase struct {
	Ident   string // derived identifier, used as Test_<Ident>
	Fixture string // fixture filename within the fixture root
}
