package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"path"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"
)

// FormatError is returned when a generated document fails to format.
type FormatError struct {
	OriginalError error
	Source        string // the unformatted source
	LineNum       int
	Column        int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatting error at line %d:%d: %v", e.LineNum, e.Column, e.OriginalError)
}

func (e *FormatError) Unwrap() error {
	return e.OriginalError
}

// Synthesizer renders generated test cases into the output document. It
// holds exclusive write access to the document for the whole run;
// generation is sequential and aborts on the first fatal error.
type Synthesizer struct {
	cfg Config
	log *log.Logger

	preamble *template.Template
	testCase *template.Template
}

// NewSynthesizer loads the templates and returns a ready synthesizer.
// A nil logger falls back to the package default.
func NewSynthesizer(cfg Config, logger *log.Logger) (*Synthesizer, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Synthesizer{cfg: cfg, log: logger}
	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	return s, nil
}

// FullRun regenerates the whole output document: provision the fixture
// directory (unless configured off), enumerate fixtures, synthesize one
// case per fixture and truncate-and-rewrite the document. Provisioning
// failure aborts before the existing document is touched. Returns the
// number of cases synthesized.
func (s *Synthesizer) FullRun(ctx context.Context) (int, error) {
	if !s.cfg.SkipProvision {
		if err := Provision(ctx, s.cfg); err != nil {
			return 0, err
		}
	}

	fixtures, err := ListFixtures(s.cfg.FixtureDir)
	if err != nil {
		return 0, err
	}
	cases, err := BuildCases(fixtures)
	if err != nil {
		return 0, err
	}

	doc, err := s.renderDocument(cases)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(s.cfg.Output, doc, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", s.cfg.Output, err)
	}

	for _, c := range cases {
		s.log.Info("generated test case", "fixture", c.Fixture, "test", "Test_"+c.Ident)
	}
	return len(cases), nil
}

// SingleRun appends one generated case for the named fixture to the
// current output document. The fixture is not required to exist on disk:
// a missing fixture surfaces when the generated test runs, not here.
// When the document does not exist yet it is primed with the preamble.
func (s *Synthesizer) SingleRun(fixture string) error {
	id, err := DeriveIdent(fixture)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(s.cfg.Output)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", s.cfg.Output, err)
		}
		var buf bytes.Buffer
		if err := s.renderPreamble(&buf); err != nil {
			return err
		}
		existing = buf.Bytes()
	}

	if bytes.Contains(existing, []byte("func Test_"+id+"(")) {
		return fmt.Errorf("identifier collision: %s already contains Test_%s", s.cfg.Output, id)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if !bytes.HasSuffix(existing, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	if err := s.testCase.Execute(&buf, s.caseData(GeneratedCase{Ident: id, Fixture: fixture})); err != nil {
		return fmt.Errorf("rendering case for %s: %w", fixture, err)
	}

	formatted, err := s.gofmt(buf.Bytes())
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.cfg.Output, formatted, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.cfg.Output, err)
	}
	s.log.Info("generated test case", "fixture", fixture, "test", "Test_"+id)
	return nil
}

// fixtureRoot is the path constant emitted into the generated document,
// the configured fixture directory behind the configured ascent.
func (s *Synthesizer) fixtureRoot() string {
	return strings.Repeat("../", s.cfg.Ascend) + s.cfg.FixtureDir
}

// caseData is what case.tmpl renders from: the case itself plus the
// package selector the generated calls go through, the last element of
// the runtime import path.
type caseData struct {
	GeneratedCase
	RuntimePkg string
}

func (s *Synthesizer) caseData(c GeneratedCase) caseData {
	return caseData{GeneratedCase: c, RuntimePkg: path.Base(s.cfg.RuntimeImport)}
}

func (s *Synthesizer) renderPreamble(buf *bytes.Buffer) error {
	data := struct {
		Package       string
		RuntimeImport string
		FixtureRoot   string
	}{
		Package:       s.cfg.Package,
		RuntimeImport: s.cfg.RuntimeImport,
		FixtureRoot:   s.fixtureRoot(),
	}
	if err := s.preamble.Execute(buf, data); err != nil {
		return fmt.Errorf("rendering preamble: %w", err)
	}
	return nil
}

func (s *Synthesizer) renderDocument(cases []GeneratedCase) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.renderPreamble(&buf); err != nil {
		return nil, err
	}
	for _, c := range cases {
		buf.WriteByte('\n')
		if err := s.testCase.Execute(&buf, s.caseData(c)); err != nil {
			return nil, fmt.Errorf("rendering case for %s: %w", c.Fixture, err)
		}
	}
	return s.gofmt(buf.Bytes())
}

func (s *Synthesizer) gofmt(src []byte) ([]byte, error) {
	formatted, err := format.Source(src)
	if err != nil {
		var lineNum, colNum int
		fmt.Sscanf(err.Error(), "%d:%d:", &lineNum, &colNum)
		return nil, &FormatError{
			OriginalError: err,
			Source:        string(src),
			LineNum:       lineNum,
			Column:        colNum,
		}
	}
	return formatted, nil
}
