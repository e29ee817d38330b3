package rule37

import (
	"testing"
	"time"

	ledger "rule37-cloud/internal/ledger/domain"
)

type stubParser struct {
	entries []ledger.Entry
	err     error
}

func (p *stubParser) Parse(data []byte, filename string) ([]ledger.Entry, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.entries, nil
}

func TestFileProcessor_NamesLedgerFromFilename(t *testing.T) {
	parser := &stubParser{entries: []ledger.Entry{purchase(t, "Acme Traders", "2023-01-01", "11800")}}
	processor, err := NewFileProcessor(parser, NewCalculator())
	if err != nil {
		t.Fatalf("new file processor: %v", err)
	}

	result, err := processor.Process([]byte("ignored"), "Acme Ledger FY23.xlsx", mustDate(t, "2023-08-01"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.LedgerName != "Acme Ledger FY23" {
		t.Fatalf("expected ledger name from filename, got %q", result.LedgerName)
	}
	if len(result.Summary.Details) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Summary.Details))
	}
}

func TestFileProcessor_PropagatesParseError(t *testing.T) {
	parser := &stubParser{err: &ledger.ParseError{Message: "could not find date column"}}
	processor, err := NewFileProcessor(parser, NewCalculator())
	if err != nil {
		t.Fatalf("new file processor: %v", err)
	}

	_, err = processor.Process([]byte("bad"), "broken.xlsx", mustDate(t, "2023-08-01"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewFileProcessor_NilDeps(t *testing.T) {
	if _, err := NewFileProcessor(nil, NewCalculator()); err == nil {
		t.Fatalf("expected error for nil parser")
	}
	if _, err := NewFileProcessor(&stubParser{}, nil); err == nil {
		t.Fatalf("expected error for nil calculator")
	}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	return date(t, value)
}
