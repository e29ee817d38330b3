package rule37

import (
	"errors"
	"time"

	ledger "rule37-cloud/internal/ledger/domain"
)

// FileProcessor turns one uploaded spreadsheet into a per-ledger
// calculation result.
type FileProcessor struct {
	parser     ledger.Parser
	calculator *Calculator
}

func NewFileProcessor(parser ledger.Parser, calculator *Calculator) (*FileProcessor, error) {
	if parser == nil {
		return nil, errors.New("rule37: parser is nil")
	}
	if calculator == nil {
		return nil, errors.New("rule37: calculator is nil")
	}
	return &FileProcessor{parser: parser, calculator: calculator}, nil
}

// Process parses the file and runs the Rule 37 calculation against it.
// Parse failures are returned as-is so callers can report them per file.
func (p *FileProcessor) Process(data []byte, filename string, asOnDate time.Time) (LedgerResult, error) {
	entries, err := p.parser.Parse(data, filename)
	if err != nil {
		return LedgerResult{}, err
	}
	return LedgerResult{
		LedgerName: ledger.LedgerNameFromFilename(filename),
		Summary:    p.calculator.Calculate(entries, asOnDate),
	}, nil
}
