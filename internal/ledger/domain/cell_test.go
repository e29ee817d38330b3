package ledger

import (
	"testing"
)

func TestParseDateCell_Layouts(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2023-01-01", "2023-01-01"},
		{"01-01-2023", "2023-01-01"},
		{"15/02/2023", "2023-02-15"},
		{"2023/02/15", "2023-02-15"},
		{"2 Jan 2023", "2023-01-02"},
		{"02-Jan-2023", "2023-01-02"},
		{"2023-01-01T00:00:00Z", "2023-01-01"},
		{"44927", "2023-01-01"},
	}
	for _, tc := range cases {
		parsed, ok := parseDateCell(tc.raw)
		if !ok {
			t.Fatalf("%q: expected parseable date", tc.raw)
		}
		if got := parsed.Format("2006-01-02"); got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestParseDateCell_Rejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "Opening Balance", "0.5", "9999999"} {
		if _, ok := parseDateCell(raw); ok {
			t.Fatalf("%q: expected rejection", raw)
		}
	}
}

func TestParseAmountCell(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"11800", "11800.00"},
		{"11,800.00", "11800.00"},
		{"Rs. 5,900.50", "5900.50"},
		{"-250.25", "-250.25"},
		{"", "0.00"},
		{"N/A", "0.00"},
	}
	for _, tc := range cases {
		if got := parseAmountCell(tc.raw).StringFixed(2); got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		" Dr. Amount ":  "dramount",
		"CREDIT":        "credit",
		"Voucher Date":  "voucherdate",
		"Party's Name!": "partysname",
	}
	for raw, want := range cases {
		if got := normalizeHeader(raw); got != want {
			t.Fatalf("%q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestLedgerNameFromFilename(t *testing.T) {
	cases := map[string]string{
		"Acme Ledger FY23.xlsx": "Acme Ledger FY23",
		"ledger.xls":            "ledger",
		"noextension":           "noextension",
		".hidden":               ".hidden",
		"":                      "Unknown",
	}
	for filename, want := range cases {
		if got := LedgerNameFromFilename(filename); got != want {
			t.Fatalf("%q: expected %q, got %q", filename, want, got)
		}
	}
}
