// Package statement parses bank statement files into the format-independent
// representation consumed by the import service.
package statement

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/distrib/backoffice/internal/domain/banking"
)

// Common parse errors
var (
	// ErrNotOFX is returned when the file has no recognizable OFX body
	ErrNotOFX = errors.New("file is not a valid OFX document")

	// ErrNoTransactions is returned when the OFX body has no STMTTRN blocks
	ErrNoTransactions = errors.New("OFX document contains no transactions")
)

// OFXParser reads OFX 1.x (SGML) bank statements. Banks emit wildly
// inconsistent OFX, so the parser is tolerant: it scans for known tags and
// skips transaction blocks that are missing required fields rather than
// failing the whole file.
type OFXParser struct{}

// NewOFXParser creates an OFX statement parser
func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

// Parse decodes an OFX file into a ParsedStatement. Transactions missing a
// FITID, amount or posting date are dropped; the caller decides whether an
// empty result is an error.
func (p *OFXParser) Parse(data []byte) (*banking.ParsedStatement, error) {
	content := decodeCharset(data)

	bodyStart := strings.Index(strings.ToUpper(content), "<OFX>")
	if bodyStart < 0 {
		return nil, ErrNotOFX
	}
	body := content[bodyStart:]

	parsed := &banking.ParsedStatement{
		PeriodStart: parseOFXDate(findTag(body, "DTSTART")),
		PeriodEnd:   parseOFXDate(findTag(body, "DTEND")),
	}

	blocks := transactionBlocks(body)
	if len(blocks) == 0 {
		return nil, ErrNoTransactions
	}

	for _, block := range blocks {
		line, ok := parseTransaction(block)
		if !ok {
			continue
		}
		parsed.Lines = append(parsed.Lines, line)
	}

	// Statements without a DTSTART/DTEND range get the span of the
	// transactions themselves.
	if parsed.PeriodStart.IsZero() || parsed.PeriodEnd.IsZero() {
		for _, line := range parsed.Lines {
			if parsed.PeriodStart.IsZero() || line.PostedAt.Before(parsed.PeriodStart) {
				parsed.PeriodStart = line.PostedAt
			}
			if parsed.PeriodEnd.IsZero() || line.PostedAt.After(parsed.PeriodEnd) {
				parsed.PeriodEnd = line.PostedAt
			}
		}
	}

	return parsed, nil
}

// parseTransaction extracts a single STMTTRN block. Returns ok=false when a
// required field is absent or unparseable.
func parseTransaction(block string) (banking.ParsedLine, bool) {
	fitID := findTag(block, "FITID")
	rawAmount := findTag(block, "TRNAMT")
	postedAt := parseOFXDate(findTag(block, "DTPOSTED"))

	if fitID == "" || rawAmount == "" || postedAt.IsZero() {
		return banking.ParsedLine{}, false
	}

	amount, err := parseOFXAmount(rawAmount)
	if err != nil || amount.IsZero() {
		return banking.ParsedLine{}, false
	}

	direction := banking.DirectionCredit
	if amount.IsNegative() {
		direction = banking.DirectionDebit
	} else if strings.EqualFold(findTag(block, "TRNTYPE"), "DEBIT") {
		direction = banking.DirectionDebit
	}

	memo := findTag(block, "MEMO")
	if memo == "" {
		memo = findTag(block, "NAME")
	}

	return banking.ParsedLine{
		FitID:     fitID,
		Direction: direction,
		Amount:    amount.Abs(),
		PostedAt:  postedAt,
		Memo:      memo,
	}, true
}

// transactionBlocks returns the raw content of every <STMTTRN> block.
// Unclosed blocks (legal in SGML OFX) end at the next <STMTTRN> or at the
// transaction list close.
func transactionBlocks(body string) []string {
	var blocks []string
	upper := strings.ToUpper(body)
	pos := 0

	for {
		start := strings.Index(upper[pos:], "<STMTTRN>")
		if start < 0 {
			break
		}
		start += pos + len("<STMTTRN>")

		end := len(body)
		for _, closer := range []string{"</STMTTRN>", "<STMTTRN>", "</BANKTRANLIST>"} {
			if idx := strings.Index(upper[start:], closer); idx >= 0 && start+idx < end {
				end = start + idx
			}
		}

		blocks = append(blocks, body[start:end])
		pos = end
	}

	return blocks
}

// findTag returns the value of the first <TAG>value occurrence, with the
// value ending at the next tag or end of line.
func findTag(content, tag string) string {
	marker := "<" + tag + ">"
	idx := strings.Index(strings.ToUpper(content), marker)
	if idx < 0 {
		return ""
	}

	rest := content[idx+len(marker):]
	if end := strings.IndexAny(rest, "<\r\n"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// parseOFXDate reads OFX timestamps: YYYYMMDD or YYYYMMDDHHMMSS, optionally
// followed by fractional seconds and a [gmt offset:name] suffix, which both
// get discarded. The zero time signals an absent or malformed value.
func parseOFXDate(value string) time.Time {
	digits := value
	if idx := strings.IndexAny(digits, ".["); idx >= 0 {
		digits = digits[:idx]
	}
	digits = strings.TrimSpace(digits)

	switch {
	case len(digits) >= 14:
		if t, err := time.Parse("20060102150405", digits[:14]); err == nil {
			return t.UTC()
		}
	case len(digits) >= 8:
		if t, err := time.Parse("20060102", digits[:8]); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseOFXAmount reads a TRNAMT value. Brazilian banks occasionally emit a
// comma decimal separator.
func parseOFXAmount(value string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid transaction amount %q: %w", value, err)
	}
	return amount, nil
}

// decodeCharset returns the file content as UTF-8. OFX 1.x files commonly
// declare latin-1 charsets in the header; anything that is not already valid
// UTF-8 gets decoded as ISO-8859-1, which never fails.
func decodeCharset(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
