package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
	enc "github.com/ongweikiat/moolah/internal/encoding"
	"github.com/ongweikiat/moolah/internal/ledger"
)

// genericParser reads the moolah CSV layout:
// date,description,amount,currency,category. Currency and category are
// optional columns; missing values fall back to SGD and OTHER.
type genericParser struct{}

func newGenericParser() *genericParser { return &genericParser{} }

func (p *genericParser) Parse(r io.Reader) ([]ledger.AddParams, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	cols, headerIdx, ok := findHeader(rows, []string{"date", "description", "amount"})
	if !ok {
		return nil, fmt.Errorf("no header row with date, description and amount columns")
	}

	var params []ledger.AddParams

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2 // 1-based, after the header

		date, err := parseDate(cellValue(row, cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(cellValue(row, cols["amount"])))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount: %w", rowNum, err)
		}

		params = append(params, ledger.AddParams{
			Description: strings.TrimSpace(cellValue(row, cols["description"])),
			Amount:      amount,
			Currency:    optionalCurrency(row, cols),
			Category:    optionalCategory(row, cols),
			Date:        date,
			Status:      ledger.StatusPending,
		})
	}

	return params, nil
}

// bankParser reads the debit/credit split layout bank portals export:
// date,description plus separate debit and credit columns. Debits become
// negative amounts, credits positive.
type bankParser struct{}

func newBankParser() *bankParser { return &bankParser{} }

func (p *bankParser) Parse(r io.Reader) ([]ledger.AddParams, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	cols, headerIdx, ok := findHeader(rows, []string{"date", "description", "debit", "credit"})
	if !ok {
		return nil, fmt.Errorf("no header row with date, description, debit and credit columns")
	}

	var params []ledger.AddParams

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		date, err := parseDate(cellValue(row, cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		amount, err := debitCreditAmount(
			cellValue(row, cols["debit"]),
			cellValue(row, cols["credit"]),
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		params = append(params, ledger.AddParams{
			Description: strings.TrimSpace(cellValue(row, cols["description"])),
			Amount:      amount,
			Currency:    optionalCurrency(row, cols),
			Category:    ledger.CategoryOther,
			Date:        date,
			Status:      ledger.StatusPending,
		})
	}

	return params, nil
}

func readRows(r io.Reader) ([][]string, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// findHeader scans for the first row containing every required column,
// matched case-insensitively, and maps column names to indexes.
func findHeader(rows [][]string, required []string) (map[string]int, int, bool) {
	for rowIdx, row := range rows {
		cols := make(map[string]int)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		found := true

		for _, name := range required {
			if _, ok := cols[name]; !ok {
				found = false
				break
			}
		}

		if found {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}

var dateLayouts = []string{time.DateOnly, "02/01/2006", "02-01-2006", "2 Jan 2006"}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return &d, nil
		}
	}

	return nil, fmt.Errorf("parsing date %q", s)
}

func optionalCurrency(row []string, cols map[string]int) currency.Code {
	idx, ok := cols["currency"]
	if !ok {
		return currency.Base
	}

	c, err := currency.Parse(cellValue(row, idx))
	if err != nil {
		return currency.Base
	}

	return c
}

func optionalCategory(row []string, cols map[string]int) ledger.Category {
	idx, ok := cols["category"]
	if !ok {
		return ledger.CategoryOther
	}

	c, err := ledger.ParseCategory(cellValue(row, idx))
	if err != nil {
		return ledger.CategoryOther
	}

	return c
}

func debitCreditAmount(debit, credit string) (decimal.Decimal, error) {
	debit = strings.TrimSpace(debit)
	credit = strings.TrimSpace(credit)

	if debit != "" {
		d, err := decimal.NewFromString(debit)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parsing debit: %w", err)
		}

		return d.Abs().Neg(), nil
	}

	if credit != "" {
		c, err := decimal.NewFromString(credit)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parsing credit: %w", err)
		}

		return c.Abs(), nil
	}

	return decimal.Decimal{}, fmt.Errorf("row has neither debit nor credit")
}
