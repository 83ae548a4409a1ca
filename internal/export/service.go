package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ongweikiat/moolah/internal/ledger"
)

// Service writes ledger views out as CSV for spreadsheets. The files it
// produces round-trip through the generic import profile.
type Service struct {
	outputDir string
}

func NewService(outputDir string) *Service {
	return &Service{outputDir: outputDir}
}

var header = []string{
	"id", "date", "description", "amount", "currency", "category",
	"priority", "status", "completed", "recurring_period", "tags",
}

// Export writes the given transactions to a timestamped CSV file and returns
// its path.
func (s *Service) Export(txs []*ledger.Transaction) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02-150405"))
	path := filepath.Join(s.outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	for _, t := range txs {
		if err := w.Write(toRow(t)); err != nil {
			return "", fmt.Errorf("writing transaction %d: %w", t.ID, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing export file: %w", err)
	}

	return path, nil
}

func toRow(t *ledger.Transaction) []string {
	date := ""
	if t.Date != nil {
		date = t.Date.Format(time.DateOnly)
	}

	return []string{
		strconv.Itoa(t.ID),
		date,
		t.Description,
		t.Amount.String(),
		string(t.Currency),
		string(t.Category),
		string(t.Priority),
		string(t.Status),
		strconv.FormatBool(t.Completed),
		strconv.Itoa(t.RecurringPeriod),
		strings.Join(t.Tags, "|"),
	}
}
