package importer

import (
	"fmt"
	"io"

	"github.com/ongweikiat/moolah/internal/ledger"
)

// Source selects the statement layout being imported.
type Source string

const (
	// SourceGeneric is the moolah CSV layout (also produced by export).
	SourceGeneric Source = "generic"
	// SourceBank is the debit/credit split layout most bank portals export.
	SourceBank Source = "bank"
)

type Importer interface {
	Parse(r io.Reader) ([]ledger.AddParams, error)
}

type Service struct {
	generic Importer
	bank    Importer
}

func NewService() *Service {
	return &Service{
		generic: newGenericParser(),
		bank:    newBankParser(),
	}
}

func (s *Service) Import(source Source, r io.Reader) ([]ledger.AddParams, error) {
	var imp Importer

	switch source {
	case SourceGeneric:
		imp = s.generic
	case SourceBank:
		imp = s.bank
	default:
		return nil, fmt.Errorf("unknown import source: %s", source)
	}

	return imp.Parse(r)
}
