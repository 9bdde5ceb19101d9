package genesis

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"lina-genesis/chaincfg"
	"lina-genesis/ledger"
	"lina-genesis/payout"
	"lina-genesis/wire"
)

//go:embed spec.toml.tmpl
var specTemplate string

var specTmpl = template.Must(template.New("spec").Funcs(template.FuncMap{
	"quote": quoteTOML,
}).Parse(specTemplate))

// quoteTOML returns s as a TOML basic string.
func quoteTOML(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// IssuedCell is a cell created by the genesis block.
type IssuedCell struct {
	Capacity uint64
	CodeHash string
	Args     string
	HashType string
}

// NewSighashCell issues capacity to a single-key lock.
func NewSighashCell(params *chaincfg.Params, key wire.RecipientKey, capacity uint64) IssuedCell {
	return IssuedCell{
		Capacity: capacity,
		CodeHash: params.SighashCodeHash.String(),
		Args:     key.String(),
		HashType: "type",
	}
}

// NewMultisigCell issues capacity to a multisig lock with the given args.
func NewMultisigCell(params *chaincfg.Params, args []byte, capacity uint64) IssuedCell {
	return IssuedCell{
		Capacity: capacity,
		CodeHash: params.MultisigCodeHash.String(),
		Args:     hexutil.Encode(args),
		HashType: "type",
	}
}

// IncentiveCells turns payouts into issued cells.
func IncentiveCells(params *chaincfg.Params, payouts []payout.Payout) []IssuedCell {
	cells := make([]IssuedCell, len(payouts))
	for i, p := range payouts {
		cells[i] = NewSighashCell(params, p.Key, p.Capacity)
	}
	return cells
}

// Spec is the chain specification document.
type Spec struct {
	Name              string
	Timestamp         uint64
	CompactTarget     string
	Message           string
	EpochLength       uint64
	Allocate          []IssuedCell
	FoundationReserve *IssuedCell
	TestnetIncentives []IssuedCell
}

// NewSpec fills the chain-derived fields of a document.
func NewSpec(name string, p Parameters) *Spec {
	return &Spec{
		Name:          name,
		Timestamp:     p.TimestampMillis,
		CompactTarget: fmt.Sprintf("%#x", p.CompactTarget),
		Message:       fmt.Sprintf("%s %s", name, p.Message),
		EpochLength:   p.EpochLength,
	}
}

// Render writes the document as TOML.
func (s *Spec) Render(w io.Writer) error {
	if err := specTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("render spec: %w", err)
	}
	return nil
}

// Issued sums the capacity of every issued cell.
func (s *Spec) Issued() (uint64, error) {
	cells := append(append([]IssuedCell{}, s.Allocate...), s.TestnetIncentives...)
	if s.FoundationReserve != nil {
		cells = append(cells, *s.FoundationReserve)
	}
	var total uint64
	for _, c := range cells {
		var err error
		if total, err = ledger.CheckedAdd(total, c.Capacity); err != nil {
			return 0, fmt.Errorf("issued capacity: %w", err)
		}
	}
	return total, nil
}
