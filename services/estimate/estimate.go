// Package estimate extracts appendix line items from an estimate spreadsheet.
package estimate

import (
	"regexp"
	"strings"

	"qartelbot/models"

	"github.com/shopspring/decimal"
)

// Column layout of the estimate sheet (zero-based).
const (
	colLabel  = 0 // A: labels and item descriptions
	colMarker = 5 // F: "вкл" marks an included position
	colTotal  = 6 // G: position and grand totals

	firstDataRow = 2
)

const (
	markerIncluded  = "вкл"
	labelAssembly   = "монтажный блок"
	labelItemTotal  = "итого стоимость позиции:"
	untitledItem    = "Услуга без названия"
	assemblyItem    = "Предоставление услуг логистики, монтажа и демонтажа"
	lineItemKind    = "Услуга"
	lineItemQty     = "1"
	vatPercent      = 20
	vatInclusiveDiv = 100 + vatPercent
)

var sheetsURL = regexp.MustCompile(`docs\.google\.com/spreadsheets`)

// Estimate is the parsed services table with its VAT-inclusive total.
type Estimate struct {
	Items []models.LineItem
	Total decimal.Decimal
	VAT   decimal.Decimal
}

type parserState int

const (
	stateIdle parserState = iota
	stateItemOpen
)

// parser walks rows once. An item opens on a marker cell or the assembly
// label and closes on the position-total label.
type parser struct {
	rows        [][]string
	state       parserState
	description string
	items       []models.LineItem
}

// ParseRows scans rows from the third one and emits a line item for every
// closed position with a total strictly greater than zero.
func ParseRows(rows [][]string) Estimate {
	p := &parser{rows: rows}
	for i := firstDataRow; i < len(rows); i++ {
		p.step(i)
	}
	total := grandTotal(rows)
	return Estimate{
		Items: p.items,
		Total: total,
		VAT:   VAT(total),
	}
}

func (p *parser) step(i int) {
	row := p.rows[i]

	if strings.EqualFold(cell(row, colMarker), markerIncluded) {
		p.open(untitledItem)
		if next := cell(p.row(i+1), colLabel); next != "" {
			p.description = next
		}
	}

	label := strings.ToLower(cell(row, colLabel))
	switch label {
	case labelAssembly:
		p.open(assemblyItem)
	case labelItemTotal:
		p.close(parseAmount(cell(row, colTotal)))
	}
}

func (p *parser) open(description string) {
	p.state = stateItemOpen
	p.description = description
}

// close emits the open item when amount is positive and resets to idle.
// A total row without an open item still emits, with an empty description.
func (p *parser) close(amount decimal.Decimal) {
	description := ""
	if p.state == stateItemOpen {
		description = p.description
	}
	if amount.IsPositive() {
		p.items = append(p.items, models.LineItem{
			Description: description,
			Kind:        lineItemKind,
			Quantity:    lineItemQty,
			Amount:      amount,
		})
	}
	p.state = stateIdle
	p.description = ""
}

func (p *parser) row(i int) []string {
	if i < 0 || i >= len(p.rows) {
		return nil
	}
	return p.rows[i]
}

// grandTotal is the last non-zero total cell scanning from the end. Zero
// cells, such as an empty discount row, count as blank.
func grandTotal(rows [][]string) decimal.Decimal {
	for i := len(rows) - 1; i >= 0; i-- {
		v := cell(rows[i], colTotal)
		if v == "" {
			continue
		}
		if d := parseAmount(v); !d.IsZero() {
			return d
		}
	}
	return decimal.Zero
}

// VAT extracts the 20% tax already included in total.
func VAT(total decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(vatPercent)).Div(decimal.NewFromInt(vatInclusiveDiv))
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

var amountNoise = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".")

// parseAmount reads a numeric cell; anything unparseable is zero.
func parseAmount(v string) decimal.Decimal {
	d, err := decimal.NewFromString(amountNoise.Replace(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// IsSpreadsheetMIME accepts Excel and generic spreadsheet MIME types.
func IsSpreadsheetMIME(mime string) bool {
	mime = strings.ToLower(mime)
	return strings.Contains(mime, "excel") || strings.Contains(mime, "spreadsheet")
}

// IsSheetsURL reports whether text links to an online spreadsheet.
func IsSheetsURL(text string) bool {
	return sheetsURL.MatchString(text)
}
