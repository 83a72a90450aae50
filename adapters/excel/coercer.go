package excel

import (
	"math"
	"strconv"
	"strings"

	"waferplot/domain/measurement"
)

// CellCoercer converts raw sheet text into typed cells with deterministic rules
type CellCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	DecimalComma  bool     `json:"decimal_comma"`  // "1,5" means 1.5 rather than 15
	MissingTokens []string `json:"missing_tokens"` // case-insensitive tokens read as empty
}

// DefaultCoercionConfig returns the rules used by spreadsheet exports
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		DecimalComma:  false,
		MissingTokens: []string{"nan", "#n/a", "n/a", "na", "null", "-"},
	}
}

// NewCellCoercer creates a coercer with the given config
func NewCellCoercer(config CoercionConfig) *CellCoercer {
	return &CellCoercer{config: config}
}

// Coerce classifies one raw cell as empty, number or text
func (c *CellCoercer) Coerce(raw string) measurement.Cell {
	s := strings.TrimSpace(raw)
	if s == "" || c.isMissingToken(s) {
		return measurement.EmptyCell()
	}
	if v, ok := c.tryParseNumeric(s); ok {
		return measurement.NumberCell(v)
	}
	return measurement.TextCell(s)
}

// CoerceRow coerces every cell of a row
func (c *CellCoercer) CoerceRow(raw []string) []measurement.Cell {
	out := make([]measurement.Cell, len(raw))
	for i, s := range raw {
		out[i] = c.Coerce(s)
	}
	return out
}

func (c *CellCoercer) isMissingToken(s string) bool {
	for _, tok := range c.config.MissingTokens {
		if strings.EqualFold(s, tok) {
			return true
		}
	}
	return false
}

// tryParseNumeric parses numbers with parentheses negatives, thousands separators
// and a trailing percent sign. NaN and infinities are rejected.
func (c *CellCoercer) tryParseNumeric(s string) (float64, bool) {
	clean := s

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}
	clean = strings.TrimSuffix(clean, "%")

	if c.config.DecimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}
	clean = strings.ReplaceAll(clean, " ", "")

	if negative {
		clean = "-" + clean
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
