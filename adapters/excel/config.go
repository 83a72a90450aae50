package excel

// PreferredSheet is the sheet read when no sheet name is configured
const PreferredSheet = "site"

// ExcelConfig holds configuration for workbook reading
type ExcelConfig struct {
	Sheet          string         `json:"sheet"`
	CoercionConfig CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for wafer test exports
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: DefaultCoercionConfig(),
	}
}
