package excel

// DefaultUnzipXMLSizeLimit matches excelize's default: worksheets whose XML is
// larger than this are read from a temp file instead of memory.
const DefaultUnzipXMLSizeLimit int64 = 16 << 20

// ExcelConfig holds configuration for the workbook data source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	// UnzipXMLSizeLimit is passed to excelize; 0 keeps the library default
	UnzipXMLSizeLimit int64 `json:"unzip_xml_size_limit"`
}

// DefaultExcelConfig returns sensible defaults for workbook streaming
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		UnzipXMLSizeLimit: DefaultUnzipXMLSizeLimit,
	}
}
