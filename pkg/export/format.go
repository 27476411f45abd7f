package export

// Format names an output rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	// FormatPDF is declared for clients enumerating capabilities but has no
	// renderer yet.
	FormatPDF Format = "pdf"
)

// Supported reports whether a renderer exists for the format.
func (f Format) Supported() bool {
	switch f {
	case FormatText, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// Formats lists every declared format, supported or not.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatCSV, FormatPDF}
}
