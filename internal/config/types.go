package config

// Format is a report output format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

var ValidFormats = map[Format]bool{
	FormatJSON:  true,
	FormatTable: true,
	FormatCSV:   true,
}

var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}
