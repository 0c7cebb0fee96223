package compare

import "fmt"

// Formatter renders a comparison set for one output channel.
type Formatter interface {
	Format(set *ComparisonSet) (string, error)
}

// GetFormatterByName resolves an output format name to a formatter.
func GetFormatterByName(name string) (Formatter, error) {
	switch name {
	case "", "table":
		return &TableFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, csv or json)", name)
	}
}
