package compare

import (
	json "github.com/goccy/go-json"
)

// JSONFormatter formats comparison results as JSON.
type JSONFormatter struct {
	Pretty bool // if true, format with indentation
}

// Format generates JSON output for comparison results.
func (jf *JSONFormatter) Format(set *ComparisonSet) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(set, "", "  ")
	} else {
		data, err = json.Marshal(set)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
