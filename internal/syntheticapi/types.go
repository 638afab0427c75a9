package syntheticapi

import (
	"fmt"
	"io"
	"strings"
)

const (
	GeneratePath = "/api/generate"
	UploadPath   = "/api/upload"

	DefaultModel  = "claude-2.1"
	DefaultVolume = 10
)

// OutputFormat is the record format the backend renders generated data in.
type OutputFormat string

const (
	FormatCSV  OutputFormat = "csv"
	FormatXML  OutputFormat = "xml"
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// OutputFormats lists the formats in display order.
var OutputFormats = []OutputFormat{FormatCSV, FormatXML, FormatJSON, FormatText}

// Label is the upper-case name shown in the UI.
func (f OutputFormat) Label() string {
	return strings.ToUpper(string(f))
}

// Next returns the format after f, wrapping around.
func (f OutputFormat) Next() OutputFormat {
	for i, of := range OutputFormats {
		if of == f {
			return OutputFormats[(i+1)%len(OutputFormats)]
		}
	}
	return FormatCSV
}

// ParseOutputFormat accepts a label or value in any case.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, of := range OutputFormats {
		if of == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// GenerateRequest is the JSON body of POST /api/generate.
type GenerateRequest struct {
	OutputFormat OutputFormat       `json:"output_format"`
	Prompt       string             `json:"prompt"`
	Volume       int                `json:"volume"`
	Parameters   GenerateParameters `json:"parameters"`
}

type GenerateParameters struct {
	SelectedModel string `json:"selectedModel"`
}

// Upload is a file handed to POST /api/upload.
type Upload struct {
	Name    string
	Content io.Reader
}

// RawBody is an undecoded response body. Its shape is not fixed across backend
// versions, so it is only interpreted by Normalize.
type RawBody []byte

// ValidationDetail is one entry of a 422 "detail" list.
type ValidationDetail struct {
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
	Loc  []string `json:"loc"`
}
