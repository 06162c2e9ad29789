package news

import (
	"encoding/json"
	"time"
)

// Record is the document persisted for every successful analysis.
type Record struct {
	Timestamp       string          `json:"timestamp"`
	InputText       string          `json:"input_text"`
	InputTextLength int             `json:"input_text_length"`
	AnalysisResult  json.RawMessage `json:"analysis_result"`
}

// NewRecord keeps the first 1000 characters of text and its full length.
func NewRecord(now time.Time, text string, result json.RawMessage) Record {
	return Record{
		Timestamp:       now.UTC().Format(time.RFC3339Nano),
		InputText:       truncate(text, storedTextLength),
		InputTextLength: runeLen(text),
		AnalysisResult:  result,
	}
}

type probeDocument struct {
	Test      bool   `json:"test"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// ProbeResult reports a store connectivity check.
type ProbeResult struct {
	Success        bool   `json:"success"`
	DocumentID     string `json:"document_id"`
	TotalDocuments int    `json:"total_documents"`
	Message        string `json:"message"`
}
