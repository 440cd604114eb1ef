package model

import "time"

// Finding is one mitigated element in a page report
type Finding struct {
	Category   Category `json:"category"`
	Confidence int      `json:"confidence"`
	Kind       NodeKind `json:"kind"`
	ElementTag string   `json:"element_tag"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Severity   string   `json:"severity"`
}

// PageReport summarises one scan of one page
type PageReport struct {
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	ScannedAt  time.Time `json:"scanned_at"`
	Findings   []Finding `json:"findings"`
	BatchCalls int64     `json:"batch_calls"`
	ImageCalls int64     `json:"image_calls"`
	SessionID  string    `json:"session_id,omitempty"`
}
