// Package remote speaks to the classification service. The dedicated
// service is authoritative for ambiguous content; an OpenAI-compatible
// endpoint can stand in for it where the service is not deployed.
package remote

import (
	"context"

	"github.com/pageguard/pageguard/internal/model"
)

// BatchLimit caps items per analyze-batch call
const BatchLimit = 50

// ImageRequest carries either encoded bytes or a source URL, never both
type ImageRequest struct {
	Base64 string `json:"image_base64,omitempty"`
	URL    string `json:"image_url,omitempty"`
}

// ExplainRequest asks for the educational explanation of a decision
type ExplainRequest struct {
	Category       model.Category `json:"category"`
	BlockedContent string         `json:"blocked_content"`
	Context        string         `json:"context,omitempty"`
	IsImage        bool           `json:"is_image"`
}

// Explanation is the human-readable result of an explain call
type Explanation struct {
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	WhatToDo string `json:"what_to_do"`
}

// Incident is the fire-and-forget record emitted on first mitigation
type Incident struct {
	Category   model.Category `json:"category"`
	Summary    string         `json:"summary"`
	Reason     string         `json:"reason"`
	Guidance   string         `json:"guidance"`
	PageURL    string         `json:"page_url"`
	SourceHost string         `json:"source_host"`
	Excerpt    string         `json:"content_excerpt"`
	Severity   string         `json:"severity"`
	Timestamp  string         `json:"timestamp"` // RFC3339
	SessionID  string         `json:"session_id"`
	ElementTag string         `json:"element_tag,omitempty"`
	PageTitle  string         `json:"page_title,omitempty"`
}

// Classifier abstracts the two classification calls
type Classifier interface {
	// AnalyzeBatch classifies up to BatchLimit texts; the response is
	// positionally aligned with the request
	AnalyzeBatch(ctx context.Context, contents []string) ([]model.Decision, error)

	// AnalyzeImage classifies a single image
	AnalyzeImage(ctx context.Context, req ImageRequest) (model.Decision, error)
}

// Explainer abstracts the educational-explanation call
type Explainer interface {
	EducationalReason(ctx context.Context, req ExplainRequest) (Explanation, error)
}

// IncidentSender abstracts the incident side channel
type IncidentSender interface {
	SendIncident(ctx context.Context, inc Incident) error
}
