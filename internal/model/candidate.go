package model

import "github.com/pageguard/pageguard/internal/dom"

// NodeKind distinguishes the two kinds of scannable content
type NodeKind string

const (
	KindText  NodeKind = "text"
	KindImage NodeKind = "image"
)

// CandidateTextCap bounds the extracted text sent for classification
const CandidateTextCap = 1000

// Candidate is an in-document element selected for classification.
// Created by the planner, consumed by the matchers and the dispatcher,
// discarded after its decision is recorded.
type Candidate struct {
	Node    *dom.Node // Live element reference
	Kind    NodeKind  // text or image
	Content string    // Extracted content, capped to CandidateTextCap for text
	Hash    uint64    // Content hash (text) or source-URL hash (image)
}
