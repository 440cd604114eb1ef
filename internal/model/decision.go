package model

import "github.com/pageguard/pageguard/internal/content"

// Category classifies why a piece of content was flagged
type Category string

const (
	CategoryProfanity          Category = "profanity"
	CategoryHateSpeech         Category = "hate_speech"
	CategoryExplicitContent    Category = "explicit_content"
	CategoryExplicitImage      Category = "explicit_image"
	CategorySexualConversation Category = "sexual_conversation"
	CategoryPredatory          Category = "predatory"
	CategoryViolent            Category = "violent"
	CategoryHarassment         Category = "harassment"
	CategorySelfHarm           Category = "self_harm"
	CategoryAlcoholDrugs       Category = "alcohol_drugs"
	CategoryScam               Category = "scam"
	CategoryFraud              Category = "fraud"
	CategoryUnsafeContent      Category = "unsafe_content"
	CategoryError              Category = "error"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryProfanity, CategoryHateSpeech, CategoryExplicitContent,
		CategoryExplicitImage, CategorySexualConversation, CategoryPredatory,
		CategoryViolent, CategoryHarassment, CategorySelfHarm,
		CategoryAlcoholDrugs, CategoryScam, CategoryFraud,
		CategoryUnsafeContent, CategoryError:
		return true
	}
	return false
}

// ImageSource identifies which image signal produced a flag
type ImageSource string

const (
	ImageSourcePornDomain         ImageSource = "porn_domain"
	ImageSourceExplicitURL        ImageSource = "explicit_url"
	ImageSourceSuspiciousFilename ImageSource = "suspicious_filename"
	ImageSourceExplicitAlt        ImageSource = "explicit_alt"
	ImageSourceExplicitContext    ImageSource = "explicit_context"
	ImageSourceNSFWModel          ImageSource = "nsfw_model"
)

// ImageContext records the minimal evidence for a flagged image
type ImageContext struct {
	Source     ImageSource `json:"source"`               // Which signal fired
	Evidence   string      `json:"evidence,omitempty"`   // Matched domain, keyword, or phrase
	Confidence int         `json:"confidence,omitempty"` // Confidence of the signal that fired
}

// Decision is the outcome of classifying a piece of content
type Decision struct {
	Safe       bool     `json:"safe"`
	Category   Category `json:"category"`
	Confidence int      `json:"confidence"` // 0-100
	Title      string   `json:"title,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	WhatToDo   string   `json:"what_to_do,omitempty"`

	// OriginalContent retains a snippet for the later explanation fetch
	OriginalContent string `json:"original_content,omitempty"`

	// ImageContext is set when the decision concerns an image
	ImageContext *ImageContext `json:"image_context,omitempty"`

	// EducationalFetched is true once the explanation endpoint was consulted
	EducationalFetched bool `json:"educational_fetched,omitempty"`

	// SkipEducationalFetch is true when the category dictates a fixed
	// message (self-harm crisis resources) that must not be replaced
	SkipEducationalFetch bool `json:"skip_educational_fetch,omitempty"`
}

// OriginalContentCap bounds the snippet retained on a Decision
const OriginalContentCap = 500

// ShouldMitigate reports whether this decision justifies mitigating the
// element. Error decisions never cause mitigation.
func (d *Decision) ShouldMitigate() bool {
	return d != nil && !d.Safe && d.Category != CategoryError && d.Category.Valid()
}

// SetOriginalContent stores content capped to OriginalContentCap
// without splitting a rune at the cut
func (d *Decision) SetOriginalContent(s string) {
	d.OriginalContent = content.Truncate(s, OriginalContentCap)
}

// SafeDecision returns the canonical safe verdict
func SafeDecision() Decision {
	return Decision{Safe: true, Category: CategoryUnsafeContent, Confidence: 0}
}

// ErrorDecision returns the verdict used when classification itself failed.
// It must never cause mitigation.
func ErrorDecision(reason string) Decision {
	return Decision{Safe: true, Category: CategoryError, Reason: reason}
}
