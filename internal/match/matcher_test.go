package match

import (
	"testing"

	"github.com/pageguard/pageguard/internal/model"
)

func textInput(s string) Input {
	return Input{Kind: model.KindText, Text: s, MinLength: 5}
}

func TestTierOrderingSelfHarmFirst(t *testing.T) {
	p := NewPipeline()

	ids := make([]string, 0, len(p.Matchers()))
	for _, m := range p.Matchers() {
		ids = append(ids, m.ID)
	}
	if ids[0] != "self_harm_keywords" {
		t.Fatalf("Expected self-harm tier first, got order %v", ids)
	}

	// Text matching both self-harm and profanity resolves to self-harm.
	d, ok := p.Decide(textInput("fucking hell I want to kill myself"))
	if !ok {
		t.Fatal("Expected a match")
	}
	if d.Category != model.CategorySelfHarm {
		t.Errorf("Expected self_harm to win, got %s", d.Category)
	}
	if d.Confidence != 99 {
		t.Errorf("Expected confidence 99, got %d", d.Confidence)
	}
	if !d.SkipEducationalFetch {
		t.Error("Expected SkipEducationalFetch for self-harm")
	}
	if d.WhatToDo == "" {
		t.Error("Expected built-in crisis guidance")
	}
}

func TestTextTierCategories(t *testing.T) {
	p := NewPipeline()

	tests := []struct {
		text       string
		category   model.Category
		confidence int
	}{
		{"this is fucking absurd", model.CategoryProfanity, 95},
		{"putang ina mo talaga", model.CategoryProfanity, 95},
		{"remember, our little secret okay?", model.CategoryPredatory, 97},
		{"I will kill you tomorrow", model.CategoryViolent, 98},
		{"nobody likes you, kill yourself", model.CategoryHarassment, 96},
		{"everyone hates you loser", model.CategoryHarassment, 96},
		{"hey send nudes please", model.CategorySexualConversation, 95},
		{"check out this porn video", model.CategoryExplicitContent, 95},
		{"buy weed cheap, fast delivery", model.CategoryAlcoholDrugs, 90},
		{"Congratulations you won! contact us on WhatsApp", model.CategoryScam, 85},
		{"please send your OTP to verify", model.CategoryFraud, 92},
	}

	for _, tt := range tests {
		d, ok := p.Decide(textInput(tt.text))
		if !ok {
			t.Errorf("Expected match for %q", tt.text)
			continue
		}
		if d.Category != tt.category {
			t.Errorf("Decide(%q) category = %s, want %s", tt.text, d.Category, tt.category)
		}
		if d.Confidence != tt.confidence {
			t.Errorf("Decide(%q) confidence = %d, want %d", tt.text, d.Confidence, tt.confidence)
		}
		if d.Safe {
			t.Errorf("Decide(%q) returned safe decision", tt.text)
		}
	}
}

func TestUnknownIsNotSafe(t *testing.T) {
	p := NewPipeline()

	if _, ok := p.Decide(textInput("a perfectly ordinary sentence about gardening")); ok {
		t.Error("Expected unknown for benign text")
	}
}

func TestBarePrizeClaimIsUnknown(t *testing.T) {
	p := NewPipeline()

	// Prize wording without a contact channel or payout hook is
	// ambiguous and belongs to the remote classifier.
	if d, ok := p.Decide(textInput("Unclaimed reward! Contact our agent to receive it.")); ok {
		t.Errorf("Expected unknown for bare prize claim, got %s/%d", d.Category, d.Confidence)
	}

	// An explicit off-platform contact channel still trips the tier.
	if _, ok := p.Decide(textInput("claim your prize now, message us on telegram")); !ok {
		t.Error("Expected scam match when a contact channel is named")
	}
}

func TestWordBoundaries(t *testing.T) {
	p := NewPipeline()

	// "class" contains "ass" but must not match; "Scunthorpe" contains a slur substring.
	benign := []string{
		"the class assignment is due", "visit Scunthorpe United",
		"I shitake mushrooms are great", // "shitake" must not hit "shit"
	}
	for _, text := range benign {
		if d, ok := p.Decide(textInput(text)); ok {
			t.Errorf("Expected no match for %q, got %s", text, d.Category)
		}
	}

	if _, ok := p.Decide(textInput("well, SHIT happens!")); !ok {
		t.Error("Expected case-insensitive boundary match")
	}
}

func TestMinLengthFloor(t *testing.T) {
	p := NewPipeline()

	// Exactly min-1 runes: never classified.
	if _, ok := p.Decide(Input{Kind: model.KindText, Text: "fuck", MinLength: 5}); ok {
		t.Error("Expected unknown below the classification floor")
	}
	// At the floor it is classified.
	if _, ok := p.Decide(Input{Kind: model.KindText, Text: "bitch", MinLength: 5}); !ok {
		t.Error("Expected classification at the floor")
	}
}

func TestDateTimeLiteralsUnknown(t *testing.T) {
	p := NewPipeline()

	literals := []string{
		"12/05/2024", "2024-05-12", "5:30 PM", "May 12, 2024",
		"15 minutes ago", "yesterday at 5:30 pm", "3h",
	}
	for _, text := range literals {
		if _, ok := p.Decide(textInput(text)); ok {
			t.Errorf("Expected unknown for date/time literal %q", text)
		}
	}
}

func TestImageTierEvidence(t *testing.T) {
	p := NewPipeline()

	tests := []struct {
		name       string
		in         Input
		source     model.ImageSource
		confidence int
	}{
		{
			"adult domain",
			Input{Kind: model.KindImage, SrcURL: "https://cdn.pornhub.com/abc.jpg"},
			model.ImageSourcePornDomain, 99,
		},
		{
			"explicit url path",
			Input{Kind: model.KindImage, SrcURL: "https://example.com/hentai/pic001.jpg"},
			model.ImageSourceExplicitURL, 95,
		},
		{
			"suspicious filename",
			Input{Kind: model.KindImage, SrcURL: "https://example.com/images/vacation-nsfw-edit.jpg"},
			model.ImageSourceSuspiciousFilename, 85,
		},
		{
			"explicit alt",
			Input{Kind: model.KindImage, SrcURL: "https://example.com/i/1.jpg", Alt: "nude photo"},
			model.ImageSourceExplicitAlt, 90,
		},
		{
			"explicit context",
			Input{Kind: model.KindImage, SrcURL: "https://example.com/i/2.jpg", Text: "uncensored version in comments"},
			model.ImageSourceExplicitContext, 85,
		},
	}

	for _, tt := range tests {
		d, ok := p.Decide(tt.in)
		if !ok {
			t.Errorf("%s: expected match", tt.name)
			continue
		}
		if d.Category != model.CategoryExplicitImage {
			t.Errorf("%s: category = %s, want explicit_image", tt.name, d.Category)
		}
		if d.ImageContext == nil || d.ImageContext.Source != tt.source {
			t.Errorf("%s: wrong image context %+v", tt.name, d.ImageContext)
		}
		if d.Confidence != tt.confidence {
			t.Errorf("%s: confidence = %d, want %d", tt.name, d.Confidence, tt.confidence)
		}
		if d.ImageContext != nil && d.ImageContext.Confidence != tt.confidence {
			t.Errorf("%s: context confidence = %d, want %d", tt.name, d.ImageContext.Confidence, tt.confidence)
		}
	}

	// Neutral social-CDN image: unknown, deferred to the remote model.
	neutral := Input{Kind: model.KindImage, SrcURL: "https://scontent.fbcdn.net/v/photo.jpg", Alt: "friends at the beach"}
	if _, ok := p.Decide(neutral); ok {
		t.Error("Expected unknown for neutral image metadata")
	}
}

func TestFilenameKeywordsAreWordBounded(t *testing.T) {
	p := NewPipeline()

	// "analysis" contains "anal", "canals" contains "anal",
	// "classic" contains no bounded keyword.
	benign := []string{
		"https://example.com/reports/analysis.jpg",
		"https://example.com/travel/venice-canals.png",
		"https://example.com/cars/classic-sedan.jpg",
	}
	for _, src := range benign {
		if d, ok := p.Decide(Input{Kind: model.KindImage, SrcURL: src}); ok {
			t.Errorf("Expected unknown for %q, got %s (%s)", src, d.Category, d.ImageContext.Evidence)
		}
	}

	// Bounded occurrences still match across separators.
	d, ok := p.Decide(Input{Kind: model.KindImage, SrcURL: "https://example.com/images/vacation-nsfw-edit.jpg"})
	if !ok || d.ImageContext.Source != model.ImageSourceSuspiciousFilename {
		t.Errorf("Expected suspicious_filename match, got %+v", d.ImageContext)
	}
}

func TestMatchersArePureAndCountHits(t *testing.T) {
	p := NewPipeline()
	in := textInput("this is fucking absurd")

	d1, _ := p.Decide(in)
	d2, _ := p.Decide(in)
	if d1 != d2 {
		t.Error("Expected deterministic decisions")
	}

	var profanity *Matcher
	for _, m := range p.Matchers() {
		if m.ID == "profanity_words" {
			profanity = m
		}
	}
	if profanity == nil {
		t.Fatal("profanity tier missing")
	}
	if profanity.Hits() != 2 {
		t.Errorf("Expected 2 hits recorded, got %d", profanity.Hits())
	}
}
