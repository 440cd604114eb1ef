// Package explain resolves the educational explanation shown when a
// user interacts with a mitigated element. The fetch is lazy: most
// mitigations are never interacted with, so the cost is paid per
// interaction, not per mitigation.
package explain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
)

// Request carries the minimum evidence retained on a Decision
type Request struct {
	Category        model.Category
	OriginalContent string
	ImageContext    *model.ImageContext
	IsImage         bool
}

// Fetcher resolves explanations, falling back to canned text on any
// remote failure. It never returns an error: the user always sees
// something.
type Fetcher struct {
	explainer remote.Explainer
	log       *zap.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(explainer remote.Explainer, log *zap.Logger) *Fetcher {
	return &Fetcher{explainer: explainer, log: log}
}

// Fetch issues a single educational-reason call and returns the
// explanation, or the deterministic per-category fallback when the
// call fails
func (f *Fetcher) Fetch(ctx context.Context, req Request) remote.Explanation {
	if f.explainer == nil {
		return Fallback(req.Category)
	}
	wire := remote.ExplainRequest{
		Category:       req.Category,
		BlockedContent: req.OriginalContent,
		IsImage:        req.IsImage,
	}
	if req.IsImage && req.ImageContext != nil {
		wire.Context = imageEvidence(req.ImageContext)
		if wire.BlockedContent == "" {
			wire.BlockedContent = wire.Context
		}
	}

	e, err := f.explainer.EducationalReason(ctx, wire)
	if err != nil {
		f.log.Warn("educational fetch failed; using fallback",
			zap.String("category", string(req.Category)), zap.Error(err))
		return Fallback(req.Category)
	}
	if e.Title == "" && e.Reason == "" {
		return Fallback(req.Category)
	}
	return e
}

// imageEvidence renders an image context as prompt context
func imageEvidence(ic *model.ImageContext) string {
	if ic.Evidence != "" {
		return fmt.Sprintf("flagged by %s: %s", ic.Source, ic.Evidence)
	}
	return fmt.Sprintf("flagged by %s (confidence %d)", ic.Source, ic.Confidence)
}

// fallbacks are the deterministic per-category explanations used when
// the remote endpoint is unreachable
var fallbacks = map[model.Category]remote.Explanation{
	model.CategoryProfanity: {
		Title:    "Strong language hidden",
		Reason:   "This content contained strong language.",
		WhatToDo: "You can keep scrolling. You do not have to engage with it.",
	},
	model.CategoryHateSpeech: {
		Title:    "Hateful language hidden",
		Reason:   "This content attacked people for who they are.",
		WhatToDo: "Hate has no place here. Consider reporting the account to the platform.",
	},
	model.CategoryExplicitContent: {
		Title:    "Explicit content hidden",
		Reason:   "This content referenced adult material.",
		WhatToDo: "This kind of content is not meant for you. It is okay to close the page.",
	},
	model.CategoryExplicitImage: {
		Title:    "Image hidden",
		Reason:   "This image looked explicit or unsafe.",
		WhatToDo: "The image stays hidden to protect you. Keep scrolling.",
	},
	model.CategorySexualConversation: {
		Title:    "Inappropriate request hidden",
		Reason:   "This message asked for intimate photos or conversation.",
		WhatToDo: "You never owe anyone photos. Block the sender and tell a trusted adult.",
	},
	model.CategoryPredatory: {
		Title:    "Unsafe message hidden",
		Reason:   "This message used wording adults use to gain a child's trust in secret.",
		WhatToDo: "Never keep online friendships secret. Show this to a trusted adult.",
	},
	model.CategoryViolent: {
		Title:    "Violent content hidden",
		Reason:   "This content threatened or celebrated violence.",
		WhatToDo: "Do not reply. Tell a trusted adult and report it to the platform.",
	},
	model.CategoryHarassment: {
		Title:    "Harassing message hidden",
		Reason:   "This message was designed to humiliate someone.",
		WhatToDo: "Nobody deserves this. Block the sender and keep evidence.",
	},
	model.CategorySelfHarm: {
		Title:    "Let's pause for a moment",
		Reason:   "This content mentioned self-harm.",
		WhatToDo: "You are not alone. Please talk to someone you trust right now.",
	},
	model.CategoryAlcoholDrugs: {
		Title:    "Substance-related content hidden",
		Reason:   "This content promoted alcohol or drugs.",
		WhatToDo: "Offers like this are unsafe and often illegal. Do not respond.",
	},
	model.CategoryScam: {
		Title:    "Possible scam hidden",
		Reason:   "This content followed a common scam pattern.",
		WhatToDo: "Real prizes never ask you to pay or move to a private chat. Do not click links.",
	},
	model.CategoryFraud: {
		Title:    "Credential request hidden",
		Reason:   "This content asked for a password or OTP code.",
		WhatToDo: "Never share OTPs or passwords with anyone, ever.",
	},
}

var genericFallback = remote.Explanation{
	Title:    "Content hidden",
	Reason:   "This content looked unsafe.",
	WhatToDo: "It stays hidden to protect you. Keep scrolling.",
}

// Fallback returns the canned explanation for a category
func Fallback(category model.Category) remote.Explanation {
	if e, ok := fallbacks[category]; ok {
		return e
	}
	return genericFallback
}
