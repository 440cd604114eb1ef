package match

import (
	"net/url"
	"path"
	"strings"

	"github.com/pageguard/pageguard/internal/model"
)

// adultDomains are known adult-content hosts; suffix matched
var adultDomains = []string{
	"pornhub.com", "xvideos.com", "xnxx.com", "xhamster.com",
	"redtube.com", "youporn.com", "spankbang.com", "motherless.com",
	"rule34.xxx", "e621.net", "chaturbate.com", "stripchat.com",
	"onlyfans.com", "brazzers.com", "bangbros.com", "hanime.tv",
}

// explicitKeywords flag URLs, filenames and alt text
var explicitKeywords = []string{
	"porn", "xxx", "nsfw", "nude", "naked", "hentai", "boobs", "tits",
	"blowjob", "anal", "milf", "bdsm", "fetish", "erotic", "topless",
	"lingerie-nude", "sextape",
}

// explicitContextPhrases flag surrounding text near an image
var explicitContextPhrases = []string{
	"nsfw", "18+ only", "adults only", "explicit photo", "leaked nudes",
	"onlyfans content", "uncensored version",
}

// imageTier inspects image URL and metadata. Every hit produces
// explicit_image with an evidence record.
func imageTier() *Matcher {
	return &Matcher{
		ID:        "image_metadata",
		Priority:  110,
		AppliesTo: ImageOnly,
		Decide:    decideImage,
	}
}

func decideImage(in Input) (model.Decision, bool) {
	src := strings.TrimSpace(in.SrcURL)
	if src == "" {
		return model.Decision{}, false
	}
	parsed, err := url.Parse(src)
	if err != nil {
		return model.Decision{}, false
	}
	host := strings.ToLower(parsed.Hostname())
	lowerPath := strings.ToLower(parsed.Path)
	filename := strings.ToLower(path.Base(parsed.Path))

	// (a) known adult-content domain
	for _, d := range adultDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return imageDecision(99, model.ImageSourcePornDomain, d), true
		}
	}

	// (b) explicit keyword in the URL path (directories only; the
	// filename has its own weaker check below)
	if kw, ok := pathKeyword(path.Dir(lowerPath)); ok {
		return imageDecision(95, model.ImageSourceExplicitURL, kw), true
	}

	// (c) explicit keyword in the filename, word-boundary anchored so
	// "analysis.jpg" does not trip "anal"
	if kw, ok := containsAnyWord(filename, explicitKeywords); ok {
		return imageDecision(85, model.ImageSourceSuspiciousFilename, kw), true
	}

	// (d) explicit keyword in alt text
	alt := trimmed(in.Alt)
	if kw, ok := containsAnyWord(alt, explicitKeywords); ok {
		return imageDecision(90, model.ImageSourceExplicitAlt, kw), true
	}

	// (e) explicit phrase in surrounding text
	surrounding := trimmed(in.Text)
	if ph, ok := containsAnyPhrase(surrounding, explicitContextPhrases); ok {
		return imageDecision(85, model.ImageSourceExplicitContext, ph), true
	}

	return model.Decision{}, false
}

// pathKeyword requires the keyword as a path segment boundary so that
// benign names ("important.jpg" contains no segment "porn") do not trip
func pathKeyword(lowerPath string) (string, bool) {
	for _, kw := range explicitKeywords {
		if containsWord(lowerPath, kw) {
			return kw, true
		}
	}
	return "", false
}

func imageDecision(confidence int, source model.ImageSource, evidence string) model.Decision {
	return model.Decision{
		Safe:       false,
		Category:   model.CategoryExplicitImage,
		Confidence: confidence,
		Title:      "Image hidden",
		Reason:     "This image comes from a source associated with explicit content.",
		WhatToDo:   "This image was hidden to protect you. It is okay to keep scrolling.",
		ImageContext: &model.ImageContext{
			Source:     source,
			Evidence:   evidence,
			Confidence: confidence,
		},
	}
}
