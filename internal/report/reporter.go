// Package report emits the fire-and-forget incident record when a
// mitigation is first applied. Failures are swallowed; the side channel
// must never affect scanning.
package report

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
)

// Severity labels derived from category and confidence
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Reporter composes and sends incident records
type Reporter struct {
	sender    remote.IncidentSender
	sessionID string
	timeout   time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewReporter creates a reporter with a fresh session identifier
func NewReporter(sender remote.IncidentSender, log *zap.Logger) *Reporter {
	return &Reporter{
		sender:    sender,
		sessionID: uuid.NewString(),
		timeout:   10 * time.Second,
		now:       time.Now,
		log:       log,
	}
}

// SessionID returns the identifier generated at startup
func (r *Reporter) SessionID() string { return r.sessionID }

// Incident describes a mitigation the reporter should record
type Incident struct {
	Decision   model.Decision
	PageURL    string
	PageTitle  string
	ElementTag string
	Content    string
}

// Report sends the record asynchronously. It returns immediately; the
// response is ignored and errors are logged at low verbosity only.
func (r *Reporter) Report(inc Incident) {
	rec := r.compose(inc)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.sender.SendIncident(ctx, rec); err != nil {
			r.log.Warn("incident report failed", zap.Error(err))
		}
	}()
}

// compose builds the wire record
func (r *Reporter) compose(inc Incident) remote.Incident {
	d := inc.Decision
	return remote.Incident{
		Category:   d.Category,
		Summary:    d.Title,
		Reason:     d.Reason,
		Guidance:   d.WhatToDo,
		PageURL:    inc.PageURL,
		SourceHost: hostOf(inc.PageURL),
		Excerpt:    content.Excerpt(inc.Content),
		Severity:   Severity(d.Category, d.Confidence),
		Timestamp:  r.now().UTC().Format(time.RFC3339),
		SessionID:  r.sessionID,
		ElementTag: inc.ElementTag,
		PageTitle:  inc.PageTitle,
	}
}

// Severity derives the label from category and confidence
func Severity(category model.Category, confidence int) string {
	switch category {
	case model.CategoryScam, model.CategoryFraud:
		return SeverityHigh
	case model.CategoryExplicitContent, model.CategoryExplicitImage, model.CategoryViolent:
		if confidence >= 60 {
			return SeverityHigh
		}
		return SeverityMedium
	}
	switch {
	case confidence >= 85:
		return SeverityHigh
	case confidence <= 45:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
