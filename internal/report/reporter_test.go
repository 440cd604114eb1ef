package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
)

type captureSender struct {
	got  chan remote.Incident
	fail bool
}

func (c *captureSender) SendIncident(_ context.Context, inc remote.Incident) error {
	c.got <- inc
	if c.fail {
		return errors.New("service down")
	}
	return nil
}

func TestSeverityDerivation(t *testing.T) {
	tests := []struct {
		category   model.Category
		confidence int
		want       string
	}{
		{model.CategoryScam, 10, SeverityHigh},
		{model.CategoryFraud, 92, SeverityHigh},
		{model.CategoryExplicitImage, 60, SeverityHigh},
		{model.CategoryViolent, 59, SeverityMedium},
		{model.CategoryProfanity, 95, SeverityHigh},
		{model.CategoryHarassment, 50, SeverityMedium},
		{model.CategoryAlcoholDrugs, 45, SeverityLow},
	}
	for _, tt := range tests {
		got := Severity(tt.category, tt.confidence)
		if got != tt.want {
			t.Errorf("Severity(%s, %d) = %s, want %s", tt.category, tt.confidence, got, tt.want)
		}
	}
}

func TestComposeRecord(t *testing.T) {
	r := NewReporter(&captureSender{}, zap.NewNop())
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	rec := r.compose(Incident{
		Decision: model.Decision{
			Safe: false, Category: model.CategoryProfanity, Confidence: 95,
			Title: "Strong language hidden", Reason: "profanity", WhatToDo: "guidance",
		},
		PageURL:    "https://www.example.com/thread/42",
		PageTitle:  "Some Thread",
		ElementTag: "p",
		Content:    "line one\nline two   " + strings.Repeat("x", 400),
	})

	assert.Equal(t, model.CategoryProfanity, rec.Category)
	assert.Equal(t, "www.example.com", rec.SourceHost)
	assert.Equal(t, SeverityHigh, rec.Severity)
	assert.Equal(t, "2025-06-01T12:00:00Z", rec.Timestamp)
	assert.Equal(t, r.SessionID(), rec.SessionID)
	assert.NotContains(t, rec.Excerpt, "\n")
	assert.LessOrEqual(t, len(rec.Excerpt), 280)
	assert.Equal(t, "p", rec.ElementTag)
	assert.Equal(t, "Some Thread", rec.PageTitle)
}

func TestReportFireAndForget(t *testing.T) {
	sender := &captureSender{got: make(chan remote.Incident, 1), fail: true}
	r := NewReporter(sender, zap.NewNop())

	// Report must not block or surface the failure.
	r.Report(Incident{
		Decision: model.Decision{Category: model.CategoryScam, Confidence: 70},
		PageURL:  "https://example.com",
	})

	select {
	case rec := <-sender.got:
		assert.Equal(t, model.CategoryScam, rec.Category)
	case <-time.After(2 * time.Second):
		t.Fatal("incident never dispatched")
	}
}

func TestSessionIDStablePerReporter(t *testing.T) {
	r := NewReporter(&captureSender{}, zap.NewNop())
	require.NotEmpty(t, r.SessionID())
	assert.Equal(t, r.SessionID(), r.SessionID())

	other := NewReporter(&captureSender{}, zap.NewNop())
	assert.NotEqual(t, r.SessionID(), other.SessionID())
}
