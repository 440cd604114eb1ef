package cli

import (
	"testing"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
)

func TestNewPageScannerWiresAllCollaborators(t *testing.T) {
	ps, err := newPageScanner(model.DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ps.fetcher == nil || ps.classifier == nil || ps.service == nil {
		t.Fatal("Expected fetcher, classifier and service to be wired")
	}
	// Without an encoder every image call degrades to the URL form.
	if ps.encoder == nil {
		t.Fatal("Expected a media encoder for base64-first image classification")
	}
}
