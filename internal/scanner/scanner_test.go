package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/hostprofile"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
)

type fakeClassifier struct {
	mu     sync.Mutex
	batches [][]string
	images  []remote.ImageRequest

	decide func(content string) model.Decision
	short  int
	err    error
	imgDec model.Decision
	imgErr error
}

func (f *fakeClassifier) AnalyzeBatch(_ context.Context, contents []string) ([]model.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(contents))
	copy(cp, contents)
	f.batches = append(f.batches, cp)
	if f.err != nil {
		return nil, f.err
	}
	n := len(contents) - f.short
	if n < 0 {
		n = 0
	}
	out := make([]model.Decision, 0, n)
	for i := 0; i < n; i++ {
		if f.decide != nil {
			out = append(out, f.decide(contents[i]))
		} else {
			out = append(out, model.SafeDecision())
		}
	}
	return out, nil
}

func (f *fakeClassifier) AnalyzeImage(_ context.Context, req remote.ImageRequest) (model.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, req)
	if f.imgErr != nil {
		return model.Decision{}, f.imgErr
	}
	if f.imgDec.Category != "" {
		return f.imgDec, nil
	}
	return model.SafeDecision(), nil
}

func (f *fakeClassifier) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeClassifier) imageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images)
}

type fakeExplainer struct {
	mu    sync.Mutex
	calls int
	resp  remote.Explanation
	err   error
}

func (f *fakeExplainer) EducationalReason(_ context.Context, _ remote.ExplainRequest) (remote.Explanation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func (f *fakeExplainer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSender struct{ ch chan remote.Incident }

func newFakeSender() *fakeSender {
	return &fakeSender{ch: make(chan remote.Incident, 16)}
}

func (f *fakeSender) SendIncident(_ context.Context, inc remote.Incident) error {
	f.ch <- inc
	return nil
}

func (f *fakeSender) wait(t *testing.T) remote.Incident {
	t.Helper()
	select {
	case inc := <-f.ch:
		return inc
	case <-time.After(2 * time.Second):
		t.Fatal("no incident arrived")
		return remote.Incident{}
	}
}

type fakePresenter struct {
	mu      sync.Mutex
	loading int
	shown   []remote.Explanation
	done    chan remote.Explanation
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{done: make(chan remote.Explanation, 16)}
}

func (p *fakePresenter) ShowLoading(*dom.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading++
}

func (p *fakePresenter) ShowExplanation(_ *dom.Node, e remote.Explanation) {
	p.mu.Lock()
	p.shown = append(p.shown, e)
	p.mu.Unlock()
	select {
	case p.done <- e:
	default:
	}
}

func (p *fakePresenter) waitShown(t *testing.T) remote.Explanation {
	t.Helper()
	select {
	case e := <-p.done:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no explanation was shown")
		return remote.Explanation{}
	}
}

type harness struct {
	doc *dom.Document
	sc  *Scanner
	fc  *fakeClassifier
	fe  *fakeExplainer
	fs  *fakeSender
	fp  *fakePresenter
	now time.Time
}

func newHarness(t *testing.T, body string, mutate func(*hostprofile.Profile)) *harness {
	t.Helper()
	doc, err := dom.Parse("https://example.com/feed",
		"<html><head><title>Feed</title></head><body><main>"+body+"</main></body></html>")
	require.NoError(t, err)

	profile := hostprofile.Generic()
	profile.Debounce = 0
	profile.Cooldown = 0
	if mutate != nil {
		mutate(&profile)
	}

	h := &harness{
		doc: doc,
		fc:  &fakeClassifier{},
		fe:  &fakeExplainer{resp: remote.Explanation{Title: "T", Reason: "R", WhatToDo: "W"}},
		fs:  newFakeSender(),
		fp:  newFakePresenter(),
		now: time.Unix(1_700_000_000, 0),
	}
	h.sc = New(doc, Options{
		Profile:    &profile,
		Classifier: h.fc,
		Explainer:  h.fe,
		Sender:     h.fs,
		Presenter:  h.fp,
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return h.now },
	})
	t.Cleanup(h.sc.Close)
	return h
}

func (h *harness) main(t *testing.T) *dom.Node {
	t.Helper()
	m := dom.Query(h.doc.Body(), "main")
	require.NotNil(t, m)
	return m
}

func (h *harness) append(t *testing.T, fragment string) {
	t.Helper()
	_, err := h.doc.AppendHTML(h.main(t), fragment)
	require.NoError(t, err)
}

func (h *harness) byID(t *testing.T, id string) *dom.Node {
	t.Helper()
	n := dom.Query(h.doc.Body(), "#"+id)
	require.NotNil(t, n, "element #%s not found", id)
	return n
}

func flagContaining(substr string, cat model.Category) func(string) model.Decision {
	return func(content string) model.Decision {
		if strings.Contains(strings.ToLower(content), substr) {
			return model.Decision{Safe: false, Category: cat, Confidence: 88}
		}
		return model.SafeDecision()
	}
}

func assertMitigated(t *testing.T, h *harness, n *dom.Node, cat model.Category) {
	t.Helper()
	assert.True(t, n.HasClass(blockedClass), "blocked class missing")
	assert.Equal(t, "true", n.AttrValue(markerAttr))
	assert.Equal(t, string(cat), n.AttrValue(categoryAttr))
	val, important, set := n.Style("filter")
	require.True(t, set, "inline filter missing")
	assert.Equal(t, blurFilter, val)
	assert.True(t, important, "filter must be !important")
	require.NotNil(t, h.sc.Registry().Get(n), "registry entry missing")
}

func TestInstantPathMitigatesInsertedText(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)

	bad := h.byID(t, "bad")
	assertMitigated(t, h, bad, model.CategoryProfanity)
	assert.Equal(t, 0, h.fc.batchCount(), "instant path must not call the classifier")

	m := h.sc.Registry().Get(bad)
	assert.Equal(t, "you are a bitch", m.Decision.OriginalContent)
}

func TestInstantPathIsIdempotent(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")
	first := h.sc.Registry().Get(bad)
	require.NotNil(t, first)

	// Re-running the tick and re-delivering the content changes nothing.
	require.NoError(t, h.sc.ScanTick(context.Background()))
	assert.Same(t, first, h.sc.Registry().Get(bad))
	assert.Equal(t, 1, h.sc.Registry().Len())
}

func TestMinLengthBoundary(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="four">fuck</p>`)
	assert.Nil(t, h.sc.Registry().Get(h.byID(t, "four")),
		"4 runes is below the classification floor")

	h.append(t, `<p id="five">bitch</p>`)
	assertMitigated(t, h, h.byID(t, "five"), model.CategoryProfanity)
}

func TestSelfBlindness(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<div data-pageguard-ui="true"><p id="own">you are a bitch</p></div>`)
	require.NoError(t, h.sc.ScanTick(context.Background()))

	assert.Equal(t, 0, h.sc.Registry().Len())
	assert.Equal(t, 0, h.fc.batchCount(), "own UI must never reach the classifier")
}

func TestDeferredBatchMitigates(t *testing.T) {
	h := newHarness(t, `<p id="a">a perfectly ordinary message about gardening</p>`, nil)
	h.fc.decide = flagContaining("gardening", model.CategoryScam)

	require.NoError(t, h.sc.ScanTick(context.Background()))

	assertMitigated(t, h, h.byID(t, "a"), model.CategoryScam)
	assert.Equal(t, 1, h.fc.batchCount())
}

func TestCacheHitSkipsClassifier(t *testing.T) {
	h := newHarness(t, `<p id="a">a perfectly ordinary message about gardening</p>`, nil)
	h.fc.decide = flagContaining("gardening", model.CategoryScam)

	require.NoError(t, h.sc.ScanTick(context.Background()))
	require.Equal(t, 1, h.fc.batchCount())

	// Same content arriving later resolves through the cache on the
	// instant path, without another remote call.
	h.append(t, `<p id="b">a perfectly ordinary message about gardening</p>`)

	assertMitigated(t, h, h.byID(t, "b"), model.CategoryScam)
	assert.Equal(t, 1, h.fc.batchCount())
}

func TestShortResponseLeavesUncoveredUnmitigated(t *testing.T) {
	h := newHarness(t,
		`<p id="a">first unremarkable message for the classifier</p>`+
			`<p id="b">second unremarkable message for the classifier</p>`, nil)
	h.fc.decide = func(string) model.Decision {
		return model.Decision{Safe: false, Category: model.CategoryScam, Confidence: 90}
	}
	h.fc.short = 1

	require.NoError(t, h.sc.ScanTick(context.Background()))

	// One of the two positions was uncovered; exactly one mitigation.
	assert.Equal(t, 1, h.sc.Registry().Len())

	// The uncovered candidate was still marked inspected: no retry loop.
	require.NoError(t, h.sc.ScanTick(context.Background()))
	assert.Equal(t, 1, h.fc.batchCount())
}

func TestTransportErrorIsSafeUnknown(t *testing.T) {
	h := newHarness(t, `<p id="a">nothing special in this sentence at all</p>`, nil)
	h.fc.err = errors.New("service unavailable")

	require.NoError(t, h.sc.ScanTick(context.Background()))

	assert.Equal(t, 0, h.sc.Registry().Len(), "errors never mitigate")
	require.NoError(t, h.sc.ScanTick(context.Background()))
	assert.Equal(t, 1, h.fc.batchCount(), "failed candidates are not retried")
}

func TestNoNestedMitigations(t *testing.T) {
	h := newHarness(t, "", nil)
	h.fc.decide = flagContaining("neutral", model.CategoryScam)

	h.append(t, `<div id="outer"><p id="inner">you are a bitch</p><span id="side">extra neutral words here</span></div>`)
	require.Equal(t, 1, h.sc.Registry().Len(), "instant path mitigates the paragraph")

	require.NoError(t, h.sc.ScanTick(context.Background()))

	assert.Nil(t, h.sc.Registry().Get(h.byID(t, "outer")),
		"a container around an existing mitigation must not be mitigated")
	assertMitigated(t, h, h.byID(t, "inner"), model.CategoryProfanity)
	assertMitigated(t, h, h.byID(t, "side"), model.CategoryScam)
}

func TestDuplicateTextKeepsDescendant(t *testing.T) {
	h := newHarness(t, `<div id="outer"><p id="inner">one specific sentence about sailing boats</p></div>`, nil)
	h.fc.decide = flagContaining("sailing", model.CategoryScam)

	require.NoError(t, h.sc.ScanTick(context.Background()))

	assertMitigated(t, h, h.byID(t, "inner"), model.CategoryScam)
	assert.Nil(t, h.sc.Registry().Get(h.byID(t, "outer")))
}

func TestNeverBlockInteractiveControls(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<nav><p id="navbad">you are a bitch</p></nav>`)
	h.append(t, `<button id="btn">you are a bitch</button>`)
	require.NoError(t, h.sc.ScanTick(context.Background()))

	assert.Nil(t, h.sc.Registry().Get(h.byID(t, "navbad")))
	assert.Nil(t, h.sc.Registry().Get(h.byID(t, "btn")))
}

func TestCharacterDataRewriteRescans(t *testing.T) {
	h := newHarness(t, `<p id="x">a perfectly nice message</p>`, nil)

	require.NoError(t, h.sc.ScanTick(context.Background()))
	x := h.byID(t, "x")
	require.Nil(t, h.sc.Registry().Get(x))

	// The platform rewrites the text in place.
	x.Children()[0].SetText("you are a bitch")

	assertMitigated(t, h, x, model.CategoryProfanity)
}

func TestCooldownSkipsEpoch(t *testing.T) {
	h := newHarness(t, `<p id="a">first message that needs the classifier</p>`, func(p *hostprofile.Profile) {
		p.Cooldown = 2 * time.Second
	})

	require.NoError(t, h.sc.ScanTick(context.Background()))
	require.Equal(t, 1, h.fc.batchCount())

	h.append(t, `<p id="b">second message that needs the classifier</p>`)
	require.NoError(t, h.sc.ScanTick(context.Background()))
	assert.Equal(t, 1, h.fc.batchCount(), "tick inside cooldown is a no-op")

	h.now = h.now.Add(3 * time.Second)
	require.NoError(t, h.sc.ScanTick(context.Background()))
	assert.Equal(t, 2, h.fc.batchCount())
}

func TestIncidentReportedOnce(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)

	inc := h.fs.wait(t)
	assert.Equal(t, model.CategoryProfanity, inc.Category)
	assert.Equal(t, "https://example.com/feed", inc.PageURL)
	assert.Equal(t, "example.com", inc.SourceHost)
	assert.Equal(t, "Feed", inc.PageTitle)
	assert.Equal(t, "p", inc.ElementTag)
	assert.NotEmpty(t, inc.SessionID)
	assert.NotEmpty(t, inc.Timestamp)

	// Further ticks must not re-report the same element.
	require.NoError(t, h.sc.ScanTick(context.Background()))
	select {
	case extra := <-h.fs.ch:
		t.Fatalf("unexpected second incident: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSelfHarmShowsFixedGuidance(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="sad">sometimes i want to kill myself</p>`)
	sad := h.byID(t, "sad")
	assertMitigated(t, h, sad, model.CategorySelfHarm)

	h.doc.DispatchEvent(sad, "pointerdown")

	e := h.fp.waitShown(t)
	assert.Contains(t, e.WhatToDo, "1553", "crisis hotline must be present")
	assert.Equal(t, 0, h.fe.callCount(), "self-harm never consults the explainer")
}

func TestExplanationFetchedOncePerElement(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")

	h.doc.DispatchEvent(bad, "pointerdown")
	first := h.fp.waitShown(t)
	assert.Equal(t, remote.Explanation{Title: "T", Reason: "R", WhatToDo: "W"}, first)
	assert.Equal(t, 1, h.fe.callCount())

	// Dismiss keeps the blur; the next interaction reuses the stored text.
	h.sc.Dismiss(bad)
	assertMitigated(t, h, bad, model.CategoryProfanity)

	h.doc.DispatchEvent(bad, "pointerdown")
	second := h.fp.waitShown(t)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.fe.callCount(), "explanation is fetched once per session")
}

func TestRevealOnAcknowledge(t *testing.T) {
	h := newHarness(t, "", nil)
	h.sc.cfg.Scanner.RevealOnAcknowledge = true

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")
	require.NotNil(t, h.sc.Registry().Get(bad))

	h.sc.Dismiss(bad)

	assert.False(t, bad.HasClass(blockedClass))
	assert.False(t, bad.HasAttr(markerAttr))
	_, _, set := bad.Style("filter")
	assert.False(t, set)
	assert.Nil(t, h.sc.Registry().Get(bad))
}

func TestMitigatedEventsAreSwallowed(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")

	pageSawClick := false
	h.main(t).AddEventListener("click", false, func(*dom.Event) { pageSawClick = true })

	ev := h.doc.DispatchEvent(bad, "click")
	assert.True(t, ev.DefaultPrevented())
	assert.False(t, pageSawClick, "the page's own handlers must not fire")
}

func TestImageDomainBlockedInstantly(t *testing.T) {
	h := newHarness(t, "", func(p *hostprofile.Profile) {
		p.MediaWrapperClasses = []string{"media-wrapper"}
	})

	h.append(t, `<div class="media-wrapper"><img id="img" src="https://pornhub.com/x.jpg" width="300" height="300"></div>`)

	img := h.byID(t, "img")
	assertMitigated(t, h, img, model.CategoryExplicitImage)
	assert.Equal(t, "false", img.AttrValue("draggable"))

	m := h.sc.Registry().Get(img)
	require.NotNil(t, m.Wrapper)
	val, important, set := m.Wrapper.Style("filter")
	require.True(t, set, "wrapper must carry the filter too")
	assert.Equal(t, blurFilter, val)
	assert.True(t, important)

	assert.Empty(t, m.Decision.OriginalContent, "image decisions carry no original content")
	require.NotNil(t, m.Decision.ImageContext)
	assert.Equal(t, model.ImageSourcePornDomain, m.Decision.ImageContext.Source)
}

func TestAnchorWrappedImageDoesNotNavigate(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<a href="https://example.com/out"><img id="img" src="https://pornhub.com/x.jpg" width="300" height="300"><span id="caption">a caption</span></a>`)

	img := h.byID(t, "img")
	require.NotNil(t, h.sc.Registry().Get(img))

	ev := h.doc.DispatchEvent(img, "click")
	assert.True(t, ev.DefaultPrevented(), "click on the blocked image is swallowed")

	other := h.doc.DispatchEvent(h.byID(t, "caption"), "click")
	assert.False(t, other.DefaultPrevented(), "the rest of the anchor keeps working")
}

func TestDeferredImageClassification(t *testing.T) {
	h := newHarness(t, `<img id="img" src="https://cdn.example.com/photos/cat.jpg" width="300" height="300">`, nil)
	h.fc.imgDec = model.Decision{Safe: false, Category: model.CategoryExplicitImage, Confidence: 83}

	require.NoError(t, h.sc.ScanTick(context.Background()))

	img := h.byID(t, "img")
	assertMitigated(t, h, img, model.CategoryExplicitImage)
	assert.Equal(t, 1, h.fc.imageCount())

	m := h.sc.Registry().Get(img)
	require.NotNil(t, m.Decision.ImageContext)
	assert.Equal(t, model.ImageSourceNSFWModel, m.Decision.ImageContext.Source)
}

func TestSmallImagesAreSkipped(t *testing.T) {
	h := newHarness(t, `<img id="icon" src="https://cdn.example.com/photos/icon.jpg" width="16" height="16">`, nil)

	require.NoError(t, h.sc.ScanTick(context.Background()))

	assert.Equal(t, 0, h.fc.imageCount(), "icon-sized images are never classified")
	assert.Equal(t, 0, h.sc.Registry().Len())
}

func TestMaintainerPrunesDisconnected(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")
	require.Equal(t, 1, h.sc.Registry().Len())

	bad.Remove()
	h.sc.Maintain()

	assert.Equal(t, 0, h.sc.Registry().Len())
}

func TestMaintainerReassertsStrippedTreatment(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")

	// Hostile rewrite: the platform strips the class and the inline blur.
	bad.SetAttribute("class", "")
	bad.RemoveStyle("filter")

	h.sc.Maintain()

	assert.True(t, bad.HasClass(blockedClass))
	val, important, set := bad.Style("filter")
	require.True(t, set)
	assert.Equal(t, blurFilter, val)
	assert.True(t, important)
}

func TestMaintainerFreesRewrittenSlots(t *testing.T) {
	h := newHarness(t, `<p id="x">an unremarkable message about trains</p>`, nil)

	require.NoError(t, h.sc.ScanTick(context.Background()))
	require.Equal(t, 1, h.fc.batchCount())

	x := h.byID(t, "x")
	x.Remove()
	h.sc.Maintain()

	// The pruned slot's replacement content is scanned fresh.
	h.fc.mu.Lock()
	h.fc.decide = flagContaining("trains", model.CategoryScam)
	h.fc.mu.Unlock()
	h.append(t, `<p id="y">an unremarkable message about planes</p>`)
	require.NoError(t, h.sc.ScanTick(context.Background()))
	assert.Equal(t, 2, h.fc.batchCount())
}

func TestRebinderReassertsOnViewportEntry(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")
	require.NotNil(t, h.sc.Registry().Get(bad))

	// Park the element far below the fold.
	h.doc.SetLayout(&dom.FixedLayout{
		Rects:   map[*dom.Node]dom.Rect{bad: {Y: 2000, Width: 600, Height: 100}},
		Default: dom.Rect{Width: 600, Height: 20},
	})
	h.doc.SetScroll(0)

	// Recycled offscreen: the class is gone, the marker survives.
	bad.SetAttribute("class", "")
	require.False(t, bad.HasClass(blockedClass))

	h.doc.SetScroll(1700)

	assert.True(t, bad.HasClass(blockedClass), "treatment restored on viewport entry")
}

func TestBatchRespectsCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString(`<p>message number `)
		sb.WriteString(strings.Repeat("x", i+5))
		sb.WriteString(`</p>`)
	}
	h := newHarness(t, sb.String(), nil)

	require.NoError(t, h.sc.ScanTick(context.Background()))

	h.fc.mu.Lock()
	defer h.fc.mu.Unlock()
	require.NotEmpty(t, h.fc.batches)
	for _, b := range h.fc.batches {
		assert.LessOrEqual(t, len(b), 50)
	}
}

func TestCloseStopsScanning(t *testing.T) {
	h := newHarness(t, "", nil)

	h.append(t, `<p id="bad">you are a bitch</p>`)
	bad := h.byID(t, "bad")
	require.NotNil(t, h.sc.Registry().Get(bad))

	h.sc.Close()

	// Mitigations stay applied; new content is ignored.
	assert.True(t, bad.HasClass(blockedClass))
	h.append(t, `<p id="late">you are a bitch</p>`)
	assert.Nil(t, h.sc.Registry().Get(h.byID(t, "late")))
	assert.ErrorIs(t, h.sc.ScanTick(context.Background()), ErrClosed)
}

func TestAmbiguousPrizeClaimTravelsBatchPath(t *testing.T) {
	h := newHarness(t, `<p id="a">Unclaimed reward! Contact our agent to receive it.</p>`, nil)
	h.fc.decide = func(content string) model.Decision {
		if strings.Contains(strings.ToLower(content), "unclaimed reward") {
			return model.Decision{Safe: false, Category: model.CategoryScam, Confidence: 70}
		}
		return model.SafeDecision()
	}

	require.NoError(t, h.sc.ScanTick(context.Background()))

	// No pattern tier owns bare prize wording: exactly one remote batch
	// call, and the mitigation carries the remote confidence.
	a := h.byID(t, "a")
	assertMitigated(t, h, a, model.CategoryScam)
	assert.Equal(t, 1, h.fc.batchCount())
	assert.Equal(t, 70, h.sc.Registry().Get(a).Decision.Confidence)

	// The remote decision was cached under the content hash: the same
	// text arriving later resolves on the instant path.
	h.append(t, `<p id="b">Unclaimed reward! Contact our agent to receive it.</p>`)
	assertMitigated(t, h, h.byID(t, "b"), model.CategoryScam)
	assert.Equal(t, 1, h.fc.batchCount())
}
