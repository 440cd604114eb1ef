package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndVisibleText(t *testing.T) {
	doc, err := Parse("https://example.com/page", `
		<html><head><title>A Page</title></head>
		<body>
			<script>var hidden = 1;</script>
			<p id="first">Hello <b>world</b></p>
		</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "A Page", doc.Title())

	p := Query(doc.Root(), "#first")
	require.NotNil(t, p)
	assert.Equal(t, "Hello world", p.VisibleText())
	assert.NotContains(t, doc.Body().VisibleText(), "hidden")
}

func TestChildListObserverFiresSynchronously(t *testing.T) {
	doc := NewDocument("https://example.com")
	var got []MutationRecord
	doc.Observe(ObserverInit{ChildList: true}, func(recs []MutationRecord) {
		got = append(got, recs...)
	})

	added, err := doc.AppendHTML(doc.Body(), `<div class="post">hi there</div>`)
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Len(t, got, 1)
	assert.Equal(t, ChildList, got[0].Type)
	assert.Same(t, doc.Body(), got[0].Target)
	assert.Same(t, added[0], got[0].AddedNodes[0])
}

func TestCharacterDataObserver(t *testing.T) {
	doc := NewDocument("https://example.com")
	text := doc.CreateTextNode("before")
	p := doc.CreateElement("p")
	doc.Body().Append(p)
	p.Append(text)

	var records []MutationRecord
	doc.Observe(ObserverInit{CharacterData: true}, func(recs []MutationRecord) {
		records = append(records, recs...)
	})

	text.SetText("after")
	require.Len(t, records, 1)
	assert.Equal(t, CharacterData, records[0].Type)
	assert.Equal(t, "before", records[0].OldValue)
	assert.Equal(t, "after", records[0].Target.Text())
}

func TestAttributeMutationsNotDeliveredUnlessRequested(t *testing.T) {
	doc := NewDocument("https://example.com")
	div := doc.CreateElement("div")
	doc.Body().Append(div)

	calls := 0
	doc.Observe(ObserverInit{ChildList: true, CharacterData: true}, func([]MutationRecord) {
		calls++
	})

	div.SetAttribute("data-x", "1")
	div.AddClass("c")
	assert.Zero(t, calls, "attribute churn must not reach a childList observer")
}

func TestInlineStyleImportant(t *testing.T) {
	doc := NewDocument("https://example.com")
	img := doc.CreateElement("img")
	doc.Body().Append(img)

	img.SetStyle("filter", "blur(30px)", true)
	v, important, ok := img.Style("filter")
	require.True(t, ok)
	assert.True(t, important)
	assert.Equal(t, "blur(30px)", v)
	assert.Contains(t, img.AttrValue("style"), "filter: blur(30px) !important")

	// Round-trips through parsing too.
	doc2, err := Parse("u", `<body><img style="filter: blur(30px) !important"></body>`)
	require.NoError(t, err)
	img2 := Query(doc2.Root(), "img")
	_, important2, ok2 := img2.Style("filter")
	assert.True(t, ok2)
	assert.True(t, important2)
}

func TestRemoveDisconnects(t *testing.T) {
	doc := NewDocument("https://example.com")
	div := doc.CreateElement("div")
	span := doc.CreateElement("span")
	doc.Body().Append(div)
	div.Append(span)
	require.True(t, span.IsConnected())

	div.Remove()
	assert.False(t, div.IsConnected())
	assert.False(t, span.IsConnected())

	// Re-entry: same reference attached again is connected again.
	doc.Body().Append(div)
	assert.True(t, span.IsConnected())
}

func TestSelectors(t *testing.T) {
	doc, err := Parse("u", `
		<body>
			<main role="main"><article class="post hot" id="a1">text</article></main>
			<nav class="sidebar"><a href="#">link</a></nav>
		</body>`)
	require.NoError(t, err)

	assert.NotNil(t, Query(doc.Root(), "main[role=main]"))
	assert.NotNil(t, Query(doc.Root(), "article.post#a1"))
	assert.Nil(t, Query(doc.Root(), "article.cold"))
	assert.Len(t, QueryAll(doc.Root(), "main, nav"), 2)

	article := Query(doc.Root(), "article")
	assert.True(t, ParseSelector(".post.hot").Matches(article))
	assert.False(t, ParseSelector(".post.hot[data-x]").Matches(article))
}

func TestEventCaptureAndStopPropagation(t *testing.T) {
	doc := NewDocument("u")
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("span")
	doc.Body().Append(outer)
	outer.Append(inner)

	var order []string
	outer.AddEventListener("click", true, func(e *Event) {
		order = append(order, "outer-capture")
		e.StopPropagation()
	})
	inner.AddEventListener("click", false, func(e *Event) {
		order = append(order, "inner-bubble")
	})

	doc.DispatchEvent(inner, "click")
	assert.Equal(t, []string{"outer-capture"}, order, "capture handler must pre-empt the target")
}

func TestIntersectionObserverScrollEntry(t *testing.T) {
	doc := NewDocument("u")
	doc.SetViewport(1280, 800)
	div := doc.CreateElement("div")
	doc.Body().Append(div)
	doc.SetLayout(&FixedLayout{Rects: map[*Node]Rect{div: {Y: 2000, Width: 600, Height: 100}}})

	var entries []IntersectionEntry
	o := doc.NewIntersectionObserver(0.1, func(es []IntersectionEntry) {
		entries = append(entries, es...)
	})
	o.Observe(div)
	require.Empty(t, entries, "off-screen node must not report")

	doc.SetScroll(1900)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsIntersecting)

	doc.SetScroll(0)
	require.Len(t, entries, 2)
	assert.False(t, entries[1].IsIntersecting)
}

func TestLeafTextAndOwnText(t *testing.T) {
	doc, err := Parse("u", `<body><div id="d">prefix <span id="s">inner words here</span></div></body>`)
	require.NoError(t, err)

	d := Query(doc.Root(), "#d")
	s := Query(doc.Root(), "#s")
	assert.False(t, d.IsLeafText())
	assert.True(t, s.IsLeafText())
	assert.Equal(t, "prefix", d.OwnText())
}

func TestOuterHTMLRoundTrips(t *testing.T) {
	doc, err := Parse("u", `<body><p class="post">hello <b>world</b></p><img src="/a.png"></body>`)
	require.NoError(t, err)

	p := Query(doc.Root(), "p")
	assert.Equal(t, `<p class="post">hello <b>world</b></p>`, p.OuterHTML())

	img := Query(doc.Root(), "img")
	assert.Equal(t, `<img src="/a.png">`, img.OuterHTML())

	other, err := Parse("u2", `<body><main id="m"></main></body>`)
	require.NoError(t, err)
	added, err := other.AppendHTML(Query(other.Root(), "#m"), p.OuterHTML())
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "hello world", added[0].VisibleText())
}
