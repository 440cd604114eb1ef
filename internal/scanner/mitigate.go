package scanner

import (
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/report"
)

// Markers the scanner stamps onto mitigated elements. The class carries
// the stylesheet treatment; the attributes survive hostile class
// rewrites and let the maintainer recognise its own work.
const (
	blockedClass = "pageguard-blocked"
	markerAttr   = "data-pageguard-blocked"
	categoryAttr = "data-pageguard-category"
	reportedAttr = "data-pageguard-reported"
	uiMarkerAttr = "data-pageguard-ui"

	blurFilter = "blur(30px)"
)

// applyBlurStyles stamps the inline treatment. Inline and !important so
// the host page's own stylesheet cannot override it.
func applyBlurStyles(n *dom.Node) {
	n.SetStyle("filter", blurFilter, true)
	n.SetStyle("cursor", "pointer", true)
	n.SetStyle("pointer-events", "auto", true)
	n.SetStyle("user-select", "none", true)
}

func removeBlurStyles(n *dom.Node) {
	n.RemoveStyle("filter")
	n.RemoveStyle("cursor")
	n.RemoveStyle("pointer-events")
	n.RemoveStyle("user-select")
}

// mitigate applies the full treatment to a flagged element: class,
// marker attributes, inline blur, interaction handlers, registry entry,
// re-binder subscription and the one-time incident report. Idempotent;
// returns whether a new mitigation was applied.
func (s *Scanner) mitigate(target *dom.Node, kind model.NodeKind, d model.Decision) bool {
	if target == nil || !d.ShouldMitigate() || !target.IsConnected() {
		return false
	}
	if s.registry.Get(target) != nil {
		return false
	}

	dc := d
	if kind == model.KindText && dc.OriginalContent == "" {
		dc.SetOriginalContent(target.VisibleText())
	}

	m := &Mitigation{
		Element:  target,
		Decision: &dc,
		Kind:     kind,
		State:    StateMitigated,
	}
	if kind == model.KindImage {
		m.Wrapper = wrapperFor(target, s.profile.MediaWrapperClasses)
	}

	target.AddClass(blockedClass)
	target.SetAttribute(markerAttr, "true")
	target.SetAttribute(categoryAttr, string(dc.Category))
	applyBlurStyles(target)
	if kind == model.KindImage {
		target.SetAttribute("draggable", "false")
	}
	if m.Wrapper != nil {
		applyBlurStyles(m.Wrapper)
	}
	s.installHandlers(target, kind)

	s.registry.Add(m)
	s.rebinder.Observe(target)
	s.reportOnce(target, kind, &dc)
	return true
}

// installHandlers swallows interaction on the mitigated element during
// the capture phase so the page's own handlers never see it. The first
// pointerdown is the explanation trigger.
func (s *Scanner) installHandlers(target *dom.Node, kind model.NodeKind) {
	target.AddEventListener("pointerdown", true, func(ev *dom.Event) {
		ev.StopPropagation()
		ev.PreventDefault()
		s.handleInteraction(target)
	})
	target.AddEventListener("pointerup", true, func(ev *dom.Event) {
		ev.StopPropagation()
		ev.PreventDefault()
	})
	target.AddEventListener("click", true, func(ev *dom.Event) {
		ev.StopPropagation()
		ev.PreventDefault()
	})

	// A blocked image wrapped in an anchor must not navigate, but other
	// content under the same anchor keeps working.
	if kind == model.KindImage {
		anchor := target.Closest(func(n *dom.Node) bool {
			return n != target && n.Tag() == "a"
		})
		if anchor != nil {
			blocked := target
			anchor.AddEventListener("click", true, func(ev *dom.Event) {
				if blocked.Contains(ev.Target) {
					ev.StopPropagation()
					ev.PreventDefault()
				}
			})
		}
	}
}

// reportOnce emits the incident record the first time this element is
// mitigated. The attribute guard survives unmitigate/re-mitigate cycles
// so a feed rewrite does not double-report.
func (s *Scanner) reportOnce(target *dom.Node, kind model.NodeKind, d *model.Decision) {
	if s.reporter == nil || target.HasAttr(reportedAttr) {
		return
	}
	target.SetAttribute(reportedAttr, "true")

	excerpt := d.OriginalContent
	if kind == model.KindImage {
		excerpt = target.AttrValue("src")
	}
	s.reporter.Report(report.Incident{
		Decision:   *d,
		PageURL:    s.doc.URL(),
		PageTitle:  s.doc.Title(),
		ElementTag: target.Tag(),
		Content:    excerpt,
	})
}

// unmitigate reverses the treatment. Only the acknowledge-reveal policy
// and teardown use it; dismissal alone never reveals.
func (s *Scanner) unmitigate(m *Mitigation) {
	el := m.Element
	el.RemoveClass(blockedClass)
	el.RemoveAttribute(markerAttr)
	el.RemoveAttribute(categoryAttr)
	removeBlurStyles(el)
	if m.Wrapper != nil {
		removeBlurStyles(m.Wrapper)
	}
	el.RemoveEventListeners("pointerdown")
	el.RemoveEventListeners("pointerup")
	el.RemoveEventListeners("click")
	s.rebinder.Unobserve(el)
	s.registry.Remove(el)
}

// reassert restores any part of the treatment the host page stripped
func reassert(m *Mitigation) {
	el := m.Element
	if !el.HasClass(blockedClass) {
		el.AddClass(blockedClass)
	}
	el.SetAttribute(markerAttr, "true")
	el.SetAttribute(categoryAttr, string(m.Decision.Category))
	applyBlurStyles(el)
	if m.Wrapper != nil && m.Wrapper.IsConnected() {
		applyBlurStyles(m.Wrapper)
	}
}
