package dom

// Event is a user-interaction event dispatched through the tree
type Event struct {
	Type   string
	Target *Node

	stopped   bool
	prevented bool
}

// StopPropagation halts delivery to any further listener
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the default action as cancelled
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called
func (e *Event) DefaultPrevented() bool { return e.prevented }

type listener struct {
	typ     string
	capture bool
	fn      func(*Event)
}

// AddEventListener installs a listener. Capture listeners run during the
// root-to-target phase, the rest during target-to-root bubbling.
func (n *Node) AddEventListener(typ string, capture bool, fn func(*Event)) {
	n.listeners = append(n.listeners, &listener{typ: typ, capture: capture, fn: fn})
}

// RemoveEventListeners drops every listener of the given type
func (n *Node) RemoveEventListeners(typ string) {
	kept := n.listeners[:0]
	for _, l := range n.listeners {
		if l.typ != typ {
			kept = append(kept, l)
		}
	}
	n.listeners = kept
}

// DispatchEvent runs the capture phase from the root down to target,
// then bubbles back up. Returns the event for inspection.
func (d *Document) DispatchEvent(target *Node, typ string) *Event {
	ev := &Event{Type: typ, Target: target}

	var path []*Node
	for cur := target; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}

	// Capture: root -> target
	for i := len(path) - 1; i >= 0 && !ev.stopped; i-- {
		path[i].fire(ev, true)
	}
	// Bubble: target -> root
	for i := 0; i < len(path) && !ev.stopped; i++ {
		path[i].fire(ev, false)
	}
	return ev
}

func (n *Node) fire(ev *Event, capture bool) {
	// Snapshot: a listener may install or remove listeners.
	ls := make([]*listener, len(n.listeners))
	copy(ls, n.listeners)
	for _, l := range ls {
		if ev.stopped {
			return
		}
		if l.typ == ev.Type && l.capture == capture {
			l.fn(ev)
		}
	}
}
