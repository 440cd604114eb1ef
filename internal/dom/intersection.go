package dom

// IntersectionEntry reports a visibility change for an observed node
type IntersectionEntry struct {
	Node           *Node
	Ratio          float64
	IsIntersecting bool
}

// IntersectionObserver watches observed nodes for viewport entry. The
// document re-evaluates on scroll and viewport changes; callbacks run
// synchronously and must not block.
type IntersectionObserver struct {
	doc       *Document
	threshold float64
	callback  func([]IntersectionEntry)
	observed  map[*Node]bool // last reported intersecting state
	active    bool
}

// NewIntersectionObserver registers an observer at the given threshold
func (d *Document) NewIntersectionObserver(threshold float64, callback func([]IntersectionEntry)) *IntersectionObserver {
	o := &IntersectionObserver{
		doc:       d,
		threshold: threshold,
		callback:  callback,
		observed:  make(map[*Node]bool),
		active:    true,
	}
	d.intersectors = append(d.intersectors, o)
	return o
}

// Observe starts watching a node and reports its initial visibility
func (o *IntersectionObserver) Observe(n *Node) {
	if _, ok := o.observed[n]; ok {
		return
	}
	o.observed[n] = false
	o.evaluate([]*Node{n})
}

// Unobserve stops watching a node
func (o *IntersectionObserver) Unobserve(n *Node) {
	delete(o.observed, n)
}

// Disconnect stops the observer entirely
func (o *IntersectionObserver) Disconnect() {
	o.active = false
	o.observed = make(map[*Node]bool)
	for i, other := range o.doc.intersectors {
		if other == o {
			o.doc.intersectors = append(o.doc.intersectors[:i], o.doc.intersectors[i+1:]...)
			return
		}
	}
}

// evaluate recomputes visibility for the given nodes and fires the
// callback with entries whose intersecting state changed
func (o *IntersectionObserver) evaluate(nodes []*Node) {
	if !o.active {
		return
	}
	var changed []IntersectionEntry
	for _, n := range nodes {
		last, watching := o.observed[n]
		if !watching {
			continue
		}
		ratio := o.doc.visibleRatio(n)
		intersecting := ratio >= o.threshold && ratio > 0
		if intersecting != last {
			o.observed[n] = intersecting
			changed = append(changed, IntersectionEntry{Node: n, Ratio: ratio, IsIntersecting: intersecting})
		}
	}
	if len(changed) > 0 {
		o.callback(changed)
	}
}

// visibleRatio computes what fraction of a node's rect is inside the
// viewport
func (d *Document) visibleRatio(n *Node) float64 {
	if !n.IsConnected() {
		return 0
	}
	r := d.Rect(n)
	if r.Height <= 0 {
		return 0
	}
	top := d.viewport.ScrollY
	bottom := top + d.viewport.Height
	visTop := max(r.Y, top)
	visBottom := min(r.Y+r.Height, bottom)
	if visBottom <= visTop {
		return 0
	}
	return float64(visBottom-visTop) / float64(r.Height)
}

// notifyIntersections re-evaluates every observer after a scroll or
// viewport change
func (d *Document) notifyIntersections() {
	observers := make([]*IntersectionObserver, len(d.intersectors))
	copy(observers, d.intersectors)
	for _, o := range observers {
		nodes := make([]*Node, 0, len(o.observed))
		for n := range o.observed {
			nodes = append(nodes, n)
		}
		o.evaluate(nodes)
	}
}
