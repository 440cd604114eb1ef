package dom

// MutationType classifies a mutation record
type MutationType int

const (
	ChildList MutationType = iota
	CharacterData
	Attributes
)

// MutationRecord describes a single document mutation
type MutationRecord struct {
	Type          MutationType
	Target        *Node   // Parent for ChildList, the node itself otherwise
	AddedNodes    []*Node // ChildList only
	RemovedNodes  []*Node // ChildList only
	AttributeName string  // Attributes only
	OldValue      string  // Previous character data or attribute value
}

// ObserverInit selects which record types an observer receives
type ObserverInit struct {
	ChildList     bool
	CharacterData bool
	Attributes    bool
}

// MutationObserver delivers records synchronously as mutations happen,
// matching a host runtime that flushes observers within the microtask.
type MutationObserver struct {
	doc      *Document
	init     ObserverInit
	callback func([]MutationRecord)
	active   bool
}

// Observe registers a mutation observer over the whole document
func (d *Document) Observe(init ObserverInit, callback func([]MutationRecord)) *MutationObserver {
	o := &MutationObserver{doc: d, init: init, callback: callback, active: true}
	d.observers = append(d.observers, o)
	return o
}

// Disconnect stops delivery to this observer
func (o *MutationObserver) Disconnect() {
	o.active = false
	for i, other := range o.doc.observers {
		if other == o {
			o.doc.observers = append(o.doc.observers[:i], o.doc.observers[i+1:]...)
			return
		}
	}
}

func (o *MutationObserver) wants(t MutationType) bool {
	switch t {
	case ChildList:
		return o.init.ChildList
	case CharacterData:
		return o.init.CharacterData
	case Attributes:
		return o.init.Attributes
	}
	return false
}

// emit delivers a record to every interested observer
func (d *Document) emit(rec MutationRecord) {
	// Snapshot: a callback may register or disconnect observers.
	observers := make([]*MutationObserver, len(d.observers))
	copy(observers, d.observers)
	for _, o := range observers {
		if o.active && o.wants(rec.Type) {
			o.callback([]MutationRecord{rec})
		}
	}
}
