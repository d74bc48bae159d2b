package pipeline

// Handle owns a built pipeline: its elements, in build order, and the
// container they are registered with. A Handle has a single owner and is
// not safe for concurrent use.
type Handle struct {
	name      string
	ids       []string
	elements  map[string]Element
	container Container
	closed    bool
}

// NewHandle returns a handle over container with no elements.
func NewHandle(name string, container Container) *Handle {
	return &Handle{
		name:      name,
		elements:  make(map[string]Element),
		container: container,
	}
}

// Put records the element built for id. A later Put for the same id
// replaces the element but keeps its original position.
func (h *Handle) Put(id string, e Element) {
	if _, ok := h.elements[id]; !ok {
		h.ids = append(h.ids, id)
	}
	h.elements[id] = e
}

// Name is the schema name the handle was built from.
func (h *Handle) Name() string { return h.name }

// Element returns the element built for id.
func (h *Handle) Element(id string) (Element, bool) {
	e, ok := h.elements[id]
	return e, ok
}

// IDs returns the element identifiers in build order.
func (h *Handle) IDs() []string {
	return append([]string(nil), h.ids...)
}

// Container returns the owned container.
func (h *Handle) Container() Container { return h.container }

// Start moves the pipeline to Active.
func (h *Handle) Start() error {
	if err := h.container.SetState(Active); err != nil {
		return &Error{Op: "start", Target: h.name, Err: err}
	}
	return nil
}

// Stop moves the pipeline to Idle.
func (h *Handle) Stop() error {
	if err := h.container.SetState(Idle); err != nil {
		return &Error{Op: "stop", Target: h.name, Err: err}
	}
	return nil
}

// Close stops the pipeline the first time it is called. Later calls do
// nothing and return nil, even if the first Stop failed.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.Stop()
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool { return h.closed }
