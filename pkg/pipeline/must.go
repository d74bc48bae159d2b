package pipeline

// MustMakeElement creates an element or panics.
func MustMakeElement(f Factory, factory, name string) Element {
	e, err := f.MakeElement(factory, name)
	if err != nil {
		panic(&Error{Op: "make element", Target: factory + " " + name, Err: err})
	}
	return e
}

// MustNewContainer creates a container or panics.
func MustNewContainer(f Factory, name string) Container {
	c, err := f.NewContainer(name)
	if err != nil {
		panic(&Error{Op: "new container", Target: name, Err: err})
	}
	return c
}

// MustSetPropertyFromString assigns a textual property or panics.
func MustSetPropertyFromString(e Element, key, value string) {
	if err := e.SetPropertyFromString(key, value); err != nil {
		panic(&Error{Op: "set property", Target: e.Name() + "." + key, Err: err})
	}
}

// MustSetProperty assigns a typed property or panics.
func MustSetProperty(e Element, key string, value any) {
	if err := e.SetProperty(key, value); err != nil {
		panic(&Error{Op: "set property", Target: e.Name() + "." + key, Err: err})
	}
}

// MustAdd registers an element with a container or panics.
func MustAdd(c Container, e Element) {
	if err := c.Add(e); err != nil {
		panic(&Error{Op: "register", Target: e.Name(), Err: err})
	}
}

// MustLink wires src into dst or panics.
func MustLink(src, dst Element) {
	if err := src.Link(dst); err != nil {
		panic(&Error{Op: "link", Target: src.Name() + " -> " + dst.Name(), Err: err})
	}
}

// MustSetState transitions a container or panics.
func MustSetState(c Container, s State) {
	if err := c.SetState(s); err != nil {
		panic(&Error{Op: "set state", Target: c.Name() + " " + s.String(), Err: err})
	}
}
