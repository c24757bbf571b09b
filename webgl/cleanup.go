package webgl

// cleanups collects teardown steps and runs each exactly once, newest
// first.
type cleanups struct {
	fns []func()
}

func (c *cleanups) add(fn func()) {
	c.fns = append(c.fns, fn)
}

func (c *cleanups) run() {
	fns := c.fns
	c.fns = nil
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
