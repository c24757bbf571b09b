package glfwcontext

import "testing"

func TestPresenterSwapsOnlyNewFrames(t *testing.T) {
	var count uint64
	p := presenter{submitted: func() uint64 { return count }}

	steps := []struct {
		submit uint64
		want   bool
	}{
		{0, false}, // nothing drawn yet
		{1, true},
		{0, false}, // paused
		{0, false},
		{2, true}, // redraw after a paused resize plus a clear
		{1, true},
	}
	for i, s := range steps {
		count += s.submit
		if got := p.ready(); got != s.want {
			t.Errorf("step %d: ready = %v, want %v", i, got, s.want)
		}
	}
}
