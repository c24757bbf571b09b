package graphics

// Context is a native window host that owns its GL context and its event
// loop: the desktop preview and the offline recorder.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	SetShouldClose(close bool)
	// EndFrame presents the back buffer and pumps pending window events.
	EndFrame()
	GetFramebufferSize() (width, height int)
}
