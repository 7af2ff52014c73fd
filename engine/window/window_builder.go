package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width in screen coordinates.
//
// Parameters:
//   - width: initial logical width
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.logicalWidth = width
	}
}

// WithHeight sets the initial window height in screen coordinates.
//
// Parameters:
//   - height: initial logical height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.logicalHeight = height
	}
}

// WithPosition places the window's upper-left corner at x, y in screen coordinates.
func WithPosition(x, y int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.x, w.y = x, y
		w.positioned = true
	}
}

// WithTransparent sets whether the framebuffer is transparent. The default is true.
func WithTransparent(transparent bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.transparent = transparent
	}
}

// WithFloating sets whether the window stays above other windows. The default is true.
func WithFloating(floating bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.floating = floating
	}
}

// WithDecorated sets whether the window has a border and title bar. The default is false.
func WithDecorated(decorated bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.decorated = decorated
	}
}
