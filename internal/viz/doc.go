// Package viz runs the rain animation in a terminal using Bubble Tea.
//
// Each terminal cell is one glyph square of the rain surface (see package
// cells). The program pumps the shared scheduler on a 60Hz frame tick, so the
// animator keeps its own 100ms cadence independent of the render rate.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart every column
//	T     - Toggle dark/light theme
//	H     - Toggle the hero overlay
//	G     - Toggle GIF recording
//	?     - Show help
//	Q     - Quit
//
// # Recording
//
// G starts capturing one frame per tick; pressing it again writes
// binrain.gif to the current directory.
package viz
