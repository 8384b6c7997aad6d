// Package rain implements the falling binary glyph ("digital rain") animator.
//
// The package owns the per-column simulation and its render step:
//
//   - [ColumnState]: drop position of every column, in glyph-height units
//   - [Surface]: the 2D drawing primitives a host must provide
//   - [Theme]: the dark and light color pairs
//   - [Animator]: start/stop/resize/theme lifecycle around a single tick
//
// # Example
//
//	sched := clock.NewScheduler(clock.NewMonotonicTimeProvider())
//	anim, _ := rain.New(rain.DefaultConfig(), sched, nil)
//	anim.Start(surface, true)
//	defer anim.Stop()
//	// host frame loop: sched.Pump()
//
// # Thread Safety
//
// Animator instances are NOT thread-safe. Hosts drive an animator from one
// goroutine: the one that pumps its scheduler and reports resizes.
package rain
