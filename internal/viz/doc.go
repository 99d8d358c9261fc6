// Package viz is the terminal gain-tuning UI.
//
// A [Tuner] drives a gain.Controller from a dB slider and renders the last
// valid closed-loop snapshot: verdict, spectrum on a braille s-plane and the
// history of the largest real part. Slider moves are debounced; only the
// latest position is recomputed.
//
// # Key Bindings
//
//	←/→        - Gain -/+ one slider step
//	shift+←/→  - Gain -/+ 1 dB
//	0          - Reset to 0 dB
//	I          - Toggle sign inversion
//	S          - Save the current gain
//	Q          - Quit
package viz
