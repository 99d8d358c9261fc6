// Package analysis explores how stability changes with the feedback gain.
//
// The package includes:
//
//   - [Sweep]: evaluate the closed loop over a range of gains in dB
//   - [FindMargin]: bisect for the largest gain that keeps the loop stable
//   - [Transitions]: points where the verdict flips along a sweep
//
// # Margin
//
// The margin is the critical gain at which the first mode reaches the
// imaginary axis. Gains above it make the loop howl:
//
//	m, err := analysis.FindMargin(ctx, plant, analysis.MarginConfig{LowDB: -36, HighDB: 36})
//	fmt.Printf("howling above %.2f dB\n", m.CriticalDB)
package analysis
