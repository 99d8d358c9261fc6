// Package closedloop computes the output-feedback closed loop of a SISO
// plant and its continuous-time eigen-spectrum.
//
// For a gain g the discrete closed-loop matrix is
//
//	A_cl = A - g·B·C / (1 + g·D)
//
// and its continuous-time counterpart is Log(A_cl)·fs, the principal matrix
// logarithm scaled by the sampling rate fs (that is, divided by the control
// period dt = 1/fs). In the continuous domain the real part of an eigenvalue
// is its decay rate and the imaginary part its angular frequency, so the
// loop is stable when every real part is negative.
//
// # Usage
//
//	m, err := closedloop.New(a, b, c, d, 1.0, 44100)
//	if err != nil {
//	    return err
//	}
//	if err := m.SetGain(2.0); err != nil {
//	    // m still holds the state computed for gain 1.0
//	}
//	fmt.Println(m.Verdict().Status)
//
// # Thread Safety
//
// Model is NOT thread-safe. Writers sharing a model should go through a
// gain.Controller, which serialises each mutation with the read that follows.
package closedloop
