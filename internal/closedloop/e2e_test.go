package closedloop

import (
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/howlsim/internal/stability"
)

var _ = Describe("Lightly damped oscillator under output feedback", func() {
	const fs = 44100.0

	var (
		a, b, c, d *mat.Dense
		model      *Model
	)

	BeforeEach(func() {
		a = mat.NewDense(2, 2, []float64{0, 1, -1, -0.1})
		b = mat.NewDense(2, 1, []float64{0, 1})
		c = mat.NewDense(1, 2, []float64{1, 0})
		d = mat.NewDense(1, 1, []float64{0})

		var err error
		model, err = New(a, b, c, d, 0, fs)
		Expect(err).NotTo(HaveOccurred())
	})

	It("leaves A unchanged at zero gain", func() {
		acl, err := model.ClosedLoopDiscrete()
		Expect(err).NotTo(HaveOccurred())
		Expect(mat.EqualApprox(acl, a, 1e-12)).To(BeTrue())
	})

	It("returns one eigenvalue per state", func() {
		Expect(model.EigenSpectrum()).To(HaveLen(2))
		Expect(model.Order()).To(Equal(2))
	})

	It("places the undamped discrete modes on the imaginary axis", func() {
		// det(A) = 1 puts both discrete eigenvalues on the unit circle.
		for _, ev := range model.EigenSpectrum() {
			Expect(real(ev)).To(BeNumerically("~", 0, 1e-6))
		}
	})

	It("reports growing modes once the loop gain pushes them outside the unit circle", func() {
		Expect(model.SetGain(0.3)).To(Succeed())
		Expect(model.Verdict().Status).To(Equal(stability.Unstable))
		Expect(model.Verdict().Offending).To(HaveLen(2))
	})

	It("moves the spectrum continuously with the gain", func() {
		Expect(model.SetGain(0.3)).To(Succeed())
		base := model.EigenSpectrum()

		const dg = 1e-6
		Expect(model.SetGain(0.3 + dg)).To(Succeed())
		moved := model.EigenSpectrum()

		Expect(moved).To(HaveLen(len(base)))
		for i := range base {
			Expect(cmplx.Abs(moved[i] - base[i])).To(BeNumerically("<", 10*fs*dg))
		}
	})

	It("returns to the same spectrum after a round trip of gains", func() {
		Expect(model.SetGain(0.3)).To(Succeed())
		first := model.EigenSpectrum()
		Expect(model.SetGain(-0.2)).To(Succeed())
		Expect(model.SetGain(0.3)).To(Succeed())
		Expect(model.EigenSpectrum()).To(Equal(first))
	})

	Context("with a feedthrough term", func() {
		BeforeEach(func() {
			d = mat.NewDense(1, 1, []float64{0.25})
			var err error
			model, err = New(a, b, c, d, 1, fs)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects the gain that cancels the feedthrough and keeps prior results", func() {
			before := model.Snapshot()

			err := model.SetGain(-4)
			var sfe *SingularFeedbackError
			Expect(err).To(BeAssignableToTypeOf(sfe))
			Expect(err).To(MatchError(ErrSingularFeedback))

			Expect(model.Gain()).To(Equal(1.0))
			Expect(model.EigenSpectrum()).To(Equal(before.Eigenvalues))
			Expect(model.Verdict()).To(Equal(before.Verdict))
		})
	})
})
