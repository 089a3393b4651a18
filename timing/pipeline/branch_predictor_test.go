package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openlabun/mipsim/timing/pipeline"
)

var _ = Describe("BranchPredictor", func() {
	Describe("static modes", func() {
		It("should predict not-taken with prediction off", func() {
			bp := pipeline.NewBranchPredictor(pipeline.PredictNone, false)
			Expect(bp.Predict()).To(BeFalse())
		})

		It("should always predict taken in static-taken mode", func() {
			bp := pipeline.NewBranchPredictor(pipeline.PredictStaticTaken, false)

			Expect(bp.Predict()).To(BeTrue())
			bp.Update(false)
			Expect(bp.Predict()).To(BeTrue())
		})

		It("should always predict not-taken in static-not-taken mode", func() {
			bp := pipeline.NewBranchPredictor(
				pipeline.PredictStaticNotTaken, false)

			Expect(bp.Predict()).To(BeFalse())
			bp.Update(true)
			Expect(bp.Predict()).To(BeFalse())
		})
	})

	Describe("state-machine mode", func() {
		It("should start at the configured initial state", func() {
			bp := pipeline.NewBranchPredictor(pipeline.PredictStateMachine, true)
			Expect(bp.Counter()).To(Equal(pipeline.StronglyTaken))

			bp = pipeline.NewBranchPredictor(pipeline.PredictStateMachine, false)
			Expect(bp.Counter()).To(Equal(pipeline.StronglyNotTaken))
		})

		It("should need two misses to flip a strong prediction", func() {
			bp := pipeline.NewBranchPredictor(pipeline.PredictStateMachine, true)

			bp.Update(false)
			Expect(bp.Counter()).To(Equal(pipeline.WeaklyTaken))
			Expect(bp.Predict()).To(BeTrue())

			bp.Update(false)
			Expect(bp.Counter()).To(Equal(pipeline.WeaklyNotTaken))
			Expect(bp.Predict()).To(BeFalse())
		})

		It("should saturate at the extremes", func() {
			bp := pipeline.NewBranchPredictor(pipeline.PredictStateMachine, true)

			bp.Update(true)
			bp.Update(true)
			Expect(bp.Counter()).To(Equal(pipeline.StronglyTaken))

			for i := 0; i < 5; i++ {
				bp.Update(false)
			}
			Expect(bp.Counter()).To(Equal(pipeline.StronglyNotTaken))
		})

		It("should restore the initial state on reset", func() {
			bp := pipeline.NewBranchPredictor(pipeline.PredictStateMachine, true)

			bp.Update(false)
			bp.Update(false)
			bp.Reset()

			Expect(bp.Counter()).To(Equal(pipeline.StronglyTaken))
		})
	})

	Describe("ParsePredictionMode", func() {
		It("should parse every mode name", func() {
			for _, mode := range []pipeline.PredictionMode{
				pipeline.PredictNone,
				pipeline.PredictStaticTaken,
				pipeline.PredictStaticNotTaken,
				pipeline.PredictStateMachine,
			} {
				parsed, err := pipeline.ParsePredictionMode(mode.String())

				Expect(err).ToNot(HaveOccurred())
				Expect(parsed).To(Equal(mode))
			}
		})

		It("should reject unknown names", func() {
			_, err := pipeline.ParsePredictionMode("perceptron")
			Expect(err).To(HaveOccurred())
		})
	})
})
