package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openlabun/mipsim/timing/core"
)

var _ = Describe("Config", func() {
	Describe("Validate", func() {
		It("should accept the defaults", func() {
			Expect(core.DefaultConfig().Validate()).To(Succeed())
		})

		It("should reject an unknown prediction mode", func() {
			config := core.DefaultConfig()
			config.BranchPredictionMode = "oracle"

			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject an unknown initial prediction", func() {
			config := core.DefaultConfig()
			config.StateMachineInitialPrediction = "maybe"

			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a negative misprediction penalty", func() {
			config := core.DefaultConfig()
			config.MispredictPenalty = -1

			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject a zero or unaligned memory size", func() {
			config := core.DefaultConfig()

			config.MemorySize = 0
			Expect(config.Validate()).To(HaveOccurred())

			config.MemorySize = 10
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("LoadConfig", func() {
		It("should overlay file values onto the defaults", func() {
			path := filepath.Join(GinkgoT().TempDir(), "config.json")
			content := `{
				"forwarding_enabled": false,
				"branch_prediction_mode": "state-machine",
				"state_machine_initial_prediction": "taken",
				"miss_threshold": 3
			}`
			Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

			config, err := core.LoadConfig(path)

			Expect(err).ToNot(HaveOccurred())
			Expect(config.ForwardingEnabled).To(BeFalse())
			Expect(config.StallsEnabled).To(BeTrue())
			Expect(config.BranchPredictionMode).To(Equal("state-machine"))
			Expect(config.MissThreshold).To(Equal(uint64(3)))
			Expect(config.MispredictPenalty).To(Equal(2))
		})

		It("should fail on a missing file", func() {
			_, err := core.LoadConfig("does-not-exist.json")
			Expect(err).To(HaveOccurred())
		})

		It("should fail on invalid values", func() {
			path := filepath.Join(GinkgoT().TempDir(), "config.json")
			content := `{"branch_prediction_mode": "oracle"}`
			Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

			_, err := core.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
