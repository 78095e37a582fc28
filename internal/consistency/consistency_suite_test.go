package consistency_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/eostab/internal/consistency"
)

func TestConsistency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Consistency Suite")
}

var models, discoverErr = consistency.DiscoverModels("../../models")

var _ = Describe("Reduced models", func() {
	It("discovers every model directory with test targets", func() {
		Expect(discoverErr).NotTo(HaveOccurred())
		Expect(models).NotTo(BeEmpty())
	})

	for _, m := range models {
		m := m
		Describe(m.Name, Ordered, func() {
			var report *consistency.Report

			BeforeAll(func() {
				var err error
				report, err = consistency.New().CheckModel(m)
				Expect(err).NotTo(HaveOccurred())
			})

			It("runs comparisons for every target", func() {
				Expect(report.Targets).To(BeNumerically(">", 0))
				Expect(report.Checks).To(BeNumerically(">", report.Targets))
			})

			DescribeTable("agrees with its targets",
				func(check string) {
					Expect(report.Failures(check)).To(BeEmpty())
				},
				Entry("reports no transport species and the declared names", consistency.CheckNames),
				Entry("decodes progress variables", consistency.CheckMassFractions),
				Entry("encodes mass fractions", consistency.CheckProgressVariables),
				Entry("closes chemistry sources", consistency.CheckSource),
				Entry("matches the detailed backend property by property", consistency.CheckThermodynamics),
			)
		})
	}
})
