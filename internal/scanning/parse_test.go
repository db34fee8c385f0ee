package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CleanText", func() {
	var (
		input  string
		output string
	)

	JustBeforeEach(func() {
		output = CleanText(input)
	})

	When("the model returns a plain list", func() {
		BeforeEach(func() {
			input = "Hemograma\nGlicose\nHDL"
		})

		It("should keep it unchanged", func() {
			Expect(output).To(Equal("Hemograma\nGlicose\nHDL"))
		})
	})

	When("the model wraps the list in a code block", func() {
		BeforeEach(func() {
			input = "```\nHemograma\nGlicose\n```"
		})

		It("should strip the fences", func() {
			Expect(output).To(Equal("Hemograma\nGlicose"))
		})
	})

	When("the model adds bullets and blank lines", func() {
		BeforeEach(func() {
			input = "- Hemograma\n\n* Glicose\n  • TSH  \n"
		})

		It("should return one exam per line", func() {
			Expect(output).To(Equal("Hemograma\nGlicose\nTSH"))
		})
	})

	When("the model returns only whitespace", func() {
		BeforeEach(func() {
			input = " \n\t\n"
		})

		It("should return an empty string", func() {
			Expect(output).To(BeEmpty())
		})
	})
})

var _ = Describe("examScanPrompt", func() {
	It("should tell the model what to answer when no exam is found", func() {
		Expect(examScanPrompt).To(ContainSubstring(`"NENHUM EXAME IDENTIFICADO"`))
	})
})
