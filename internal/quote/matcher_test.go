package quote

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/lab-quote/internal/catalog"
	"github.com/zombor/lab-quote/internal/scanning"
)

var _ = Describe("MatchExams", func() {
	var (
		exams   []catalog.Exam
		text    string
		matched []catalog.Exam
	)

	BeforeEach(func() {
		exams = exampleCatalog().Exams()
	})

	JustBeforeEach(func() {
		matched = MatchExams(text, exams)
	})

	When("the text lists several exams", func() {
		BeforeEach(func() {
			text = "hemograma completo\nhdl\nldl"
		})

		It("should match every listed exam in catalog order", func() {
			Expect(mnemonicsOf(matched)).To(Equal([]string{"HDL", "LDL"}))
		})

		It("should price them", func() {
			Expect(Total(matched)).To(Equal(55.00))
		})
	})

	When("the terms appear in reverse catalog order", func() {
		BeforeEach(func() {
			text = "LDL\nHDL"
		})

		It("should still follow catalog order", func() {
			Expect(mnemonicsOf(matched)).To(Equal([]string{"HDL", "LDL"}))
		})
	})

	When("the text contains both the description and an alias", func() {
		BeforeEach(func() {
			text = "HDL\nHDL Colesterol\nhdl colesterol"
		})

		It("should include the exam once", func() {
			Expect(mnemonicsOf(matched)).To(Equal([]string{"HDL"}))
		})
	})

	When("only an alias is present", func() {
		BeforeEach(func() {
			exams = []catalog.Exam{{Mnemonic: "HBA1C", Description: "HEMOGLOBINA GLICADA", Aliases: []string{"a1c"}}}
			text = "Solicito: A1C"
		})

		It("should match through the alias", func() {
			Expect(mnemonicsOf(matched)).To(Equal([]string{"HBA1C"}))
		})
	})

	When("a short term occurs inside another word", func() {
		BeforeEach(func() {
			text = "vldl"
		})

		It("should match it anyway", func() {
			Expect(mnemonicsOf(matched)).To(Equal([]string{"LDL"}))
		})
	})

	When("no catalog term occurs", func() {
		BeforeEach(func() {
			text = "raio x de tórax"
		})

		It("should return an empty list", func() {
			Expect(matched).NotTo(BeNil())
			Expect(matched).To(BeEmpty())
		})
	})

	When("the text is the no-exam sentinel", func() {
		BeforeEach(func() {
			c, err := catalog.Load("")
			Expect(err).NotTo(HaveOccurred())
			exams = c.Exams()
			text = scanning.NoExamsIdentified
		})

		It("should match nothing in the default catalog", func() {
			Expect(matched).To(BeEmpty())
			Expect(Total(matched)).To(BeZero())
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should return an empty list", func() {
			Expect(matched).NotTo(BeNil())
			Expect(matched).To(BeEmpty())
		})
	})

	When("the catalog is empty", func() {
		BeforeEach(func() {
			exams = nil
			text = "hdl ldl"
		})

		It("should return an empty list", func() {
			Expect(matched).NotTo(BeNil())
			Expect(matched).To(BeEmpty())
		})
	})

	When("an exam has an empty alias", func() {
		BeforeEach(func() {
			exams = []catalog.Exam{{Mnemonic: "X", Description: "EXAME X", Aliases: []string{""}}}
			text = "nothing relevant"
		})

		It("should not treat the empty alias as a match", func() {
			Expect(matched).To(BeEmpty())
		})
	})
})

var _ = Describe("MatchExams over the default catalog", func() {
	var exams []catalog.Exam

	BeforeEach(func() {
		c, err := catalog.Load("")
		Expect(err).NotTo(HaveOccurred())
		exams = c.Exams()
	})

	It("should match every exam by its own description exactly once", func() {
		for _, exam := range exams {
			matched := MatchExams(exam.Description, exams)

			count := 0
			for _, m := range matched {
				if m.Mnemonic == exam.Mnemonic {
					count++
				}
			}
			Expect(count).To(Equal(1), exam.Description)
		}
	})

	It("should return each mnemonic at most once", func() {
		text := ""
		for _, exam := range exams {
			text += exam.Description + "\n" + exam.Mnemonic + "\n"
		}
		matched := MatchExams(text, exams)
		Expect(mnemonicsOf(matched)).To(Equal(mnemonicsOf(exams)))
	})
})

var _ = Describe("Total", func() {
	It("should be zero for no exams", func() {
		Expect(Total(nil)).To(BeZero())
	})

	It("should sum prices without floating point drift", func() {
		exams := []catalog.Exam{{Price: 0.10}, {Price: 0.20}}
		Expect(Total(exams)).To(Equal(0.30))
	})

	It("should equal the sum of the prices", func() {
		exams := []catalog.Exam{{Price: 18.00}, {Price: 8.50}, {Price: 12.00}}
		Expect(Total(exams)).To(Equal(38.50))
	})
})
