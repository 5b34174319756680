package inventory

import (
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScanDate", func() {
	It("should format the date with a Z suffix", func() {
		Expect(ScanDate(time.Date(2026, 10, 19, 15, 4, 5, 0, time.Local))).To(Equal("2026-10-19Z"))
	})
})

var _ = Describe("Patch", func() {
	const scanDate = "2026-10-19Z"

	var (
		doc     string
		patched []byte
		err     error
	)

	JustBeforeEach(func() {
		patched, err = Patch([]byte(doc), scanDate)
	})

	When("the record already has an inventory date", func() {
		BeforeEach(func() {
			doc = itemFixture
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should only replace the date value", func() {
			expected := strings.Replace(itemFixture, "2019-05-02Z", scanDate, 1)
			Expect(string(patched)).To(Equal(expected))
		})

		It("should be idempotent", func() {
			again, err := Patch(patched, scanDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(patched))
		})

		It("should not modify the input", func() {
			input := []byte(itemFixture)
			_, err := Patch(input, scanDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(input)).To(Equal(itemFixture))
		})
	})

	When("the record has no inventory date", func() {
		BeforeEach(func() {
			doc = fixtureWithoutInventoryDate()
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should insert exactly one field right after the inventory number", func() {
			Expect(strings.Count(string(patched), "<inventory_date>")).To(Equal(1))
			Expect(string(patched)).To(ContainSubstring("<inventory_number>INV-77</inventory_number><inventory_date>" + scanDate + "</inventory_date>"))
		})

		It("should leave every other byte unchanged", func() {
			inserted := "<inventory_date>" + scanDate + "</inventory_date>"
			Expect(strings.Replace(string(patched), inserted, "", 1)).To(Equal(doc))
		})

		It("should be idempotent", func() {
			again, err := Patch(patched, scanDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(patched))
		})
	})

	When("the inventory number is self-closing", func() {
		BeforeEach(func() {
			doc = fixture(
				"\n    <inventory_date>2019-05-02Z</inventory_date>", "",
				"<inventory_number>INV-77</inventory_number>", "<inventory_number/>",
			)
		})

		It("should insert after the closing of the empty element", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(string(patched)).To(ContainSubstring("<inventory_number/><inventory_date>" + scanDate + "</inventory_date>"))
		})
	})

	When("the inventory date is an empty element", func() {
		BeforeEach(func() {
			doc = fixture("<inventory_date>2019-05-02Z</inventory_date>", `<inventory_date source="x" />`)
		})

		It("should expand it in place and keep its attributes", func() {
			Expect(err).NotTo(HaveOccurred())
			expected := fixture("<inventory_date>2019-05-02Z</inventory_date>", `<inventory_date source="x">`+scanDate+"</inventory_date>")
			Expect(string(patched)).To(Equal(expected))
		})
	})

	When("the inventory number is missing as well", func() {
		BeforeEach(func() {
			doc = fixture(
				"\n    <inventory_date>2019-05-02Z</inventory_date>", "",
				"\n    <inventory_number>INV-77</inventory_number>", "",
			)
		})

		It("should return a PatchError", func() {
			var patchErr *PatchError
			Expect(errors.As(err, &patchErr)).To(BeTrue())
			Expect(patched).To(BeNil())
		})
	})

	When("the record carries two inventory dates", func() {
		BeforeEach(func() {
			doc = fixture("<inventory_date>2019-05-02Z</inventory_date>",
				"<inventory_date>2019-05-02Z</inventory_date><inventory_date>2018-01-01Z</inventory_date>")
		})

		It("should refuse to pick one", func() {
			var patchErr *PatchError
			Expect(errors.As(err, &patchErr)).To(BeTrue())
		})
	})

	When("an inventory date appears outside item_data", func() {
		BeforeEach(func() {
			doc = fixture("<author>Eco, Umberto</author>", "<author>Eco, Umberto</author><inventory_date>keep</inventory_date>")
		})

		It("should leave it alone", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(string(patched)).To(ContainSubstring("<inventory_date>keep</inventory_date>"))
			Expect(string(patched)).To(ContainSubstring("<inventory_date>" + scanDate + "</inventory_date>"))
		})
	})

	When("the document is not valid XML", func() {
		BeforeEach(func() {
			doc = "<item><item_data><inventory_number>1</item_data>"
		})

		It("should return a PatchError", func() {
			var patchErr *PatchError
			Expect(errors.As(err, &patchErr)).To(BeTrue())
		})
	})
})
