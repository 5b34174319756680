package inventory

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StatusTable", func() {
	var table StatusTable

	BeforeEach(func() {
		table = DefaultStatusTable()
	})

	It("should carry the full PROCESSTYPE table", func() {
		Expect(table).To(HaveLen(14))
	})

	DescribeTable("known codes block the update with their label",
		func(code, label string) {
			c := table.Classify(code)
			Expect(c.BlocksUpdate).To(BeTrue())
			Expect(c.Label).To(Equal(label))
			Expect(c.Code).To(Equal(code))
		},
		Entry(nil, "ACQ", "Acquisitions"),
		Entry(nil, "CLAIM_RETURNED_LOAN", "Claimed Returned"),
		Entry(nil, "HOLDSHELF", "On Hold Shelf"),
		Entry(nil, "ILL", "Resource Sharing Request"),
		Entry(nil, "LOAN", "On Loan"),
		Entry(nil, "LOST_ILL", "Lost Resource Sharing Request"),
		Entry(nil, "LOST_LOAN", "Lost"),
		Entry(nil, "LOST_LOAN_AND_PAID", "Lost and Paid"),
		Entry(nil, "MISSING", "Missing"),
		Entry(nil, "REQUESTED", "Requested"),
		Entry(nil, "TECHNICAL", "Technical Migration"),
		Entry(nil, "TRANSIT", "In Transit"),
		Entry(nil, "TRANSIT_TO_REMOTE_STORAGE", "In Transit to Remote Storage"),
		Entry(nil, "WORK_ORDER_DEPARTMENT", "In Work Order Status"),
	)

	DescribeTable("unknown or absent codes do not block",
		func(code string) {
			c := table.Classify(code)
			Expect(c.BlocksUpdate).To(BeFalse())
			Expect(c.Label).To(BeEmpty())
		},
		Entry("empty", ""),
		Entry("unknown", "SHELVED"),
		Entry("wrong case", "loan"),
		Entry("the literal None", "None"),
	)

	When("the table comes from settings", func() {
		It("should use the configured labels", func() {
			custom := StatusTable{"LOAN": "Checked out"}
			Expect(custom.Classify("LOAN").Label).To(Equal("Checked out"))
			Expect(custom.Classify("MISSING").BlocksUpdate).To(BeFalse())
		})
	})
})
