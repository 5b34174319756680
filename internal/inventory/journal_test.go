package inventory

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltJournal", func() {
	var (
		journal *BoltJournal
		base    time.Time
	)

	BeforeEach(func() {
		var err error
		journal, err = NewBoltJournal(filepath.Join(GinkgoT().TempDir(), "journal.db"))
		Expect(err).NotTo(HaveOccurred())
		base = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		if journal != nil {
			journal.Close()
		}
	})

	save := func(id, barcode string, state State, at time.Time) {
		Expect(journal.SaveScan(&Outcome{
			ID:        id,
			Barcode:   barcode,
			State:     state,
			ScannedAt: at,
			Record:    &Record{Title: "Title " + barcode},
		})).To(Succeed())
	}

	Describe("SaveScan", func() {
		It("should round-trip the outcome", func() {
			save("0001", "39001", StateUpdated, base)

			scans, err := journal.ListScans(time.Time{})
			Expect(err).NotTo(HaveOccurred())
			Expect(scans).To(HaveLen(1))
			Expect(scans[0].Barcode).To(Equal("39001"))
			Expect(scans[0].State).To(Equal(StateUpdated))
			Expect(scans[0].Record.Title).To(Equal("Title 39001"))
			Expect(scans[0].ScannedAt.Equal(base)).To(BeTrue())
		})
	})

	Describe("ListScans", func() {
		BeforeEach(func() {
			save("0001", "a", StateUpdated, base)
			save("0002", "b", StateNotFound, base.Add(time.Hour))
			save("0003", "c", StateBlocked, base.Add(2*time.Hour))
		})

		It("should filter by scan time", func() {
			scans, err := journal.ListScans(base.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(scans).To(HaveLen(2))
			Expect(scans[0].Barcode).To(Equal("b"))
			Expect(scans[1].Barcode).To(Equal("c"))
		})

		It("should return an empty slice when nothing matches", func() {
			scans, err := journal.ListScans(base.Add(24 * time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(scans).NotTo(BeNil())
			Expect(scans).To(BeEmpty())
		})
	})

	Describe("RecentScans", func() {
		BeforeEach(func() {
			save("0001", "a", StateUpdated, base)
			save("0002", "b", StateUpdated, base.Add(time.Minute))
			save("0003", "c", StateUpdated, base.Add(2*time.Minute))
		})

		It("should return the newest scans first", func() {
			scans, err := journal.RecentScans(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(scans).To(HaveLen(2))
			Expect(scans[0].Barcode).To(Equal("c"))
			Expect(scans[1].Barcode).To(Equal("b"))
		})

		It("should return everything without a limit", func() {
			scans, err := journal.RecentScans(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(scans).To(HaveLen(3))
		})
	})
})
