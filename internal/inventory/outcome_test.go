package inventory

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DirectiveFor", func() {
	loan := Classification{Code: "LOAN", Label: "On Loan", BlocksUpdate: true}
	none := Classification{}

	It("should give every state a directive", func() {
		all := append([]State{StateIdle, StateLookingUp, StateFound, StateClassifying, StateUpdating}, TerminalStates...)
		for _, state := range all {
			for _, status := range []Classification{none, loan} {
				for _, inTemp := range []bool{false, true} {
					d := DirectiveFor(state, status, inTemp, DefaultMessage)
					Expect(d.Message).NotTo(BeEmpty(), string(state))
					Expect(d.Emphasis).NotTo(BeEmpty(), string(state))
					Expect(d.InputEnabled).To(Equal(state == StateIdle || state.Terminal()), string(state))
				}
			}
		}
	})

	DescribeTable("terminal states",
		func(state State, status Classification, inTemp bool, emphasis Emphasis, message string) {
			d := DirectiveFor(state, status, inTemp, DefaultMessage)
			Expect(d.Emphasis).To(Equal(emphasis))
			Expect(d.Message).To(Equal(message))
		},
		Entry("idle", StateIdle, none, false, EmphasisNeutral, DefaultMessage),
		Entry("connection failed", StateConnectionFailed, none, false, EmphasisError, MessageConnection),
		Entry("not found", StateNotFound, none, false, EmphasisError, MessageNotFound),
		Entry("malformed", StateMalformed, none, false, EmphasisError, MessageMalformed),
		Entry("update failed", StateUpdateFailed, loan, true, EmphasisError, MessageUpdateFailed),
		Entry("updated", StateUpdated, none, false, EmphasisSuccess, MessageScanNext),
		Entry("updated in process", StateUpdated, loan, false, EmphasisWarning,
			"Item has process status: On Loan, Please set aside!"),
		Entry("updated in temporary location", StateUpdated, none, true, EmphasisNote,
			MessageScanNext+"\n"+MessageTempLocationNote),
		Entry("updated in process and temporary location", StateUpdated, loan, true, EmphasisWarning,
			"Item has process status: On Loan, Please set aside!\n"+MessageTempLocationNote),
		Entry("blocked", StateBlocked, loan, false, EmphasisWarning,
			"Item has process status: On Loan, Please set aside!"),
	)

	It("should raise the connection notice only for connection failures", func() {
		Expect(DirectiveFor(StateConnectionFailed, none, false, DefaultMessage).Notice).To(Equal(NoticeConnection))
		Expect(DirectiveFor(StateNotFound, none, false, DefaultMessage).Notice).To(BeEmpty())
	})

	It("should fall back to the code when a status has no label", func() {
		d := DirectiveFor(StateBlocked, Classification{Code: "ODD", BlocksUpdate: true}, false, DefaultMessage)
		Expect(d.Message).To(ContainSubstring("ODD"))
	})
})

var _ = Describe("State", func() {
	It("should know which states end a scan", func() {
		Expect(StateUpdated.Terminal()).To(BeTrue())
		Expect(StateUpdating.Terminal()).To(BeFalse())
		Expect(StateIdle.Terminal()).To(BeFalse())
	})

	It("should know which states set the item aside", func() {
		Expect(StateNotFound.SetAside()).To(BeTrue())
		Expect(StateBlocked.SetAside()).To(BeTrue())
		Expect(StateMalformed.SetAside()).To(BeTrue())
		Expect(StateUpdated.SetAside()).To(BeFalse())
		Expect(StateConnectionFailed.SetAside()).To(BeFalse())
	})
})
