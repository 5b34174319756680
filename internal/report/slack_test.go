package report

import (
	"context"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = ginkgo.Describe("SlackNotifier", func() {
	var server *ghttp.Server

	ginkgo.BeforeEach(func() {
		server = ghttp.NewServer()
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.It("should require a token and a channel", func() {
		_, err := NewSlackNotifier("", "C1", "")
		Expect(err).To(HaveOccurred())
		_, err = NewSlackNotifier("xoxb-1", "", "")
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("should post the report to the channel", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("POST", "/chat.postMessage"),
			func(w http.ResponseWriter, r *http.Request) {
				Expect(r.ParseForm()).To(Succeed())
				Expect(r.PostForm.Get("channel")).To(Equal("C123"))
				Expect(r.PostForm.Get("text")).To(ContainSubstring("Scanned: 4"))
			},
			ghttp.RespondWith(http.StatusOK, `{"ok":true,"channel":"C123","ts":"1710493200.000100"}`,
				http.Header{"Content-Type": []string{"application/json"}}),
		))

		notifier, err := NewSlackNotifier("xoxb-1", "C123", server.URL()+"/")
		Expect(err).NotTo(HaveOccurred())
		Expect(notifier.Notify(context.Background(), "Scanned: 4")).To(Succeed())
		Expect(server.ReceivedRequests()).To(HaveLen(1))
	})

	ginkgo.It("should return Slack errors", func() {
		server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"ok":false,"error":"channel_not_found"}`,
			http.Header{"Content-Type": []string{"application/json"}}))

		notifier, err := NewSlackNotifier("xoxb-1", "C404", server.URL()+"/")
		Expect(err).NotTo(HaveOccurred())
		Expect(notifier.Notify(context.Background(), "x")).To(MatchError(ContainSubstring("channel_not_found")))
	})
})
