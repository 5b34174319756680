package capture

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func tinyPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("prepareImageData", func() {
	It("should pass PNG data through", func() {
		data := tinyPNG()
		out, mimeType, err := prepareImageData(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
		Expect(mimeType).To(Equal("image/png"))
	})

	It("should reject data it cannot decode", func() {
		_, _, err := prepareImageData([]byte("not an image"), "image/jpeg")
		Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
	})

	It("should convert a GIF label photo to PNG", func() {
		var buf bytes.Buffer
		Expect(gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.White, color.Black}), nil)).To(Succeed())

		out, mimeType, err := prepareImageData(buf.Bytes(), "image/gif")
		Expect(err).NotTo(HaveOccurred())
		Expect(mimeType).To(Equal("image/png"))
		img, err := png.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(2))
	})

	It("should report a pick list that is not a PDF", func() {
		_, _, err := prepareImageData([]byte("not a pdf"), "application/pdf")
		Expect(err).To(MatchError(ContainSubstring("converting PDF to image")))
	})

	It("should recognise HEIC by its ftyp brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00"))).To(BeTrue())
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypisom\x00\x00"))).To(BeFalse())
		Expect(isHEICMimeType("image/HEIF")).To(BeTrue())
	})
})

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		reader *Ollama
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		reader, err = NewOllama(server.URL(), "qwen2-vl")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should default the url and model", func() {
		o, err := NewOllama("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(o.baseURL).To(Equal("http://localhost:11434"))
		Expect(o.model).To(Equal("llava"))
	})

	When("the model answers with barcodes", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, err := io.ReadAll(r.Body)
					Expect(err).NotTo(HaveOccurred())
					var req ollamaChatRequest
					Expect(json.Unmarshal(body, &req)).To(Succeed())
					Expect(req.Model).To(Equal("qwen2-vl"))
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Images).To(HaveLen(1))
					Expect(req.Options).To(HaveKeyWithValue("temperature", BeNumerically("==", 0)))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: `{"barcodes": ["39001", "39002"]}`},
					Done:    true,
				}),
			))
		})

		It("should return them", func() {
			data, err := reader.ReadBarcodes(tinyPNG(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Barcodes).To(Equal([]string{"39001", "39002"}))
		})
	})

	When("Ollama returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return an error", func() {
			_, err := reader.ReadBarcodes(tinyPNG(), "image/png")
			Expect(err).To(MatchError(ContainSubstring("status 500")))
		})
	})
})
