package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// barcodeReadPrompt is the shared prompt used by all providers
const barcodeReadPrompt = `You are looking at a photo or scan of library item barcode labels, a shelf list, or a pick list.

Read every item barcode that is visible. Use the human-readable digits or characters printed under or next to each barcode symbol.

Return ONLY valid JSON in this exact format:
{
  "barcodes": ["39001012345678", "39001012345679"]
}

Important:
- List barcodes in reading order, top to bottom and left to right
- Copy each barcode exactly, without spaces or dashes that are not part of it
- Do not include ISBNs, call numbers, or prices
- If no barcode is readable, return {"barcodes": []}
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// pickListDPI is high enough for the printed digits under a 1D barcode on a
// letter size pick list to stay legible to a vision model
const pickListDPI = 200

// renderPickList rasterises a pick list PDF. Only the first page is read,
// a longer list has to be uploaded one page at a time.
func renderPickList(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	if pages > 1 {
		slog.Warn("Only the first page of the pick list is read", "pages", pages)
	}

	img, err := doc.ImageDPI(0, pickListDPI)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

// decodeUpload decodes a label photo. Phones send HEIC, which the standard
// image package cannot decode.
func decodeUpload(imageData []byte, mimeType string) (image.Image, error) {
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC family brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareImageData normalizes an upload to PNG so every reader sends the
// model the same encoding. The returned MIME type is always image/png.
func prepareImageData(imageData []byte, contentType string) ([]byte, string, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	switch {
	case mimeType == "application/pdf":
		pngData, err := renderPickList(imageData)
		if err != nil {
			return nil, "", fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, "image/png", nil
	case mimeType == "image/png" && !isHEICFormat(imageData):
		return imageData, "image/png", nil
	}

	img, err := decodeUpload(imageData, mimeType)
	if err != nil {
		return nil, "", fmt.Errorf("converting image to PNG: %w", err)
	}
	pngData, err := encodePNG(img)
	if err != nil {
		return nil, "", fmt.Errorf("converting image to PNG: %w", err)
	}
	return pngData, "image/png", nil
}
