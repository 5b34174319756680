package capture

// Barcodes contains the barcodes read from an image
type Barcodes struct {
	Barcodes []string `json:"barcodes"`
}

// Reader defines the interface for reading item barcodes out of images
type Reader interface {
	// ReadBarcodes analyzes a photo or PDF of barcode labels and returns them in reading order
	ReadBarcodes(imageData []byte, contentType string) (*Barcodes, error)
	// Close closes the reader and releases resources
	Close() error
}
