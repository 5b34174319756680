package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements the Reader interface using the Anthropic messages API
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a new Anthropic Reader instance
func NewAnthropic(apiKey string, modelName string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if modelName == "" {
		modelName = "claude-sonnet-4-5"
	}

	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
	}, nil
}

// ReadBarcodes sends the image to Anthropic and parses the barcode list
func (a *Anthropic) ReadBarcodes(imageData []byte, contentType string) (*Barcodes, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	finalImageData, mimeType, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mimeType, base64.StdEncoding.EncodeToString(finalImageData)),
				anthropic.NewTextBlock(barcodeReadPrompt),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			data, err := parseBarcodesJSON(block.Text)
			if err != nil {
				return nil, fmt.Errorf("parsing barcode data: %w", err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("no text content in anthropic response")
}

// Close is a no-op; the SDK client holds no resources
func (a *Anthropic) Close() error {
	return nil
}
