package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iyhunko/magical-emporium/internal/config"
	"github.com/iyhunko/magical-emporium/internal/metrics"
	"google.golang.org/genai"
)

// ErrGenerationFailed is returned when a remote generation call fails or
// returns unusable content. Callers surface it to a human; nothing retries.
var ErrGenerationFailed = errors.New("generation failed")

const (
	operationDescription = "description"
	operationImagePrompt = "image_prompt"
	operationImage       = "image"

	aspectRatioSquare = "1:1"
	logPreviewLength  = 100
)

// modelsAPI is the subset of *genai.Models used by Client.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client wraps the Gemini API for the three calls of the product pipeline.
type Client struct {
	models     modelsAPI
	textModel  string
	imageModel string
	prompts    config.Prompts
}

// NewClient creates a Gemini-backed Client.
func NewClient(ctx context.Context, conf config.Gemini) (*Client, error) {
	if conf.APIKey == "" {
		return nil, fmt.Errorf("%w for key: %s", config.ErrMissingConfig, config.GeminiAPIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	slog.Info("Gemini client initialized", slog.String("text_model", conf.TextModel), slog.String("image_model", conf.ImageModel))
	return newClient(client.Models, conf), nil
}

func newClient(models modelsAPI, conf config.Gemini) *Client {
	return &Client{
		models:     models,
		textModel:  conf.TextModel,
		imageModel: conf.ImageModel,
		prompts:    conf.Prompts,
	}
}

// GenerateDescription expands a one-line seed into a product description.
func (c *Client) GenerateDescription(ctx context.Context, seed string) (string, error) {
	slog.Info("Generating description", slog.String("seed", seed))

	description, err := c.generateText(ctx, operationDescription, c.prompts.DescriptionGeneration, "Product idea: "+seed)
	if err != nil {
		return "", err
	}

	slog.Info("Generated description", slog.Int("characters", len(description)))
	return description, nil
}

// GenerateImagePrompt turns a product description into an image generation prompt.
func (c *Client) GenerateImagePrompt(ctx context.Context, description string) (string, error) {
	slog.Info("Generating image prompt from description")

	prompt, err := c.generateText(ctx, operationImagePrompt, c.prompts.ImagePromptGeneration, "Description:\n"+description)
	if err != nil {
		return "", err
	}

	slog.Info("Generated image prompt", slog.Int("characters", len(prompt)))
	return prompt, nil
}

// GenerateImage renders prompt as a square image of roughly size pixels and
// writes the raw bytes to outputPath.
func (c *Client) GenerateImage(ctx context.Context, prompt string, size int, outputPath string) (string, error) {
	slog.Info("Generating image", slog.String("prompt", preview(prompt)), slog.String("output", outputPath))

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.imageModel,
		userContent(fmt.Sprintf("%s\n\nRender a square image, %dx%d pixels.", prompt, size, size)),
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
			ImageConfig: &genai.ImageConfig{
				AspectRatio: aspectRatioSquare,
			},
		},
	)
	metrics.ObserveGeneration(operationImage, start, err)
	if err != nil {
		slog.Error("Failed to generate image", slog.Any("err", err))
		return "", fmt.Errorf("%w: image request: %w", ErrGenerationFailed, err)
	}

	data := firstInlineImage(resp)
	if len(data) == 0 {
		slog.Error("No image data received from Gemini API")
		return "", fmt.Errorf("%w: no image data in response", ErrGenerationFailed)
	}

	if err := writeFileAtomic(outputPath, data); err != nil {
		slog.Error("Failed to save generated image", slog.Any("err", err), slog.String("output", outputPath))
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	slog.Info("Image saved", slog.String("output", outputPath), slog.Int("bytes", len(data)))
	return outputPath, nil
}

func (c *Client) generateText(ctx context.Context, operation, systemPrompt, content string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.textModel, userContent(content), cfg)
	metrics.ObserveGeneration(operation, start, err)
	if err != nil {
		slog.Error("Text generation failed", slog.String("operation", operation), slog.Any("err", err))
		return "", fmt.Errorf("%w: %s request: %w", ErrGenerationFailed, operation, err)
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		slog.Error("Empty response from Gemini API", slog.String("operation", operation))
		return "", fmt.Errorf("%w: empty %s response", ErrGenerationFailed, operation)
	}
	return text, nil
}

func userContent(text string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
}

func firstInlineImage(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
			if part.Text != "" {
				slog.Debug("Received text part alongside image", slog.String("text", preview(part.Text)))
			}
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gen-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move image into place: %w", err)
	}
	return nil
}

func preview(s string) string {
	if len(s) <= logPreviewLength {
		return s
	}
	return s[:logPreviewLength] + "..."
}
