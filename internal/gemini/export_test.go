package gemini

import "github.com/iyhunko/magical-emporium/internal/config"

// NewClientWithModels builds a Client over a stubbed models API.
func NewClientWithModels(models modelsAPI, conf config.Gemini) *Client {
	return newClient(models, conf)
}
