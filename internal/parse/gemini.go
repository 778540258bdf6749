// README: Gemini-backed contact parser for text the heuristics cannot handle.
package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiParser implements ContactParser using Google's Gemini models.
type GeminiParser struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiParser initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiParser(ctx context.Context, apiKey string) (*GeminiParser, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)

	return &GeminiParser{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiParser) Close() {
	p.client.Close()
}

const contactPrompt = `Extract the contact fields from the pasted text below.
The text is an email signature, a shipping label, a CRM row, or a text message.

Rules:
- "phone": a US 10-digit phone number if present, digits and punctuation as written.
- "name": the person or business name, not a street or a city.
- "address": the street address line only (number + street). No city, state, zip, apartment.
- "apt": apartment/unit/suite/floor designator if present (just the value, e.g. "4B").
- Leave any field you cannot find as an empty string. Never invent values.

Output JSON Schema:
{"name": "string", "phone": "string", "address": "string", "apt": "string"}

Text:
%s`

// ParseContact asks the model for the structured contact.
func (p *GeminiParser) ParseContact(ctx context.Context, text string) (Contact, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(contactPrompt, text)))
	if err != nil {
		return Contact{}, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Contact{}, fmt.Errorf("no response candidates from Gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}

	var c Contact
	clean := cleanJSONString(out.String())
	if err := json.Unmarshal([]byte(clean), &c); err != nil {
		return Contact{}, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, clean)
	}
	return c, nil
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
