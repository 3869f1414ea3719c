package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/DivyeshVarade/grocery-scout/internal/config"
	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

const geminiURLFormat = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// Reference weights help the model estimate gram amounts consistently.
const weightReferenceTable = `REFERENCE WEIGHTS (approx):
- 1 tomato ~= 150g
- 1 onion ~= 150g
- 1 potato ~= 200g
- 1 carrot ~= 100g
- 1 apple ~= 180g
- 1 cup rice ~= 200g
- 1 tbsp oil/sauce ~= 15g
- 1 tsp spice ~= 5g
- 1 egg ~= 50g
- 1 chicken breast ~= 200g`

const recipeSystemPrompt = `You are a professional chef. Generate a detailed recipe based on the user's request.
CRITICAL INSTRUCTION: For ingredients, you MUST estimate the quantity in GRAMS (g) or MILLILITERS (ml) where possible.
Use the following reference weights if needed:
%s

Respond ONLY with valid JSON in this exact format, no markdown or code fences:
{
  "title": "Recipe Title",
  "instructions": ["Step 1", "Step 2", "Step 3"],
  "prepTime": "30 minutes",
  "difficulty": "Easy|Medium|Hard",
  "ingredients": [
    {"name": "Ingredient Name", "quantity": "2 cups", "quantity_grams": 300},
    {"name": "Another Ingredient", "quantity": "1 tbsp", "quantity_grams": 15}
  ]
}
`

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type generatedIngredient struct {
	Name          string `json:"name"`
	Quantity      string `json:"quantity"`
	QuantityGrams int    `json:"quantity_grams"`
}

type generatedRecipe struct {
	Title        string                `json:"title"`
	Instructions []string              `json:"instructions"`
	PrepTime     string                `json:"prepTime"`
	Difficulty   string                `json:"difficulty"`
	Ingredients  []generatedIngredient `json:"ingredients"`
}

// geminiClient wraps the generative-AI text endpoint. The API key and model
// are injected configuration, never ambient state.
type geminiClient struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
}

// generate sends the prompt and returns the parsed recipe. The call runs
// under its own deadline because this is the only unbounded-latency
// dependency in the system.
func (g *geminiClient) generate(ctx context.Context, prompt string, servings int) (*generatedRecipe, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	system := fmt.Sprintf(recipeSystemPrompt, weightReferenceTable)
	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{
				Text: fmt.Sprintf("%s\nUser Request: %s for %d people.", system, prompt, servings),
			}},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(geminiURLFormat, g.cfg.Model, g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w: %v", entity.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %w", resp.StatusCode, entity.ErrUpstreamUnavailable)
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, err
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates: %w", entity.ErrUpstreamUnavailable)
	}

	return parseRecipeJSON(geminiResp.Candidates[0].Content.Parts[0].Text)
}

// parseRecipeJSON decodes the model output, tolerating markdown code fences
// and missing fields. Malformed fields degrade to defaults instead of
// failing the whole generation.
func parseRecipeJSON(text string) (*generatedRecipe, error) {
	text = stripCodeFences(text)

	var recipe generatedRecipe
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		return nil, fmt.Errorf("unparseable recipe JSON: %w", err)
	}

	if recipe.Title == "" {
		recipe.Title = "Untitled Recipe"
	}
	return &recipe, nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
