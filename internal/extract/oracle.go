package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

var ErrEmptyResponse = errors.New("extract: empty model response")

// Oracle — текст счёта → черновик строк.
type Oracle interface {
	Extract(ctx context.Context, text string) (*Draft, error)
}

const globalRules = `Prices are per unit excluding VAT.
Kegs and casks have pack size "1"; cans and bottles carry the case size.
Keep the keg technology in the format (KeyKeg, PolyKeg, Steel Keg, Dolium US).
Do not invent collaborators; leave collaborator empty when none is printed.
Skip delivery, deposit and pallet lines.`

// OpenAIOracle — Responses API со строгой JSON-схемой черновика.
type OpenAIOracle struct {
	client *openai.Client
	model  string
	rules  string
}

func NewOpenAIOracle(apiKey, model, rules string) *OpenAIOracle {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	return &OpenAIOracle{client: &client, model: model, rules: rules}
}

func buildPrompt(text, rules string) string {
	var sb strings.Builder
	sb.WriteString("Extract the invoice header and every beer line item from the text below.\n\n")
	sb.WriteString("GLOBAL RULES:\n")
	sb.WriteString(globalRules)
	if strings.TrimSpace(rules) != "" {
		sb.WriteString("\n\nSUPPLIER RULES (override the global rules):\n")
		sb.WriteString(rules)
	}
	sb.WriteString("\n\nINVOICE TEXT:\n")
	sb.WriteString(text)
	return sb.String()
}

func (o *OpenAIOracle) Extract(ctx context.Context, text string) (*Draft, error) {
	schema, err := draftSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(text, o.rules)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "invoice_draft",
					Strict:      param.NewOpt(true),
					Schema:      schema,
					Description: param.NewOpt("Invoice header and line items"),
				},
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}
	return ParseDraft(resp.OutputText())
}

// ParseDraft — JSON черновика из ответа модели; markdown-ограждения срезаются.
func ParseDraft(content string) (*Draft, error) {
	raw := stripFences(content)
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	return &d, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	// пояснения вокруг объекта
	if i := strings.IndexByte(s, '{'); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndexByte(s, '}'); j >= 0 && j < len(s)-1 {
		s = s[:j+1]
	}
	return s
}

func draftSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Draft
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return m, nil
}
