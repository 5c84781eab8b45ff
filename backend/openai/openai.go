// Package openai provides a backend.Backend implementation over the OpenAI
// Responses API using the official client. Continuation tokens map directly
// onto previous_response_id turn chaining; the backend session state lives
// entirely server-side.
package openai

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/hupe1980/sessionmesh/backend"
	"github.com/hupe1980/sessionmesh/core"
)

// Options configure the OpenAI backend adapter.
type Options struct {
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
	// BaseURL overrides the default API endpoint.
	BaseURL string
}

// Backend wraps the OpenAI Responses API behind the generic backend.Backend interface.
type Backend struct {
	client openai.Client
}

// New creates a new OpenAI backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Backend{client: openai.NewClient(clientOpts...)}
}

// NewFromClient creates a new OpenAI backend from an existing client.
func NewFromClient(client openai.Client) *Backend {
	return &Backend{client: client}
}

// Create implements backend.Backend. Transport failures are wrapped as
// *core.TransportError; no retries are attempted here.
func (b *Backend) Create(ctx context.Context, req backend.Request) (*backend.Response, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.Model),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.MaxOutputTokens)
	}
	if req.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(req.PreviousResponseID)
	}

	items := make(responses.ResponseInputParam, 0, len(req.Input))
	for _, m := range req.Input {
		items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, toRole(m.Role)))
	}
	params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: items}

	resp, err := b.client.Responses.New(ctx, params)
	if err != nil {
		return nil, &core.TransportError{Op: "create", Err: err}
	}

	return &backend.Response{
		ID:         resp.ID,
		OutputText: extractOutputText(resp),
		Raw:        resp,
	}, nil
}

func toRole(role string) responses.EasyInputMessageRole {
	switch role {
	case core.RoleDeveloper:
		return responses.EasyInputMessageRoleDeveloper
	case core.RoleAssistant:
		return responses.EasyInputMessageRoleAssistant
	case core.RoleSystem:
		return responses.EasyInputMessageRoleSystem
	default:
		return responses.EasyInputMessageRoleUser
	}
}

// extractOutputText joins the output_text parts of message items. Reasoning
// and tool items are skipped.
func extractOutputText(resp *responses.Response) string {
	var sb strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type != "output_text" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
