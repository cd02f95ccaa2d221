package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"
	"github.com/thapar25/EMR/scribe"
	"go.uber.org/zap"
)

const (
	DefaultSummaryModel       = "gpt-4.1-mini"
	DefaultExtractionModel    = "gpt-4.1-mini"
	DefaultSummaryTemperature = 0.2
)

// NewClient builds an OpenAI client. SDK-level retries are disabled; retries belong to
// CallWithRetry so they stay explicit and visible in logs.
func NewClient(apiKey, baseURL string) *openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &client
}

// ChatStreamer streams chat completions. It implements scribe.TextStreamer.
type ChatStreamer struct {
	Client          *openai.Client
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Retry           RetryPolicy
	Logger          *zap.Logger
}

var _ scribe.TextStreamer = (*ChatStreamer)(nil)

// StreamText opens the stream and waits for its first event, so a refused or failed request
// surfaces here rather than after the caller has started forwarding output.
func (s *ChatStreamer) StreamText(ctx context.Context, instructions, input string) (scribe.FragmentStream, error) {
	if s.Client == nil {
		return nil, errors.New("ChatStreamer: client is nil")
	}
	if s.Model == "" {
		return nil, errors.New("ChatStreamer: model is empty")
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(s.Temperature),
	}
	if s.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(s.MaxOutputTokens))
	}

	return CallWithRetry(ctx, s.Retry, s.Logger, func(ctx context.Context) (scribe.FragmentStream, error) {
		stream := s.Client.Chat.Completions.NewStreaming(ctx, params)
		cs := &chatStream{stream: stream}
		if !stream.Next() {
			err := stream.Err()
			if err == nil {
				// Completed without any event; still a valid, empty stream.
				cs.done = true
				return cs, nil
			}
			_ = stream.Close()
			return nil, err
		}
		cs.primed = true
		return cs, nil
	})
}

// chatStream adapts the SDK stream to scribe.FragmentStream, yielding only content deltas.
type chatStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	primed bool
	done   bool
	cur    string
}

func (c *chatStream) Next() bool {
	if c.done {
		return false
	}
	for {
		if c.primed {
			c.primed = false
		} else if !c.stream.Next() {
			c.done = true
			return false
		}
		chunk := c.stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		c.cur = chunk.Choices[0].Delta.Content
		return true
	}
}

func (c *chatStream) Current() string { return c.cur }

func (c *chatStream) Err() error { return c.stream.Err() }

func (c *chatStream) Close() error { return c.stream.Close() }

// ResponsesCompleter requests schema-constrained output from the Responses API.
// It implements scribe.StructuredCompleter.
type ResponsesCompleter struct {
	Client          *openai.Client
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Retry           RetryPolicy
	Logger          *zap.Logger
}

var _ scribe.StructuredCompleter = (*ResponsesCompleter)(nil)

func (c *ResponsesCompleter) CompleteStructured(ctx context.Context, req scribe.StructuredRequest) (string, error) {
	if c.Client == nil {
		return "", errors.New("ResponsesCompleter: client is nil")
	}
	if c.Model == "" {
		return "", errors.New("ResponsesCompleter: model is empty")
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        req.Name,
			Schema:      req.Schema,
			Strict:      openai.Bool(true),
			Description: openai.String(req.Description),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:        c.Model,
		Instructions: openai.String(req.Instructions),
		Temperature:  openai.Float(c.Temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}
	if c.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.MaxOutputTokens))
	}

	resp, err := CallWithRetry(ctx, c.Retry, c.Logger, func(ctx context.Context) (*responses.Response, error) {
		return c.Client.Responses.New(ctx, params)
	})
	if err != nil {
		return "", err
	}
	if string(resp.Status) == "incomplete" {
		return "", fmt.Errorf("response incomplete: %s", resp.IncompleteDetails.Reason)
	}
	return resp.OutputText(), nil
}
