// Package bedrock implements ai.Completer over Anthropic models hosted on
// Amazon Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/logger"
	"github.com/spigell/resume-rank/internal/utils"
)

const (
	providerName = "bedrock"

	// DefaultModelID is used when no model is configured.
	DefaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

	anthropicVersion = "bedrock-2023-05-31"
	defaultMaxTokens = 4096
	defaultMaxLogLen = 200
)

type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

var (
	_ ai.Completer  = (*Client)(nil)
	_ ai.ModelNamer = (*Client)(nil)
)

// Client sends prompts to a Bedrock-hosted Anthropic model.
type Client struct {
	api       invoker
	modelID   string
	maxLogLen int
	logger    *zap.Logger
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeBody struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	System           string    `json:"system,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type invokeResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// New creates a Client from an already resolved aws.Config.
func New(cfg aws.Config, modelID string, maxLogLength int, log *zap.Logger) *Client {
	return newClient(bedrockruntime.NewFromConfig(cfg), modelID, maxLogLength, log)
}

func newClient(api invoker, modelID string, maxLogLength int, log *zap.Logger) *Client {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		modelID = DefaultModelID
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLen
	}

	return &Client{
		api:       api,
		modelID:   modelID,
		maxLogLen: maxLogLength,
		logger:    logger.WithCommonFields(log, providerName, modelID),
	}
}

// Model returns the Bedrock model identifier.
func (c *Client) Model() string {
	return c.modelID
}

// Complete invokes the model with a single user message and returns the text
// of the first content block.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(invokeBody{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Messages:         []message{{Role: "user", Content: req.Prompt}},
		Temperature:      req.Temperature,
		System:           strings.TrimSpace(req.System),
	})
	if err != nil {
		return "", fmt.Errorf("marshal bedrock request: %w", err)
	}

	c.logger.Debug("bedrock invoke model",
		zap.Int("max_tokens", maxTokens),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(req.Prompt, c.maxLogLen)),
	)

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		c.logger.Error("bedrock invoke model failed", zap.Error(err))
		return "", ai.NewProviderError(providerName, classify(err), err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", ai.NewProviderError(providerName, ai.KindFailed, fmt.Errorf("decode bedrock response: %w", err))
	}

	if len(resp.Content) == 0 {
		return "", ai.NewProviderError(providerName, ai.KindFailed, errors.New("no content in response"))
	}

	text := resp.Content[0].Text

	c.logger.Debug("bedrock invoke model response",
		zap.String("stop_reason", resp.StopReason),
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, c.maxLogLen)),
	)

	return text, nil
}

func classify(err error) ai.Kind {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return ai.KindThrottled
	}

	var quota *types.ServiceQuotaExceededException
	if errors.As(err, &quota) {
		return ai.KindThrottled
	}

	var modelTimeout *types.ModelTimeoutException
	if errors.As(err, &modelTimeout) {
		return ai.KindTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ai.KindTimeout
	}

	return ai.KindFailed
}
