package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/gradefill/internal/logging"
	"fjacquet/gradefill/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIClient generates text from a prompt.
type AIClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements AIClient with the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient connects to Gemini with the given API key and model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: client.GenerativeModel(model)}, nil
}

// Generate returns the text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

const promptTemplate = `你是一名实习指导教师。请为学生%s的实习报告写一句评语，该学生的实习报告成绩为%s分（百分制）。
要求：只输出评语本身，不超过40个汉字，不要包含学生姓名和分数。
参考风格：%s`

// AICommenter asks an AI model for the comment and falls back to another
// Commenter when the model fails or answers with nothing.
type AICommenter struct {
	client   AIClient
	fallback Commenter
	timeout  time.Duration
	logger   logging.Logger
}

// NewAICommenter creates an AICommenter. A zero timeout means no limit
// beyond the caller's context.
func NewAICommenter(client AIClient, fallback Commenter, timeout time.Duration, logger logging.Logger) *AICommenter {
	return &AICommenter{client: client, fallback: fallback, timeout: timeout, logger: logger}
}

// Name returns the commenter name for logging.
func (c *AICommenter) Name() string {
	return "ai"
}

// Comment returns the generated comment, or the fallback's.
func (c *AICommenter) Comment(ctx context.Context, rec models.GradeRecord) (string, error) {
	reference, err := c.fallback.Comment(ctx, rec)
	if err != nil {
		return "", err
	}
	// outside every band the form stays without a comment
	if reference == "" {
		return "", nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.client.Generate(ctx, fmt.Sprintf(promptTemplate, rec.Name, rec.Grade, reference))
	if err != nil {
		c.logger.WithError(err).Warn("AI comment failed, using band comment",
			logging.F(logging.FieldStudent, rec.Name))
		return reference, nil
	}

	text = cleanComment(text)
	if text == "" {
		c.logger.Warn("AI returned an empty comment, using band comment",
			logging.F(logging.FieldStudent, rec.Name))
		return reference, nil
	}

	c.logger.Debug("Comment generated by AI",
		logging.F(logging.FieldStudent, rec.Name),
		logging.F(logging.FieldGrade, rec.Grade))
	return text, nil
}

// cleanComment keeps the first non-empty line without surrounding quotes.
func cleanComment(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"“”「」")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// Offline returns a commenter that makes no network request: the band
// fallback of an AICommenter, c itself otherwise.
func Offline(c Commenter) Commenter {
	if ai, ok := c.(*AICommenter); ok {
		return ai.fallback
	}
	return c
}

// MockAIClient is an AIClient for tests.
type MockAIClient struct {
	Response string
	Err      error
	Prompts  []string
}

// Generate records the prompt and returns the configured answer.
func (m *MockAIClient) Generate(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	return m.Response, m.Err
}
