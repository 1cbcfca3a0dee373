package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avetisov/seminarbot/config"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// instructorPersona is the fixed system instruction for every critique.
const instructorPersona = `Ты преподаватель истории Ближнего Востока.
Дай короткий, конструктивный фидбэк (3–5 предложений) на присланную работу.`

const (
	feedbackMaxTokens   = 300
	feedbackTemperature = 0.4
)

type FeedbackService interface {
	// GenerateFeedback produces a short critique of the submitted task text.
	// Any completion-service error, timeout, or empty completion is reported
	// as ErrFeedbackUnavailable.
	GenerateFeedback(ctx context.Context, taskText string) (string, error)
}

type geminiFeedbackService struct {
	model   *genai.GenerativeModel
	timeout time.Duration
}

func NewGeminiFeedbackService(cfg *config.Config) (FeedbackService, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(feedbackTemperature)
	model.SetMaxOutputTokens(feedbackMaxTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instructorPersona)},
	}

	return &geminiFeedbackService{model: model, timeout: cfg.Gemini.Timeout}, nil
}

func (s *geminiFeedbackService) GenerateFeedback(ctx context.Context, taskText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.model.GenerateContent(ctx, genai.Text(taskText))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error while generating feedback")
		return "", fmt.Errorf("%w: %w", ErrFeedbackUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response")
		return "", fmt.Errorf("%w: empty completion", ErrFeedbackUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	feedback := strings.TrimSpace(sb.String())
	if feedback == "" {
		return "", fmt.Errorf("%w: completion contained no text", ErrFeedbackUnavailable)
	}
	return feedback, nil
}
