package reporting

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/engagehub/pkg/models"
)

// NarrativeGenerator turns a computed report into a short prose summary for
// the weekly leadership email. Generation is best-effort; the aggregator
// ships the report without a narrative when it fails.
type NarrativeGenerator interface {
	Generate(ctx context.Context, report *models.EngagementReport) (string, error)
}

// OpenAINarrator drafts the narrative with a chat completion.
type OpenAINarrator struct {
	client *openai.Client
	model  string
}

func NewOpenAINarrator(apiKey, model string) *OpenAINarrator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAINarrator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (n *OpenAINarrator) Generate(ctx context.Context, report *models.EngagementReport) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize this customer engagement report in 3-4 sentences for an executive audience. "+
			"Sessions held: %d. Registrations: %d. Attendees: %d (%.0f%% attendance). "+
			"Average session rating: %.1f/5. Executive outreach calls: %d. "+
			"Customers with improving trust: %d, declining: %d, mean trust score: %.1f/10. "+
			"Be factual, note one risk and one win.",
		report.TotalSessions, report.TotalRegistrations, report.TotalAttendees,
		report.AttendanceRate*100, report.AverageRating, report.OutreachCount,
		report.TrustDistribution.Improved, report.TrustDistribution.Declined,
		report.TrustDistribution.Mean,
	)

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write concise customer-success summaries.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("narrative generation returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
