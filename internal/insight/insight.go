// Package insight produces a narrative executive summary of the budget
// figures through the Gemini API. The dashboard treats it as decoration: any
// failure collapses to a fixed apology, never an error.
package insight

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"finrealize/internal/core"
)

// Fallback is returned whenever the model cannot be reached.
const Fallback = "Maaf, sistem AI sedang tidak dapat dijangkau saat ini."

const defaultModel = "gemini-3-flash-preview"

type Service struct {
	client *genai.Client
	model  string
}

// New builds a service backed by the Gemini API. Credentials come from the
// environment (GEMINI_API_KEY). A client that cannot be constructed is not
// fatal: the service still works and always answers with the fallback.
func New(ctx context.Context) *Service {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		slog.WarnContext(ctx, "Gemini client unavailable, insights will use fallback", "error", err)
		client = nil
	}
	return &Service{client: client, model: defaultModel}
}

// Summarize asks the model for three key points and recommended actions, in
// Indonesian. One attempt only; no retries.
func (s *Service) Summarize(ctx context.Context, sum core.Summary) string {
	if s.client == nil {
		return Fallback
	}

	prompt := fmt.Sprintf(`Analisis data keuangan berikut dan berikan ringkasan eksekutif dalam Bahasa Indonesia:
- Total Anggaran: Rp %s
- Total Realisasi: Rp %s
- Sisa Anggaran: Rp %s
- Persentase Realisasi: %s%%

Berikan 3 poin utama mengenai performa keuangan ini dan saran tindakan.`,
		core.FormatAmount(sum.TotalAllocated),
		core.FormatAmount(sum.TotalRealized),
		core.FormatAmount(sum.Remaining),
		core.FormatPercent(sum.Percent))

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Gemini request failed", "error", err)
		return Fallback
	}
	text := resp.Text()
	if text == "" {
		slog.WarnContext(ctx, "Gemini returned an empty response")
		return Fallback
	}
	return text
}
