package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const systemPrompt = `You are a transaction-services analyst reviewing French
statutory accounting (FEC) data. You are given the structured result of a
query against the deal databook: financial statement lines, KPIs, journal
entries or variance decompositions, all in euros unless labelled k€.
Answer the user's question from that data only. Be concise, cite figures,
and flag anything unusual. Reply in the language of the question.`

// Assistant narrates DealAgent tool output in natural language through the
// Gemini API. The agent's tools stay deterministic; the model only ever
// sees their serialized results.
type Assistant struct {
	agent *DealAgent
	model string
}

// NewAssistant wraps an agent. An empty model falls back to a sensible
// default.
func NewAssistant(agent *DealAgent, model string) *Assistant {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Assistant{agent: agent, model: model}
}

// toolContext picks the tool whose output best grounds the question,
// matching on French and English keywords, and returns the tool name with
// its result. Unmatched questions fall back to the summary tool.
func (a *Assistant) toolContext(question string) (string, any) {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, "anomal", "outlier", "inhabituel", "suspect"):
		return "find_anomalies", a.agent.FindAnomalies(0)
	case containsAny(q, "écriture", "ecriture", "journal", "entries"):
		return "get_entries", a.agent.GetEntries(EntryFilter{})
	case containsAny(q, "bilan", "balance sheet", "bfr", "dette", "créance", "creance", "stock"):
		if m, err := a.agent.GetBalance(0); err == nil {
			return "get_balance", m
		}
	case containsAny(q, "kpi", "dso", "dpo", "dio", "ratio", "rotation"):
		if k, err := a.agent.GetKPIs(0); err == nil {
			return "get_kpis", k
		}
	case containsAny(q, "ebitda", "marge", "résultat", "resultat", "chiffre d'affaires", "revenue", "charges"):
		if m, err := a.agent.GetPL(0); err == nil {
			return "get_pl", m
		}
	}
	return "get_summary", a.agent.GetSummary()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Ask selects a tool for the question, attaches the serialized tool output
// alongside the databook summary and returns the model's answer. Requires
// GEMINI_API_KEY in the environment.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	tool, toolResult := a.toolContext(question)
	payload, err := json.Marshal(map[string]any{
		"summary": a.agent.GetSummary(),
		"tool":    tool,
		"result":  toolResult,
	})
	if err != nil {
		return "", fmt.Errorf("marshal tool context: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	prompt := fmt.Sprintf("Databook context:\n%s\n\nQuestion: %s", payload, question)

	zerolog.Ctx(ctx).Debug().
		Str("model", a.model).
		Str("tool", tool).
		Int("context_bytes", len(payload)).
		Msg("asking assistant")

	result, err := client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
