package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolContextSelection(t *testing.T) {
	assistant := NewAssistant(NewDealAgent(testAnalysis(t)), "")

	cases := []struct {
		question string
		tool     string
	}{
		{"Y a-t-il des anomalies dans les écritures comptables ?", "find_anomalies"},
		{"Montre-moi les écritures du journal", "get_entries"},
		{"Quel est le BFR à fin 2023 ?", "get_balance"},
		{"Comment évolue le DSO ?", "get_kpis"},
		{"Quel est l'EBITDA du dernier exercice ?", "get_pl"},
		{"Donne-moi une vue d'ensemble du dossier", "get_summary"},
	}

	for _, tc := range cases {
		tool, result := assistant.toolContext(tc.question)
		assert.Equal(t, tc.tool, tool, tc.question)
		if tc.tool != "find_anomalies" && tc.tool != "get_entries" {
			require.NotNil(t, result, tc.question)
		}
	}
}

func TestToolContextFallsBackToSummary(t *testing.T) {
	assistant := NewAssistant(NewDealAgent(testAnalysis(t)), "")

	tool, result := assistant.toolContext("???")
	assert.Equal(t, "get_summary", tool)
	require.NotNil(t, result)
}

func TestAskWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	assistant := NewAssistant(NewDealAgent(testAnalysis(t)), "")
	_, err := assistant.Ask(t.Context(), "Quel est l'EBITDA ?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
