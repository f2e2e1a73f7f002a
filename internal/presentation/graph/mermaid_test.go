package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/nest/internal/presentation/graph"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var T = domain.T

func appConfig() domain.StateConfig {
	return domain.StateConfig{
		Key: "App",
		Transitions: []domain.Transition{
			T("", "*", "Login"),
			T("Login", "ok", "Main"),
			T("*", "exit", ""),
		},
		States: []domain.StateConfig{
			{Key: "Login"},
			{
				Key: "Main",
				Transitions: []domain.Transition{
					T("", "*", "Page"),
					T("Page", "back", "Login"),
					T("Page", "help", "Help"),
				},
				States: []domain.StateConfig{{Key: "Page"}},
			},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(appConfig(), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name:     "Header",
			contains: []string{"stateDiagram-v2\n"},
		},
		{
			name: "Composite States",
			contains: []string{
				"    state \"App\" as App\n    state App {\n",
				"        state \"Main\" as App_Main\n        state App_Main {\n",
				"            state \"Page\" as App_Main_Page\n",
			},
		},
		{
			name: "Initial And Final",
			contains: []string{
				"        [*] --> App_Login: *\n",
				"            [*] --> App_Main_Page: *\n",
				"        App_any --> [*]: exit\n",
			},
		},
		{
			name:     "Wildcard Source",
			contains: []string{"        state \"*\" as App_any\n"},
		},
		{
			name:     "Ancestor Declared Target",
			contains: []string{"            App_Main_Page --> App_Login: back\n"},
		},
		{
			name: "Placeholder",
			contains: []string{
				"            state \"Help\" as App_Main_Help\n",
				"            App_Main_Page --> App_Main_Help: help\n",
				"    class App_Main_Help placeholder\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
	assert.NotContains(t, out, "Overlay Styles")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(appConfig(), &graph.Overlay{Path: []string{"App", "Main", "Page"}})
	assert.Contains(t, out, "%% Overlay Styles")
	assert.Contains(t, out, "    class App,App_Main,App_Main_Page active\n")

	// A path leaving the diagram is highlighted up to the last known state.
	out = graph.GenerateMermaid(appConfig(), &graph.Overlay{Path: []string{"App", "Nowhere", "Page"}})
	assert.Contains(t, out, "    class App active\n")
}

func TestGenerateMermaid_SanitizesIDs(t *testing.T) {
	cfg := domain.StateConfig{
		Key:         "my-app",
		Transitions: []domain.Transition{T("", "*", "step.one")},
		States:      []domain.StateConfig{{Key: "step.one"}},
	}
	out := graph.GenerateMermaid(cfg, nil)
	assert.Contains(t, out, "state \"step.one\" as my_app_step_one\n")
	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"))
}
