package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/nest/pkg/domain"
)

// Describe renders a state tree as markdown: one section per state with its
// transition table, nested by depth.
func Describe(cfg domain.StateConfig) string {
	var sb strings.Builder
	describe(&sb, cfg, 1)
	return sb.String()
}

func describe(sb *strings.Builder, cfg domain.StateConfig, depth int) {
	level := depth
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), cfg.Key)

	if len(cfg.States) > 0 {
		keys := make([]string, len(cfg.States))
		for i, s := range cfg.States {
			keys[i] = "`" + s.Key + "`"
		}
		fmt.Fprintf(sb, "Substates: %s\n\n", strings.Join(keys, ", "))
	}

	if len(cfg.Transitions) > 0 {
		sb.WriteString("| From | Event | To |\n|---|---|---|\n")
		for _, t := range cfg.Transitions {
			fmt.Fprintf(sb, "| %s | %s | %s |\n", endpoint(t.From, "INITIAL"), cell(t.Event), endpoint(t.To, "FINAL"))
		}
		sb.WriteString("\n")
	}

	for _, child := range cfg.States {
		describe(sb, child, depth+1)
	}
}

func endpoint(key, empty string) string {
	if key == "" {
		return "_" + empty + "_"
	}
	return cell(key)
}

func cell(s string) string {
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}
