package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/nest/pkg/domain"
)

// Overlay highlights the active stack of a process on the diagram.
type Overlay struct {
	// Path holds the active state keys, root first.
	Path []string
}

// GenerateMermaid renders a state tree as a Mermaid stateDiagram-v2.
// Composite states become nested blocks, INITIAL and FINAL become [*], the
// wildcard source becomes a "*" pseudo state and undeclared targets are drawn
// as dashed placeholders.
func GenerateMermaid(cfg domain.StateConfig, overlay *Overlay) string {
	g := &generator{
		ids:  make(map[string]bool),
		refs: make(map[string]string),
	}
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	rootID := g.newID(nil, cfg.Key)
	g.refs[ref("", cfg.Key)] = rootID
	g.state(&sb, cfg, rootID, []string{cfg.Key}, nil, 1)

	if len(g.placeholders) > 0 {
		sb.WriteString("\n    classDef placeholder stroke-dasharray:5 5\n")
		sb.WriteString(fmt.Sprintf("    class %s placeholder\n", strings.Join(g.placeholders, ",")))
	}

	if overlay != nil && len(overlay.Path) > 0 {
		if active := g.resolvePath(overlay.Path); len(active) > 0 {
			sb.WriteString("\n    %% Overlay Styles\n")
			sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000\n")
			sb.WriteString(fmt.Sprintf("    class %s active\n", strings.Join(active, ",")))
		}
	}
	return sb.String()
}

type generator struct {
	ids          map[string]bool
	refs         map[string]string // container id + key -> id of the state it denotes
	placeholders []string
}

func ref(container, key string) string {
	return container + "\x00" + key
}

func (g *generator) newID(parent []string, key string) string {
	parts := make([]string, 0, len(parent)+1)
	for _, p := range parent {
		parts = append(parts, sanitizeMermaidID(p))
	}
	parts = append(parts, sanitizeMermaidID(key))
	base := strings.Join(parts, "_")
	id := base
	for n := 2; g.ids[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	g.ids[id] = true
	return id
}

// scope maps the keys declared at one level to their ids.
type scope map[string]string

func (g *generator) state(sb *strings.Builder, cfg domain.StateConfig, id string, path []string, scopes []scope, depth int) {
	indent := strings.Repeat("    ", depth)
	sb.WriteString(fmt.Sprintf("%sstate %q as %s\n", indent, cfg.Key, id))
	if len(cfg.States) == 0 && len(cfg.Transitions) == 0 {
		return
	}

	declared := make(scope, len(cfg.States))
	for _, child := range cfg.States {
		declared[child.Key] = g.newID(path, child.Key)
		g.refs[ref(id, child.Key)] = declared[child.Key]
	}
	scopes = append(scopes, declared)

	sb.WriteString(fmt.Sprintf("%sstate %s {\n", indent, id))
	inner := indent + "    "
	for _, child := range cfg.States {
		childPath := append(append([]string(nil), path...), child.Key)
		g.state(sb, child, declared[child.Key], childPath, scopes, depth+1)
	}

	local := make(map[string]string)
	resolve := func(key string) string {
		if id, ok := local[key]; ok {
			return id
		}
		for i := len(scopes) - 1; i >= 0; i-- {
			if target, ok := scopes[i][key]; ok {
				local[key] = target
				g.refs[ref(id, key)] = target
				return target
			}
		}
		var target string
		if key == domain.AnyState {
			target = g.newID(path, "any")
		} else {
			target = g.newID(path, key)
			g.refs[ref(id, key)] = target
			g.placeholders = append(g.placeholders, target)
		}
		sb.WriteString(fmt.Sprintf("%sstate %q as %s\n", inner, key, target))
		local[key] = target
		return target
	}

	for _, t := range cfg.Transitions {
		from := "[*]"
		if t.From != domain.InitialState {
			from = resolve(t.From)
		}
		to := "[*]"
		if t.To != domain.FinalState {
			to = resolve(t.To)
		}
		sb.WriteString(fmt.Sprintf("%s%s --> %s: %s\n", inner, from, to, t.Event))
	}
	sb.WriteString(fmt.Sprintf("%s}\n", indent))
}

// resolvePath maps the keys of an active stack to diagram ids.
func (g *generator) resolvePath(path []string) []string {
	container := ""
	ids := make([]string, 0, len(path))
	for _, key := range path {
		id, ok := g.refs[ref(container, key)]
		if !ok {
			break
		}
		ids = append(ids, id)
		container = id
	}
	return ids
}

func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
