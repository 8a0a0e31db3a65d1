package mailer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	// placeholderPattern matches {{ expression }} across lines, shortest first.
	placeholderPattern = regexp.MustCompile(`\{\{([\s\S]+?)\}\}`)

	// identPathPattern accepts identifiers and dotted member access: link, user.name.
	identPathPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)
)

// Template is a compiled {{variable}} template.
type Template struct {
	segments []segment
}

// segment is either literal text or a variable reference.
type segment struct {
	text string
	path []string
}

// Compile parses src into a Template. Values are interpolated raw, without escaping.
func Compile(src string) (*Template, error) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(src, -1)
	segments := make([]segment, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, segment{text: src[last:m[0]]})
		}

		expr := strings.TrimSpace(src[m[2]:m[3]])
		if !identPathPattern.MatchString(expr) {
			return nil, fmt.Errorf("%w: unsupported expression %q", ErrRenderFailed, expr)
		}
		segments = append(segments, segment{path: strings.Split(expr, ".")})
		last = m[1]
	}
	if last < len(src) {
		segments = append(segments, segment{text: src[last:]})
	}

	return &Template{segments: segments}, nil
}

// Execute renders the template against vars.
// A top-level name missing from vars is an error; a missing nested field renders empty.
func (t *Template) Execute(vars Vars) (string, error) {
	var b strings.Builder
	for _, s := range t.segments {
		if s.path == nil {
			b.WriteString(s.text)
			continue
		}
		v, err := s.lookup(vars)
		if err != nil {
			return "", err
		}
		b.WriteString(formatValue(v))
	}
	return b.String(), nil
}

func (s segment) lookup(vars Vars) (any, error) {
	v, ok := vars[s.path[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not defined", ErrRenderFailed, s.path[0])
	}

	for i, key := range s.path[1:] {
		if v == nil {
			return nil, fmt.Errorf("%w: cannot read %q of %s", ErrRenderFailed, key, strings.Join(s.path[:i+1], "."))
		}
		v = field(v, key)
	}
	return v, nil
}

// field returns the member of a mapping value, or nil when there is none.
func field(v any, key string) any {
	switch m := v.(type) {
	case Vars:
		return m[key]
	case map[string]any:
		return m[key]
	case map[string]string:
		if s, ok := m[key]; ok {
			return s
		}
	case User:
		if s := m.Get(key); s != "" {
			return s
		}
	}
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = formatValue(p)
		}
		return strings.Join(parts, ",")
	case Vars, map[string]any, map[string]string:
		return "[object Object]"
	default:
		return fmt.Sprint(val)
	}
}

// Renderer compiles and caches templates by source text.
type Renderer struct {
	cache map[string]*Template
	mu    sync.RWMutex
}

// NewRenderer creates a renderer with an empty cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[string]*Template)}
}

// Render compiles src (or reuses a cached compilation) and executes it.
func (r *Renderer) Render(src string, vars Vars) (string, error) {
	tmpl, err := r.compile(src)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(vars)
}

func (r *Renderer) compile(src string) (*Template, error) {
	r.mu.RLock()
	if cached, ok := r.cache[src]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if cached, ok := r.cache[src]; ok {
		return cached, nil
	}

	tmpl, err := Compile(src)
	if err != nil {
		return nil, err
	}
	r.cache[src] = tmpl
	return tmpl, nil
}
