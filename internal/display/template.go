package display

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Templates expands game text with sprig and the helpers below. Each
// distinct text is parsed once; dialogue nodes and console views are
// rendered far more often than they change. Safe for concurrent use.
type Templates struct {
	funcs template.FuncMap

	mu     sync.RWMutex
	parsed map[string]parsedTemplate
}

type parsedTemplate struct {
	tmpl *template.Template
	err  error
}

// NewTemplates returns an empty cache. extra functions are added on top of
// the defaults and win on name clashes.
func NewTemplates(extra template.FuncMap) *Templates {
	funcs := sprig.TxtFuncMap()
	funcs["plural"] = Plural
	funcs["label"] = Label
	for name, fn := range extra {
		funcs[name] = fn
	}

	return &Templates{
		funcs:  funcs,
		parsed: map[string]parsedTemplate{},
	}
}

// Expand renders text against data. Text without template markers is
// returned unchanged and never cached.
func (t *Templates) Expand(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	p := t.parse(text)
	if p.err != nil {
		return "", p.err
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

func (t *Templates) parse(text string) parsedTemplate {
	t.mu.RLock()
	p, ok := t.parsed[text]
	t.mu.RUnlock()
	if ok {
		return p
	}

	tmpl, err := template.New("").Funcs(t.funcs).Parse(text)
	if err != nil {
		err = fmt.Errorf("parsing template: %w", err)
	}
	p = parsedTemplate{tmpl: tmpl, err: err}

	t.mu.Lock()
	t.parsed[text] = p
	t.mu.Unlock()
	return p
}

// Len is the number of distinct texts parsed so far.
func (t *Templates) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.parsed)
}

var defaultTemplates = NewTemplates(nil)

// ExpandTemplate renders text with the shared template cache.
func ExpandTemplate(text string, data any) (string, error) {
	return defaultTemplates.Expand(text, data)
}

// Plural formats a count with its noun: "1 coin", "3 coins". Nouns with an
// irregular plural may pass it as a third argument.
func Plural(n int, noun string, plural ...string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	if len(plural) > 0 {
		return fmt.Sprintf("%d %s", n, plural[0])
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
