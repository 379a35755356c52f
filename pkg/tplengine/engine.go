// Package tplengine renders named text templates with the sprig function set.
package tplengine

import (
	"bytes"
	"fmt"
	"maps"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine holds a set of templates sharing one function map. Templates in the
// set may include each other by name. Globals are merged into every render and
// win over keys of the same name in the render data.
type Engine struct {
	set     *template.Template
	globals map[string]any
}

func NewEngine() *Engine {
	return &Engine{
		set:     template.New("").Option("missingkey=error").Funcs(sprig.TxtFuncMap()),
		globals: make(map[string]any),
	}
}

// WithFuncs registers extra functions. Call it before adding templates that use them.
func (e *Engine) WithFuncs(funcs template.FuncMap) *Engine {
	e.set.Funcs(funcs)
	return e
}

func (e *Engine) WithGlobalValue(key string, value any) *Engine {
	e.globals[key] = value
	return e
}

// AddTemplate parses text under name, replacing an earlier template of that name.
func (e *Engine) AddTemplate(name, text string) error {
	if _, err := e.set.New(name).Parse(text); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return nil
}

func (e *Engine) Render(name string, data map[string]any) (string, error) {
	tmpl := e.set.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}
	merged := maps.Clone(data)
	if merged == nil {
		merged = make(map[string]any, len(e.globals))
	}
	maps.Copy(merged, e.globals)
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, merged); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
