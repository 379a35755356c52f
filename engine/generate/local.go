package generate

import (
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/afero"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/pkg/logger"
	"github.com/compozy/wrfconf/pkg/tplengine"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templateFiles = []string{FileWPS, FileInput}

// LocalGenerator renders namelists in process and optionally writes them to disk.
type LocalGenerator struct {
	engine *tplengine.Engine
	fs     afero.Fs
}

type LocalOption func(*localConfig)

type localConfig struct {
	fs          afero.Fs
	templateDir string
}

// WithFs sets the filesystem output files are written to.
func WithFs(fs afero.Fs) LocalOption {
	return func(c *localConfig) {
		c.fs = fs
	}
}

// WithTemplateDir loads namelist.wps.tmpl and namelist.input.tmpl overrides
// from dir when present.
func WithTemplateDir(dir string) LocalOption {
	return func(c *localConfig) {
		c.templateDir = dir
	}
}

func NewLocalGenerator(opts ...LocalOption) (*LocalGenerator, error) {
	cfg := &localConfig{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(cfg)
	}
	engine := tplengine.NewEngine().
		WithFuncs(template.FuncMap{"nl": namelistValue}).
		WithGlobalValue("wrf_core", "ARW")
	for _, name := range templateFiles {
		if cfg.templateDir != "" {
			path := filepath.Join(cfg.templateDir, name+".tmpl")
			if ok, _ := afero.Exists(cfg.fs, path); ok {
				data, err := afero.ReadFile(cfg.fs, path)
				if err != nil {
					return nil, fmt.Errorf("read template %s: %w", path, err)
				}
				if err := engine.AddTemplate(name, string(data)); err != nil {
					return nil, err
				}
				continue
			}
		}
		data, err := templatesFS.ReadFile("templates/" + name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("read built-in template %s: %w", name, err)
		}
		if err := engine.AddTemplate(name, string(data)); err != nil {
			return nil, err
		}
	}
	return &LocalGenerator{engine: engine, fs: cfg.fs}, nil
}

// Render produces the contents of both namelists.
func (g *LocalGenerator) Render(doc document.Document) (map[string]string, error) {
	data, err := templateData(doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(templateFiles))
	for _, name := range templateFiles {
		text, err := g.engine.Render(name, data)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		out[name] = text
	}
	return out, nil
}

func (g *LocalGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx)
	files, err := g.Render(req.Document)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	resp := &Response{Success: true, FileContents: files}
	if req.OutputDir == "" {
		resp.Messages = []string{"namelists rendered"}
		return resp, nil
	}
	if err := g.fs.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, &RequestError{Message: fmt.Sprintf("create output directory: %v", err), Err: err}
	}
	for _, name := range templateFiles {
		path := filepath.Join(req.OutputDir, name)
		if err := afero.WriteFile(g.fs, path, []byte(files[name]), 0o644); err != nil {
			return nil, &RequestError{Message: fmt.Sprintf("write %s: %v", name, err), Err: err}
		}
		resp.Messages = append(resp.Messages, "wrote "+path)
		log.Debug("Namelist written", "path", path)
	}
	resp.OutputDir = req.OutputDir
	return resp, nil
}

func templateData(doc document.Document) (map[string]any, error) {
	domains := domainCount(doc)
	data := make(map[string]any, len(schema.SectionNames())+3)
	for name, sec := range doc.Sections() {
		values := make(map[string]any, len(sec))
		for key, v := range sec {
			if !v.IsSet() {
				continue
			}
			if v.IsSeq() {
				values[key] = columns(v.Scalars(), domains)
				continue
			}
			s, _ := v.First()
			values[key] = s.Native()
		}
		data[string(name)] = values
	}
	run, err := runWindow(doc, domains)
	if err != nil {
		return nil, err
	}
	data["run"] = run
	data["grid"] = gridColumns(doc, domains)
	proj, _ := doc.First(schema.DomainSetup, "map_proj")
	data["uses_truelat"] = slices.Contains([]string{"lambert", "polar", "mercator"}, proj.Str())
	return data, nil
}

func domainCount(doc document.Document) int {
	s, ok := doc.First(schema.DomainSetup, "max_dom")
	if !ok || s.Int() < 1 {
		return 1
	}
	return int(s.Int())
}

// columns lays a per-domain sequence out over n domains, repeating the last
// value for domains the sequence does not cover.
func columns(items []field.Scalar, n int) []any {
	out := make([]any, n)
	for i := range n {
		out[i] = items[min(i, len(items)-1)].Native()
	}
	return out
}

// gridColumns numbers the domains; namelist.input wants the outermost parent as 0.
func gridColumns(doc document.Document, n int) map[string]any {
	ids := make([]any, n)
	for i := range n {
		ids[i] = int64(i + 1)
	}
	parentIDs := slices.Repeat([]any{int64(1)}, n)
	if parents := doc.Section(schema.DomainSetup)["parent_id"].Scalars(); len(parents) > 0 {
		parentIDs = columns(parents, n)
	}
	parentIDs[0] = int64(0)
	return map[string]any{"grid_id": ids, "parent_id": parentIDs}
}

func runWindow(doc document.Document, domains int) (map[string]any, error) {
	starts, err := dateColumns(doc, "start_date_str", domains)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	ends, err := dateColumns(doc, "end_date_str", domains)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	total := int(ends[0].Sub(starts[0]) / time.Second)
	return map[string]any{
		"days":    total / 86400,
		"hours":   total % 86400 / 3600,
		"minutes": total % 3600 / 60,
		"seconds": total % 60,
		"start":   dateParts(starts),
		"end":     dateParts(ends),
	}, nil
}

func dateColumns(doc document.Document, name string, domains int) ([]time.Time, error) {
	items := doc.Section(schema.TimeControl)[name].Scalars()
	if len(items) == 0 {
		return nil, fmt.Errorf("%s is not set", name)
	}
	out := make([]time.Time, domains)
	for i := range domains {
		t, err := field.ParseDate(items[min(i, len(items)-1)].Str())
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func dateParts(dates []time.Time) map[string]any {
	part := func(get func(time.Time) int, layout string) string {
		cells := make([]string, len(dates))
		for i, t := range dates {
			cells[i] = fmt.Sprintf(layout, get(t))
		}
		return strings.Join(cells, ", ")
	}
	return map[string]any{
		"year":   part(time.Time.Year, "%d"),
		"month":  part(func(t time.Time) int { return int(t.Month()) }, "%02d"),
		"day":    part(time.Time.Day, "%02d"),
		"hour":   part(time.Time.Hour, "%02d"),
		"minute": part(time.Time.Minute, "%02d"),
		"second": part(time.Time.Second, "%02d"),
	}
}

// namelistValue formats a value the way Fortran namelists expect it.
func namelistValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return ".true."
		}
		return ".false."
	case string:
		return "'" + t + "'"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case []any:
		cells := make([]string, len(t))
		for i, item := range t {
			cells[i] = namelistValue(item)
		}
		return strings.Join(cells, ", ")
	}
	return fmt.Sprint(v)
}
