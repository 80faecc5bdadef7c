package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk YAML layout of a dataset.
type fileSchema struct {
	Attributes []attributeDef      `yaml:"attributes"`
	Instances  []map[string]string `yaml:"instances"`
}

type attributeDef struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// Loader reads a YAML dataset file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *DataSet
	onChange []func(*DataSet)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	ds, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = ds
	return l, nil
}

// Data returns the current (latest) dataset.
func (l *Loader) Data() *DataSet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the dataset reloads.
func (l *Loader) OnChange(fn func(*DataSet)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the dataset on file
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dataset watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("dataset watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("dataset reload skipped", "path", l.path, "err", err)
					}
				}
			case <-w.Errors:
				// Ignore watcher errors; the old dataset stays current.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the dataset file and notifies all
// OnChange callbacks on success.
func (l *Loader) Reload() (*DataSet, error) {
	ds, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = ds
	callbacks := make([]func(*DataSet), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(ds)
	}
	return ds, nil
}

func (l *Loader) load() (*DataSet, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", l.path, err)
	}
	var file fileSchema
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", l.path, err)
	}
	return buildDataSet(&file)
}

// buildDataSet validates the parsed file: unique attribute names, non-empty
// domains, and complete instances whose values fall inside the declared
// domains.
func buildDataSet(file *fileSchema) (*DataSet, error) {
	if len(file.Attributes) == 0 {
		return nil, fmt.Errorf("dataset: no attributes declared")
	}

	attrs := NewSet()
	var errs []string
	for i, def := range file.Attributes {
		if def.Name == "" {
			errs = append(errs, fmt.Sprintf("attributes[%d]: name is required", i))
			continue
		}
		if len(def.Values) == 0 {
			errs = append(errs, fmt.Sprintf("attribute %s: values must not be empty", def.Name))
			continue
		}
		if attrs.Contains(def.Name) {
			errs = append(errs, fmt.Sprintf("duplicate attribute %q", def.Name))
			continue
		}
		attrs.Add(NewAttribute(def.Name, def.Values))
	}

	instances := make([]Instance, 0, len(file.Instances))
	for i, row := range file.Instances {
		inst := make(Instance, len(row))
		for name, value := range row {
			attr, ok := attrs.ByName(name)
			if !ok {
				errs = append(errs, fmt.Sprintf("instances[%d]: unknown attribute %q", i, name))
				continue
			}
			if !attr.HasValue(value) {
				errs = append(errs, fmt.Sprintf("instances[%d]: value %q not in domain of %s", i, value, name))
				continue
			}
			inst[name] = value
		}
		for _, a := range attrs.Attributes() {
			if _, ok := inst[a.Name()]; !ok {
				errs = append(errs, fmt.Sprintf("instances[%d]: missing value for %s", i, a.Name()))
			}
		}
		instances = append(instances, inst)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("dataset validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return New(attrs, instances), nil
}
