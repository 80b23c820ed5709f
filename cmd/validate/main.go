package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/feed-engine/internal/config"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <layout.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &LayoutValidator{out: os.Stdout}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Layout file is valid!")
}

// LayoutValidator checks a layout file. Errors fail validation; warnings
// flag layouts that load but probably don't do what was intended.
type LayoutValidator struct {
	out      io.Writer
	errors   []string
	warnings []string
}

func (v *LayoutValidator) validateFile(filename string) error {
	fmt.Fprintf(v.out, "Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("layout file must have .yaml or .yml extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	return v.validate(data)
}

func (v *LayoutValidator) validate(data []byte) error {
	v.errors = nil
	v.warnings = nil

	var layout config.Layout
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&layout); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("layout is empty")
		}
		return fmt.Errorf("failed strict YAML unmarshaling: %w", err)
	}

	layout.Normalize()
	if err := layout.Validate(); err != nil {
		v.errors = append(v.errors, err.Error())
	}
	v.checkBindings(layout.Widgets)

	for _, w := range v.warnings {
		fmt.Fprintf(v.out, "warning: %s\n", w)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// checkBindings warns about streams and ids that will never reach a widget
func (v *LayoutValidator) checkBindings(defs []widget.Definition) {
	owners := make(map[string]string)
	bind := func(stream, owner string) {
		if first, taken := owners[stream]; taken {
			v.warnings = append(v.warnings, fmt.Sprintf("stream %q is bound to %s and %s; only %s receives it", stream, first, owner, first))
			return
		}
		owners[stream] = owner
	}

	hasMain := false
	for _, def := range defs {
		switch def.Kind {
		case widget.KindText:
			if def.Name == widget.MainWidget {
				hasMain = true
			}
			if len(def.Streams) == 0 {
				v.warnings = append(v.warnings, fmt.Sprintf("text widget %q has no streams", def.Name))
			}
			for _, s := range def.Streams {
				bind(s, fmt.Sprintf("widget %q", def.Name))
			}
		case widget.KindTabbed:
			for _, tab := range def.Tabs {
				for _, s := range tab.Streams {
					bind(s, fmt.Sprintf("tab %q of %q", tab.Name, def.Name))
				}
			}
		case widget.KindCountdown:
			if def.CountdownID == "" {
				v.warnings = append(v.warnings, fmt.Sprintf("countdown widget %q has no countdown_id; it will match by name", def.Name))
			}
		case widget.KindRoster:
			if def.Roster == "" {
				v.warnings = append(v.warnings, fmt.Sprintf("roster widget %q names no roster", def.Name))
			}
		}
	}
	if !hasMain {
		v.warnings = append(v.warnings, fmt.Sprintf("no text widget named %q; main text will be dropped", widget.MainWidget))
	}
}
