// Package style renders command results for the terminal: pterm prefixed
// printers for status lines, lipgloss styles for the list and status tables.
// Colors adapt to light and dark themes via the embedded styles.yaml.
package style

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var embeddedStyles []byte

// colorDef is an adaptive color definition in styles.yaml.
type colorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// styleDef is a style definition in styles.yaml.
type styleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
}

type stylesConfig struct {
	Colors map[string]colorDef `yaml:"colors"`
	Styles map[string]styleDef `yaml:"styles"`
}

// registry maps semantic names to lipgloss styles.
var registry map[string]lipgloss.Style

func init() {
	var cfg stylesConfig
	if err := yaml.Unmarshal(embeddedStyles, &cfg); err != nil {
		panic(fmt.Sprintf("embedded styles.yaml is invalid: %v", err))
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	registry = make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		s := lipgloss.NewStyle().Bold(def.Bold).Italic(def.Italic)
		if c, ok := colors[def.Foreground]; ok {
			s = s.Foreground(c)
		}
		registry[name] = s
	}
}

// Style returns the named style, or a zero style for unknown names.
func Style(name string) lipgloss.Style {
	return registry[name]
}

// Success prints a success status line.
func Success(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Warning prints a warning status line.
func Warning(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// Error prints an error status line.
func Error(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}

// Info prints an informational status line.
func Info(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

// DisableColor turns off all styling, for plain-text output.
func DisableColor() {
	pterm.DisableColor()
	lipgloss.SetColorProfile(termenv.Ascii)
}
