// Package topics extends cobra's help with long-form documentation topics
// served from an fs.FS, so guides ship embedded in the binary and stay
// available offline. `slap help <topic>` renders a topic; `slap help topics`
// lists them.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one loaded documentation page.
type Topic struct {
	Name    string
	Format  string // file extension, drives renderer selection
	Content string
}

// Options configures Initialize.
type Options struct {
	// Extensions lists the file extensions treated as topics.
	// Defaults to [".md", ".txt"].
	Extensions []string

	// Renderer formats topic content for the terminal.
	// Defaults to PlainRenderer.
	Renderer Renderer
}

// Manager holds the loaded topics and the help override.
type Manager struct {
	topics       map[string]*Topic
	renderer     Renderer
	originalHelp func(*cobra.Command, []string)
}

// Load reads every topic file from fsys (non-recursively).
func Load(fsys fs.FS, opts Options) (*Manager, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".md", ".txt"}
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = &PlainRenderer{}
	}

	m := &Manager{
		topics:   make(map[string]*Topic),
		renderer: renderer,
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read topics: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		ok := false
		for _, e := range exts {
			if ext == e {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read topic %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		m.topics[name] = &Topic{Name: name, Format: ext, Content: string(content)}
	}
	return m, nil
}

// Get returns the topic by name, tolerating flag-style spellings
// ("--dry-run" finds "dry-run").
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	topic, ok := m.topics[name]
	return topic, ok
}

// List returns the sorted topic names.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render formats a topic body for display.
func (m *Manager) Render(topic *Topic) string {
	return m.renderer.Render(topic.Content, topic.Format)
}

// Initialize loads topics from fsys and replaces the root help command with
// one that also serves them. Commands keep priority: a topic can never
// shadow a command's own help.
func Initialize(rootCmd *cobra.Command, fsys fs.FS, opts Options) error {
	m, err := Load(fsys, opts)
	if err != nil {
		return err
	}
	m.originalHelp = rootCmd.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf(`Help provides help for any command or topic.
Type %[1]s help [command or topic] for full details.

To see all available topics:
  %[1]s help topics`, rootCmd.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.List()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				m.originalHelp(rootCmd, nil)
				return
			}
			if args[0] == "topics" {
				m.printTopicList(rootCmd.Name())
				return
			}
			// Commands win over topics of the same name.
			if target, _, err := rootCmd.Find(args); err == nil && target != rootCmd {
				m.originalHelp(target, nil)
				return
			}
			if topic, ok := m.Get(args[0]); ok {
				fmt.Print(m.Render(topic))
				return
			}
			m.originalHelp(rootCmd, args)
		},
	}

	rootCmd.SetHelpCommand(helpCmd)
	return nil
}

func (m *Manager) printTopicList(program string) {
	names := m.List()
	if len(names) == 0 {
		fmt.Println("No help topics available.")
		return
	}
	fmt.Println("Available help topics:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("\nUse '%s help <topic>' to read a topic.\n", program)
}
