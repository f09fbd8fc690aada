package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familygraph/internal/config"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGold)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TuneModel - Interactive view settings editor
// =============================================================================

// TuneModel is the bubbletea model for editing view settings. Every change
// goes through the store as a whole-value replacement.
type TuneModel struct {
	Store   *settings.Store
	Initial settings.Settings
	Cursor  int
	Saved   bool
	Quit    bool
}

// NewTuneModel creates a tune model over store.
func NewTuneModel(store *settings.Store) TuneModel {
	return TuneModel{Store: store, Initial: store.Get()}
}

func (m TuneModel) Init() tea.Cmd {
	return nil
}

// cycle moves the selected setting to the next (dir=1) or previous (dir=-1)
// allowed value.
func (m TuneModel) cycle(dir int) {
	key := settings.Keys[m.Cursor]
	opts := settings.Options(key)
	m.Store.Update(func(s settings.Settings) settings.Settings {
		cur, _ := s.Get(key)
		i := slices.Index(opts, cur)
		next := opts[(i+dir+len(opts))%len(opts)]
		out, err := s.Parse(key, next)
		if err != nil {
			return s
		}
		return out
	})
}

func (m TuneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quit = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(settings.Keys)-1 {
				m.Cursor++
			}
		case "right", "l", " ":
			m.cycle(1)
		case "left", "h":
			m.cycle(-1)
		case "r":
			m.Store.Replace(settings.Default())
		case "enter", "s":
			m.Saved = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m TuneModel) View() string {
	var b strings.Builder
	cur := m.Store.Get()

	b.WriteString(StyleTitle.Render("View Settings"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ change  r reset  ⏎ save  q quit"))
	b.WriteString("\n\n")

	for i, key := range settings.Keys {
		val, _ := cur.Get(key)
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		choices := make([]string, 0, 3)
		for _, o := range settings.Options(key) {
			if o == val {
				choices = append(choices, style.Render(o))
			} else {
				choices = append(choices, listDimStyle.Render(o))
			}
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", cursor, style.Render(key), strings.Join(choices, listDimStyle.Render(" · "))))
	}

	b.WriteString("\n")
	change := settings.Diff(m.Initial, cur)
	switch {
	case change.None():
		b.WriteString(listDimStyle.Render("  unchanged"))
	case change.ThemeOnly():
		b.WriteString(StyleSuccess.Render("  re-skin only, layout is kept"))
	default:
		b.WriteString(StyleWarning.Render("  changes " + change.String() + ", layout will rebuild"))
	}
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// tuneCommand creates the tune command.
func (c *CLI) tuneCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Edit the saved view settings",
		Long: `Tune opens an interactive editor for the layout mode, link style, theme,
node shape and particles. Saved settings are written to the [view] section
of the config file and used by render and serve.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTune(cmd.Context(), printOnly)
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the current settings as TOML and exit")
	return cmd
}

func (c *CLI) runTune(ctx context.Context, printOnly bool) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if printOnly {
		return settings.Encode(os.Stdout, cfg.View)
	}

	store := settings.NewStore(cfg.View)
	unsubscribe := store.Subscribe(func(prev, next settings.Settings) {
		logger.Debug("settings changed", "change", settings.Diff(prev, next).String())
	})
	defer unsubscribe()

	final, err := tea.NewProgram(NewTuneModel(store), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(TuneModel)
	if !ok || !m.Saved {
		printInfo("Settings not saved")
		return nil
	}

	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	if err := config.SaveView(path, store.Get()); err != nil {
		return err
	}
	printSuccess("Saved view settings")
	printDetail("%s", store.Get().String())
	printFile(path)
	return nil
}
