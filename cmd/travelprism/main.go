package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CaptShanks/travelprism/internal/config"
	"github.com/CaptShanks/travelprism/internal/history"
	"github.com/CaptShanks/travelprism/internal/tui"
	"github.com/CaptShanks/travelprism/internal/updater"
)

const version = "0.1.0"

// app carries what every command needs once configuration is loaded
type app struct {
	cfg     config.Config
	store   *history.Store
	checker *updater.Checker // nil when update checks are disabled
	logger  *log.Logger
	noColor bool
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var opts renderOptions

	root := &cobra.Command{
		Use:   "travelprism [file|-]",
		Short: "Travel-Prism - travel searches through a browser agent, rendered as tables",
		Long: `Travel-Prism hands resort and flight searches to an external browser
agent and renders its answers. Resort answers become a five-column table
(name, location, amenities, restaurants, spa offerings). Every answer is
kept in ~/.travelprism for later viewing.

With a file argument (or - / piped stdin) it renders a saved resort answer.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return a.runViewMode(cmd, input, opts)
		},
	}

	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colors and use an ASCII table")
	opts.register(root)

	root.AddCommand(
		newResortsCmd(a),
		newFlightsCmd(a),
		newTaskCmd(),
		newHistoryCmd(a),
		newVersionCmd(a),
		newUpgradeCmd(a),
	)
	return root
}

// setup loads configuration and applies logging and theme settings
func (a *app) setup() error {
	configDir, err := history.DefaultDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(viper.New(), config.Options{ConfigDir: configDir, EnvFile: ".env"})
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "travelprism"})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		a.logger.SetLevel(level)
	} else {
		a.logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}
	log.SetDefault(a.logger)

	switch cfg.Theme {
	case "light":
		tui.SetLightPalette()
	case "dark":
		tui.SetDarkPalette()
	}
	if cfg.NoColor {
		a.noColor = true
	}

	a.store = history.NewStore(cfg.HistoryDir, cfg.HistoryMaxFiles)
	if !cfg.SkipUpdateCheck {
		a.checker = updater.NewChecker(configDir, cfg.UpdateCheckInterval)
	}
	return nil
}

func (a *app) styled() bool {
	return !a.noColor
}

// runViewMode renders a saved agent answer from a file or stdin
func (a *app) runViewMode(cmd *cobra.Command, inputFile string, opts renderOptions) error {
	var input io.Reader

	if inputFile != "" && inputFile != "-" {
		file, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}
		defer file.Close()
		input = file
	} else {
		input = cmd.InOrStdin()
		if f, ok := input.(*os.File); ok {
			stat, _ := f.Stat()
			if stat == nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				return cmd.Help()
			}
		}
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return a.renderResorts(cmd.OutOrStdout(), history.ExtractAnswer(string(data)), "Resort Search", opts)
}
