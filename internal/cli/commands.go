package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/codalotl/editview/internal/diff"
	"github.com/codalotl/editview/internal/extract"
	"github.com/codalotl/editview/internal/highlight"
	"github.com/codalotl/editview/internal/logging"
	"github.com/codalotl/editview/internal/toolview"
	"github.com/codalotl/editview/internal/watch"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

// runState is shared by all commands of one Run. It is populated before any command's RunE.
type runState struct {
	configFile string

	cfg      Config
	logger   *slog.Logger
	closeLog func() error
}

func (s *runState) load(cmd *cobra.Command) error {
	cfg, err := loadConfig(configSources{file: s.configFile, flags: cmd.Flags()})
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger, s.closeLog = logging.New(cfg.LogFile)
	s.logger.Debug("cli: configuration loaded", slog.String("command", cmd.CommandPath()))
	return nil
}

func (s *runState) close() {
	if s.closeLog != nil {
		_ = s.closeLog()
	}
}

func (s *runState) engine() *extract.Engine {
	return extract.New(s.logger)
}

// viewOptions resolves rendering options for output written to w. path selects the highlighting lexer.
func (s *runState) viewOptions(w io.Writer, path string) toolview.RenderOptions {
	color := useColor(s.cfg.Color, w)
	return toolview.RenderOptions{
		Color:        color,
		MaxWidth:     renderWidth(s.cfg.MaxWidth, w),
		ContextLines: s.cfg.ContextLines,
		Highlight:    s.highlighter(path, color),
	}
}

func (s *runState) highlighter(path string, color bool) func(string) string {
	if !color || path == "" {
		return nil
	}
	return highlight.New(path, s.cfg.HighlightStyle).Line
}

func newRootCommand(state *runState) *cobra.Command {
	root := &cobra.Command{
		Use:           "editview",
		Short:         "Show the edit behind a text-replacement tool call.",
		Long:          "editview extracts the file path, old string, and new string from a coding agent's text-replacement tool call (in any of the shapes agents emit, including partially streamed ones) and shows the edit as a diff.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.load(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&state.configFile, "config", "", "additional config file, applied after the user and project config files")
	pf.String(flagName("color"), colorAuto, "when to use color: auto, always, or never")
	pf.Int(flagName("max_width"), configDefaults["max_width"].(int), "maximum rendered line width")
	pf.Int(flagName("context_lines"), configDefaults["context_lines"].(int), "unchanged lines shown around each change (-1 shows all)")

	root.AddCommand(
		newDiffCommand(state),
		newExtractCommand(state),
		newShowCommand(state),
		newWatchCommand(state),
		newNormalizeCommand(state),
		newConfigCommand(state),
		newVersionCommand(),
	)
	return root
}

// flagName returns the flag spelling of a config key.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// usageArgs marks positional-argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

// readInput reads the payload named by args (a path, or "-" / nothing for stdin).
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return b, nil
}

// writeJSON writes v as indented JSON without HTML escaping.
func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err := w.Write(pretty.Pretty(buf.Bytes()))
	return err
}

func newDiffCommand(state *runState) *cobra.Command {
	var chars bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff OLD_FILE NEW_FILE",
		Short: "Diff two files line by line, by position.",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read old file: %w", err)
			}
			newText, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read new file: %w", err)
			}

			out := cmd.OutOrStdout()
			lines := diff.Lines(string(oldText), string(newText))

			if asJSON {
				result := struct {
					Lines []diff.LineChange  `json:"lines"`
					Chars []diff.CharSegment `json:"chars,omitempty"`
					Stats diff.Stats         `json:"stats"`
				}{Lines: lines, Stats: diff.CalculateStats(lines)}
				if chars {
					result.Chars = diff.Chars(string(oldText), string(newText))
				}
				return writeJSON(out, result)
			}

			color := useColor(state.cfg.Color, out)
			if chars {
				_, err := fmt.Fprintln(out, diff.RenderChars(diff.Chars(string(oldText), string(newText)), color))
				return err
			}

			rendered := diff.RenderPretty(lines, diff.RenderOptions{
				Filename:     args[1],
				Color:        color,
				ContextLines: state.cfg.ContextLines,
				MaxWidth:     renderWidth(state.cfg.MaxWidth, out),
				LineNumbers:  true,
				Highlight:    state.highlighter(args[1], color),
			})
			_, err = fmt.Fprintln(out, rendered)
			return err
		},
	}
	cmd.Flags().BoolVar(&chars, "chars", false, "show a character-level diff instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diff as JSON")
	return cmd
}

func newExtractCommand(state *runState) *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "extract [FILE|-]",
		Short: "Print the edit found in a tool-call payload as JSON.",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			engine := state.engine()
			var edit extract.Edit
			if legacy {
				edit = engine.ExtractLegacy(string(content))
			} else {
				edit = engine.Extract(string(content))
			}
			return writeJSON(cmd.OutOrStdout(), edit)
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "also deep-search the payload for camelCase and nested fields")
	return cmd
}

func newShowCommand(state *runState) *cobra.Command {
	var toolFile string
	var streaming bool

	cmd := &cobra.Command{
		Use:   "show [FILE|-]",
		Short: "Render a tool call (and optionally its result) as a diff.",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			in := toolview.Input{Assistant: string(content), Streaming: streaming}
			if toolFile != "" {
				tool, err := os.ReadFile(toolFile)
				if err != nil {
					return fmt.Errorf("read tool result: %w", err)
				}
				in.Tool = string(tool)
			}

			out := cmd.OutOrStdout()
			v := toolview.Build(state.engine(), in)
			if _, err := fmt.Fprintln(out, toolview.Render(v, state.viewOptions(out, v.Path()))); err != nil {
				return err
			}
			return v.Err()
		},
	}
	cmd.Flags().StringVar(&toolFile, "tool", "", "file holding the tool-result payload")
	cmd.Flags().BoolVar(&streaming, "streaming", false, "treat the tool call as still streaming")
	return cmd
}

func newWatchCommand(state *runState) *cobra.Command {
	var toolFile string

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-render a tool call each time its payload file settles.",
		Long:  "watch re-renders FILE every time writes to it settle (see settle_delay). Until the tool-result file given by --tool exists, the call is shown as streaming.",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			engine := state.engine()
			clearFirst := isTerminal(out)

			render := func(content []byte) {
				in := toolview.Input{Assistant: string(content), Streaming: true}
				if toolFile != "" {
					if tool, err := os.ReadFile(toolFile); err == nil {
						in.Tool = string(tool)
						in.Streaming = false
					}
				}
				v := toolview.Build(engine, in)
				if clearFirst {
					fmt.Fprint(out, clearScreen)
				}
				fmt.Fprintln(out, toolview.Render(v, state.viewOptions(out, v.Path())))
			}

			w, err := watch.New(args[0], state.cfg.SettleDelay, state.logger, render)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&toolFile, "tool", "", "file holding the tool-result payload, re-read on every render")
	return cmd
}

func newNormalizeCommand(state *runState) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [FILE|-]",
		Short: "Rewrite a tool-call payload in the canonical tool_execution shape.",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			edit := state.engine().Extract(string(content))
			if edit.IsEmpty() {
				return toolview.ErrNoEdit
			}
			b, err := extract.Canonical(edit)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(pretty.Pretty(b))
			return err
		},
	}
}

func newConfigCommand(state *runState) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeConfigJSON(cmd.OutOrStdout(), state.cfg)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the editview version.",
		Args:  usageArgs(cobra.NoArgs),
		// version works even when the configuration is invalid.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}
