package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/selection"
)

var exploreFinal bool

func init() {
	exploreCmd.Flags().BoolVar(&exploreFinal, "final", false, "Only output the view after the last event")
	rootCmd.AddCommand(exploreCmd)
}

var exploreCmd = &cobra.Command{
	Use:   "explore [script]",
	Short: "Drive an explorer session from an event script",
	Long: `Replay a script of user interactions against an explorer session and print
the resulting view after each one. The script is read from the given file, or
from stdin when no file (or "-") is given.

One event per line; blank lines and lines starting with # are ignored:
  search <term>     type into the search box
  submit            press enter in the search box
  pick <id>         choose a search result
  select <id>       choose a paper from the popular list
  click <id>        click a node of the graph
  hover [<id>]      hover a node, or leave it when no id is given
  focus             focus the search box
  blur              the search box lost focus
  outside           click outside the search box
  activate <id>     activate a dropdown item with the keyboard

Lines starting with { are read as JSON events, as sent over the explorer
websocket, e.g. {"type":"search_input","term":"attention"}.

Output is one JSON view per line (JSON Lines).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplore,
}

// ExploreStep is one line of explore output.
type ExploreStep struct {
	Line  int            `json:"line"`
	Event string         `json:"event"`
	View  selection.View `json:"view"`
}

func runExplore(cmd *cobra.Command, args []string) error {
	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitError, "opening script: %v", err)
		}
		defer f.Close()
		in = f
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	loader, err := newLoader(cmd.Context(), root, cfg)
	if err != nil {
		exitWithError(ExitConfigError, "configuring document source: %v", err)
	}
	store := datastore.NewStore()
	if _, err := store.Load(cmd.Context(), loader); err != nil {
		exitWithLoadError(err)
	}

	ctrl := selection.NewController(store, cfg.GraphOptions())
	defer ctrl.Close()

	var last *ExploreStep
	err = readScript(in, func(line int, ev selection.Event) {
		step := ExploreStep{Line: line, Event: ev.Type(), View: ctrl.Dispatch(ev)}
		last = &step
		if exploreFinal {
			return
		}
		if humanOutput {
			printStep(step)
		} else {
			outputJSONCompact(step)
		}
	})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if exploreFinal && last != nil {
		if humanOutput {
			printStep(*last)
			return nil
		}
		return outputJSONCompact(last)
	}
	return nil
}

// readScript parses each script line and passes the event to fn.
// Parsing stops at the first malformed line.
func readScript(r io.Reader, fn func(line int, ev selection.Event)) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		ev, err := parseScriptLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if ev == nil {
			continue
		}
		fn(lineNum, ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return nil
}

// parseScriptLine converts one script line to an event.
// Returns a nil event for blank and comment lines.
func parseScriptLine(line string) (selection.Event, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		return selection.DecodeEvent([]byte(trimmed))
	}

	verb, rest, _ := strings.Cut(trimmed, " ")
	switch verb {
	case "search":
		return selection.SearchInput{Term: rest}, nil
	case "submit":
		return selection.SubmitSearch{}, nil
	case "focus":
		return selection.Focus{}, nil
	case "blur":
		return selection.BlurAfterDelay{}, nil
	case "outside":
		return selection.ClickOutside{}, nil
	case "hover":
		if strings.TrimSpace(rest) == "" {
			return selection.NodeHover{}, nil
		}
		id, err := paper.ParseID(rest)
		if err != nil {
			return nil, err
		}
		return selection.NodeHover{ID: &id}, nil
	case "pick", "select", "click", "activate":
		id, err := paper.ParseID(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", verb, err)
		}
		switch verb {
		case "pick":
			return selection.PickFromList{ID: id}, nil
		case "select":
			return selection.Select{ID: id}, nil
		case "click":
			return selection.NodeClick{ID: id}, nil
		default:
			return selection.ItemActivated{ID: id}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", selection.ErrUnknownEvent, verb)
	}
}

// printStep prints a compact human summary of the view after one event.
func printStep(step ExploreStep) {
	state := step.View.State
	styleInfo.Printf("%d: %s\n", step.Line, step.Event)

	if state.SearchTerm != "" || len(state.Results) > 0 {
		dropdown := "closed"
		if state.DropdownVisible {
			dropdown = "open"
		}
		fmt.Printf("  search %q: %d results, dropdown %s\n", state.SearchTerm, len(state.Results), dropdown)
	}
	if id, ok := state.Selected(); ok {
		center, _ := step.View.Graph.Center()
		fmt.Printf("  viewing %s %s, %d neighbors\n",
			styleCenter.Sprint(truncateString(center.Label, GraphTitleMaxLen)),
			styleSubtle.Sprintf("(%d)", id),
			len(step.View.Graph.Links))
	}
	if id, ok := state.Hovered(); ok {
		if node, found := step.View.Graph.Node(id); found {
			fmt.Printf("  hovering %s\n", truncateString(node.Label, GraphTitleMaxLen))
		}
	}
}
