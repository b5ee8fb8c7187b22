package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/action"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/session"
	"github.com/dshills/inkwell/internal/store"
	"github.com/dshills/inkwell/internal/tree"
)

// env is the state shared by every command.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	stdin  io.Reader
	stdout io.Writer
}

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(e *env, args []string) error
}

var commands = []command{
	{"normalize", "normalize <file>", "Normalize a document and print it", 1, 1, cmdNormalize},
	{"actions", "actions [file]", "List actions and their state", 0, 1, cmdActions},
	{"search", "search <query> [file]", "Rank actions by title", 1, 2, cmdSearch},
	{"check", "check <file>", "Spellcheck a document", 1, 1, cmdCheck},
	{"save", "save <id> <file>", "Normalize a document and store it", 2, 2, cmdSave},
	{"load", "load <id>", "Print a stored document", 1, 1, cmdLoad},
	{"list", "list", "List stored documents", 0, 0, cmdList},
	{"delete", "delete <id>", "Delete a stored document", 1, 1, cmdDelete},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// session opens a one-shot session. Plugin watching is never started.
func (e *env) session() (*session.Session, error) {
	cfg := *e.cfg
	cfg.Plugins.Watch = false
	return session.New(&cfg, session.WithLogger(e.logger))
}

func (e *env) read(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(name)
}

// open reads the named document into a new session.
func (e *env) open(name string) (*session.Session, error) {
	data, err := e.read(name)
	if err != nil {
		return nil, err
	}
	s, err := e.session()
	if err != nil {
		return nil, err
	}
	if err := s.Open(data); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return s, nil
}

func (e *env) store() (*store.Store, error) {
	return store.Open(e.ctx, e.cfg.Store.Path)
}

func (e *env) printNodes(nodes []tree.Node) error {
	data, err := tree.MarshalNodes(nodes)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(e.stdout)
	return err
}

func cmdNormalize(e *env, args []string) error {
	s, err := e.open(args[0])
	if err != nil {
		return err
	}
	defer s.Close()
	return e.printNodes(s.Editor().Snapshot())
}

func cmdActions(e *env, args []string) error {
	var (
		s   *session.Session
		err error
	)
	if len(args) == 1 {
		s, err = e.open(args[0])
	} else {
		s, err = e.session()
	}
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tHOTKEY\tSTATE")
	for _, item := range s.Actions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Name, item.Title, item.Hotkey, state(item))
	}
	return tw.Flush()
}

// cmdSearch lists the actions whose titles match the query, best first.
func cmdSearch(e *env, args []string) error {
	var (
		s   *session.Session
		err error
	)
	if len(args) == 2 {
		s, err = e.open(args[1])
	} else {
		s, err = e.session()
	}
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tSCORE")
	for _, m := range action.Search(s.Actions(), args[0], 0) {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", m.Name, m.Title, m.Score)
	}
	return tw.Flush()
}

func state(item action.Item) string {
	var parts []string
	if item.State.Visible {
		parts = append(parts, "visible")
	}
	if item.State.Enabled {
		parts = append(parts, "enabled")
	}
	if item.State.Active {
		parts = append(parts, "active")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

// cmdCheck prints one line per misspelling: the root block index, the byte
// offset in the block text, the word and its suggestions.
func cmdCheck(e *env, args []string) error {
	s, err := e.open(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Check(e.ctx); err != nil {
		return err
	}
	findings := s.Findings()
	word := color.New(color.FgRed, color.Bold).SprintFunc()
	for i, n := range s.Editor().Snapshot() {
		el, ok := n.(*tree.Element)
		if !ok {
			continue
		}
		for _, f := range findings[el.ID] {
			fmt.Fprintf(e.stdout, "%d:%d: %s", i, f.Offset, word(f.Text))
			if len(f.Subs) > 0 {
				fmt.Fprintf(e.stdout, " (%s)", strings.Join(f.Subs, ", "))
			}
			fmt.Fprintln(e.stdout)
		}
	}
	return nil
}

func cmdSave(e *env, args []string) error {
	s, err := e.open(args[1])
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := e.store()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(e.ctx, args[0], s.Editor().Snapshot()); err != nil {
		return err
	}
	e.logger.Info("document saved", zap.String("id", args[0]), zap.String("path", e.cfg.Store.Path))
	return nil
}

// cmdLoad prints a stored document after normalizing it with the current
// plugins.
func cmdLoad(e *env, args []string) error {
	st, err := e.store()
	if err != nil {
		return err
	}
	defer st.Close()
	nodes, err := st.Load(e.ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	s, err := e.session()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Editor().Load(nodes); err != nil {
		return err
	}
	return e.printNodes(s.Editor().Snapshot())
}

func cmdList(e *env, _ []string) error {
	st, err := e.store()
	if err != nil {
		return err
	}
	defer st.Close()
	docs, err := st.List(e.ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Title, d.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func cmdDelete(e *env, args []string) error {
	st, err := e.store()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Delete(e.ctx, args[0]); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}
