// gen-diagrams regenerates the sample diagrams embedded in the README.
// Run: go run ./cmd/gen-diagrams (or --check in CI)
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/spf13/cobra"
)

var (
	user    = diagram.NewActor("user")
	api     = diagram.NewActor("api")
	auth    = diagram.NewActor("auth")
	db      = diagram.NewActor("db")
	queue   = diagram.NewActor("queue")
	worker  = diagram.NewActor("worker")
	billing = diagram.NewActor("billing")
)

type sample struct {
	name  string
	title string
	build func(*diagram.Handle)
}

var samples = []sample{
	{name: "login", title: "Login", build: func(h *diagram.Handle) {
		h.Autonumber()
		h.Participants(user, api, auth)
		h.SolidArrow(user, api, "POST /login", diagram.Activating())
		h.SolidArrow(api, auth, "verify(credentials)")
		h.Alternative("credentials valid", func(a *diagram.AltHandle) {
			a.DottedArrow(auth, api, "token")
			a.DottedArrow(api, user, "200 OK", diagram.Deactivating())
			a.ElseClause("credentials invalid", func(h *diagram.Handle) {
				h.DottedCross(auth, api, "rejected")
				h.DottedArrow(api, user, "401 Unauthorized", diagram.Deactivating())
			})
		})
	}},
	{name: "retry", title: "Retry with backoff", build: func(h *diagram.Handle) {
		h.Activate(worker)
		h.Loop("up to 3 attempts", func(h *diagram.Handle) {
			h.SolidArrow(worker, db, "UPDATE orders")
			h.NoteRight(db, "row lock")
			h.Optional("timeout", func(h *diagram.Handle) {
				h.NoteOver(worker, "sleep 2^n s")
			})
		})
		h.Highlight("yellow", func(h *diagram.Handle) {
			h.SolidOpen(worker, queue, "ack")
		})
		h.Deactivate(worker)
	}},
	{name: "fanout", title: "Order fan-out", build: func(h *diagram.Handle) {
		h.SolidArrow(api, queue, "order.created")
		h.Parallel("deliver", func(p *diagram.ParHandle) {
			p.SolidArrow(queue, worker, "order.created")
			p.AndClause("", func(h *diagram.Handle) {
				h.SolidArrow(queue, billing, "order.created")
			})
		})
		h.NoteOverPair(worker, billing, "consumers are idempotent")
		h.Highlight("gray", func(h *diagram.Handle) {
			h.DottedLine(billing, queue, "commit offset")
		})
	}},
}

// generate renders every sample to its markdown asset, keyed by file name.
func generate() (map[string][]byte, error) {
	files := make(map[string][]byte, len(samples)+1)
	sums := make(map[string]string, len(samples))
	for _, s := range samples {
		mermaid, err := diagram.Render(s.build)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		name := s.name + ".md"
		content := []byte(diagram.RenderMarkdown(s.title, mermaid))
		sum, err := sha256Hex(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		files[name] = content
		sums[name] = sum
	}
	files[sumsFile] = formatChecksumFile(sums)
	return files, nil
}

func writeAssets(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range sortedNames(files) {
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0o644); err != nil {
			return err
		}
	}
	return nil
}

// checkAssets reports every asset in dir that is missing, edited by hand, or
// stale relative to files.
func checkAssets(dir string, files map[string][]byte) error {
	want, err := parseChecksumFile(bytes.NewReader(files[sumsFile]))
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(dir, sumsFile))
	if err != nil {
		return fmt.Errorf("assets not generated: %w", err)
	}
	defer f.Close()
	recorded, err := parseChecksumFile(f)
	if err != nil {
		return err
	}

	var stale []string
	for _, name := range sortedNames(files) {
		if name == sumsFile {
			continue
		}
		got, err := sha256File(filepath.Join(dir, name))
		if err != nil || got != want[name] || recorded[name] != want[name] {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		return fmt.Errorf("stale diagram assets in %s: %v (run go run ./cmd/gen-diagrams)", dir, stale)
	}
	return nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newRootCmd() *cobra.Command {
	var (
		dir   string
		check bool
	)

	cmd := &cobra.Command{
		Use:          "gen-diagrams",
		Short:        "Regenerate the sample diagrams under docs/assets",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := generate()
			if err != nil {
				return err
			}
			if check {
				return checkAssets(dir, files)
			}
			if err := writeAssets(dir, files); err != nil {
				return err
			}
			for _, s := range samples {
				fmt.Fprintf(cmd.OutOrStdout(), "=== %s ===\n%s\n", s.name, files[s.name+".md"])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", filepath.Join("docs", "assets"), "output directory")
	cmd.Flags().BoolVar(&check, "check", false, "verify the assets are up to date instead of writing them")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
