package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rendis/seqdiag/internal/document"
	"github.com/rendis/seqdiag/pkg/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		inputFormat string
		query       string
		vars        []string
		format      string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a document to Mermaid text",
		Long: `Render a sequence document to Mermaid sequenceDiagram text.

The document is read from the given file, or from stdin when the argument is
"-" or omitted. Variables given with --var override the document's vars.`,
		Example: `  seqdiag render login.yaml
  seqdiag render flow.json --query '.diagrams.login' --var user=bob
  cat doc.toml | seqdiag render - --input-format toml --format markdown -o doc.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			outFormat, err := document.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			overrides, err := parseVars(vars)
			if err != nil {
				return err
			}
			value, source, err := a.readDocument(args, inputFormat)
			if err != nil {
				return err
			}
			r, err := a.renderer()
			if err != nil {
				return err
			}

			res, err := r.Render(cmd.Context(), document.Request{
				Value:  value,
				Query:  query,
				Vars:   overrides,
				Format: outFormat,
				Source: source,
			})
			if err != nil {
				printSchemaError(a.stderr, err)
				return fmt.Errorf("render %s failed", source)
			}
			printIssues(a.stderr, res.Warnings)

			output := strings.TrimRight(res.Output, "\n") + "\n"
			if out == "" {
				_, err = io.WriteString(a.stdout, output)
				return err
			}
			if err := os.WriteFile(out, []byte(output), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(a.stderr, "%s %s\n", styleIconSuccess.Render("✓"), StyleHighlight.Render(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFormat, "input-format", "i", "", "document format: json, yaml, toml, hcl (default: from extension)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq query selecting the document inside the input")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "override a document var (key=value, repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: mermaid or markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write output to file instead of stdout")

	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		inputFormat string
		query       string
	)

	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate a document without rendering it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, source, err := a.readDocument(args, inputFormat)
			if err != nil {
				return err
			}
			r, err := a.renderer()
			if err != nil {
				return err
			}

			result, err := r.Validate(cmd.Context(), document.Request{Value: value, Query: query, Source: source})
			if err != nil {
				printSchemaError(a.stderr, err)
				return fmt.Errorf("validate %s failed", source)
			}

			printIssues(a.stdout, result.Errors)
			printIssues(a.stdout, result.Warnings)
			if !result.Valid() {
				return fmt.Errorf("%s is invalid: %s", source, result.String())
			}
			fmt.Fprintf(a.stdout, "%s %s is valid %s\n",
				styleIconSuccess.Render("✓"), StyleHighlight.Render(source), StyleDim.Render("("+result.String()+")"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFormat, "input-format", "i", "", "document format: json, yaml, toml, hcl (default: from extension)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq query selecting the document inside the input")

	return cmd
}

// readDocument decodes the document named by args. Stdin defaults to YAML,
// which also accepts JSON.
func (a *app) readDocument(args []string, inputFormat string) (any, string, error) {
	var (
		data   []byte
		err    error
		source = "stdin"
		format = document.FormatYAML
	)

	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		source = args[0]
		format = document.FormatFromPath(source)
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, source, fmt.Errorf("read %s: %w", source, err)
	}

	if inputFormat != "" {
		if format, err = document.ParseFormat(inputFormat); err != nil {
			return nil, source, err
		}
	}

	value, err := document.Decode(data, format)
	if err != nil {
		return nil, source, err
	}
	return value, source, nil
}

// parseVars turns key=value pairs into typed values: "3" is a number,
// "true" a bool, and anything YAML cannot parse stays a string.
func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
			v = raw
		}
		vars[key] = v
	}
	return vars, nil
}

// printSchemaError prints a structured error and, for validation failures,
// every issue it carries.
func printSchemaError(w io.Writer, err error) {
	var se *schema.Error
	if !errors.As(err, &se) {
		fmt.Fprintf(w, "%s %v\n", styleIconError.Render("✗"), err)
		return
	}
	if issues, ok := se.Details["errors"].([]schema.ValidationIssue); ok && len(issues) > 0 {
		printIssues(w, issues)
		return
	}
	fmt.Fprintf(w, "%s %s\n", styleIconError.Render("✗"), se.Error())
}
