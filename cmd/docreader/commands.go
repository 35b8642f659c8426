package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/reader"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type cliOptions struct {
	settingsPath string
	asJSON       bool
	workers      int
	recursive    bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "docreader",
		Short:         "Read and classify aviation compliance documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.settingsPath, "config", config.DefaultSettingsPath, "settings file")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON")

	root.AddCommand(readCmd(opts), classifyCmd(opts), formatsCmd(opts), scanCmd(opts))
	return root
}

func (o *cliOptions) registry() (*reader.Registry, error) {
	settings, err := config.LoadSettings(o.settingsPath)
	if err != nil {
		return nil, err
	}
	return reader.NewDefaultRegistry(settings.Readers, logger_i.NewLogger("docreader")), nil
}

func readCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <file>",
		Short: "Print the text and metadata of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}
			res, err := registry.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, res)
			}

			meta := res.Payload.Metadata
			fmt.Fprintf(out, "file:          %s (%s)\n", meta.Filename, humanize.IBytes(uint64(meta.FileSize)))
			fmt.Fprintf(out, "format:        %s\n", meta.FileExtension)
			fmt.Fprintf(out, "document type: %s\n", meta.DocumentType)
			if meta.Title != "" {
				fmt.Fprintf(out, "title:         %s\n", meta.Title)
			}
			if meta.Author != "" {
				fmt.Fprintf(out, "author:        %s\n", meta.Author)
			}
			fmt.Fprintf(out, "paragraphs:    %d  tables: %d  sections: %d\n", meta.ParagraphCount, meta.TableCount, meta.SectionCount)
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning:       %s\n", w)
			}
			fmt.Fprintf(out, "\n%s\n", res.Payload.Text)
			return nil
		},
	}
}

func classifyCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Print the document type of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}
			results := scanFiles(cmd.Context(), registry, args, 1)
			return printScan(cmd.OutOrStdout(), results, opts.asJSON, false)
		},
	}
}

func formatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the enabled formats and their extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, map[string][]string{"formats": registry.Formats(), "extensions": registry.Extensions()})
			}
			fmt.Fprintf(out, "formats:    %s\n", strings.Join(registry.Formats(), ", "))
			fmt.Fprintf(out, "extensions: %s\n", strings.Join(registry.Extensions(), ", "))
			return nil
		},
	}
}

func scanCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Read every supported document under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.registry()
			if err != nil {
				return err
			}
			paths, err := collectFiles(args[0], opts.recursive, registry.Supports)
			if err != nil {
				return err
			}
			results := scanFiles(cmd.Context(), registry, paths, opts.workers)
			return printScan(cmd.OutOrStdout(), results, opts.asJSON, true)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "files read in parallel")
	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "descend into subdirectories")
	return cmd
}

type scanResult struct {
	Path         string   `json:"path"`
	Format       string   `json:"format,omitempty"`
	DocumentType string   `json:"document_type,omitempty"`
	Title        string   `json:"title,omitempty"`
	Size         int64    `json:"size"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func collectFiles(root string, recursive bool, supported func(string) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// scanFiles reads paths with at most workers reads in flight. A failing file is recorded in
// its result and does not stop the others.
func scanFiles(ctx context.Context, registry *reader.Registry, paths []string, workers int) []scanResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]scanResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = scanOne(ctx, registry, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func scanOne(ctx context.Context, registry *reader.Registry, path string) scanResult {
	res, err := registry.Read(ctx, path)
	if err != nil {
		return scanResult{Path: path, Error: err.Error()}
	}
	meta := res.Payload.Metadata
	out := scanResult{
		Path:         path,
		Format:       meta.FileExtension,
		DocumentType: string(meta.DocumentType),
		Title:        meta.Title,
		Size:         meta.FileSize,
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

func printScan(out io.Writer, results []scanResult, asJSON bool, summary bool) error {
	if asJSON {
		return writeJSON(out, results)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tFORMAT\tTYPE\tSIZE\tNOTE")
	byType := map[string]int{}
	failed := 0
	for _, r := range results {
		note := strings.Join(r.Warnings, "; ")
		if r.Error != "" {
			failed++
			note = r.Error
		} else {
			byType[r.DocumentType]++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Path, r.Format, r.DocumentType, humanize.IBytes(uint64(r.Size)), note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if summary {
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, fmt.Sprintf("%s=%d", t, byType[t]))
		}
		fmt.Fprintf(out, "\n%s documents read, %d failed", humanize.Comma(int64(len(results)-failed)), failed)
		if len(parts) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(parts, ", "))
		}
		fmt.Fprintln(out)
	}
	if failed > 0 && failed == len(results) {
		return fmt.Errorf("no document could be read")
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
