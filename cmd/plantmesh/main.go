// Command plantmesh converts plant scene descriptions into triangle meshes
// and facet-group instance maps.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/chazu/plantmesh/pkg/config"
	"github.com/chazu/plantmesh/pkg/export"
	"github.com/chazu/plantmesh/pkg/primitive"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:          "plantmesh",
		Short:        "Tessellate plant models and deduplicate repeated facet groups",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "TOML configuration file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newTessellateCmd(g),
		newInstanceCmd(g),
		newValidateCmd(g),
		newConfigCmd(g),
	)
	return root
}

// load reads the configuration and builds the logger for cmd.
func (g *globalOptions) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, nil, err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return cfg, nil, err
	}
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// readSource reads a scene file, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createOutput opens path for writing, or standard output for "" and "-".
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

// writeTo creates path, runs write on it and closes it, keeping the first
// error.
func writeTo(cmd *cobra.Command, path string, write func(io.Writer) error) (err error) {
	w, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return write(w)
}

func newTessellateCmd(g *globalOptions) *cobra.Command {
	var (
		output     string
		preview    bool
		kernelName string
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "tessellate SCENE",
		Short: "Write the tessellated scene as Wavefront OBJ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("preview") {
				cfg.Tessellate.Preview = preview
			}
			if cmd.Flags().Changed("preview-kernel") {
				cfg.Tessellate.PreviewKernel = kernelName
			}
			if cmd.Flags().Changed("workers") {
				cfg.Tessellate.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			p := NewPipeline(cfg, logger)
			s, err := p.Load(cmd.Context(), source)
			if err != nil {
				return err
			}
			meshes, err := p.Tessellate(cmd.Context(), s)
			if err != nil {
				return err
			}
			return writeTo(cmd, output, func(w io.Writer) error {
				return export.WriteOBJ(w, meshes)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "OBJ output file")
	cmd.Flags().BoolVar(&preview, "preview", false, "approximate kinds without a tessellation")
	cmd.Flags().StringVar(&kernelName, "preview-kernel", "sdfx", "preview kernel, sdfx or manifold")
	cmd.Flags().IntVar(&workers, "workers", 0, "primitives tessellated in parallel, 0 for all CPUs")
	return cmd
}

func newInstanceCmd(g *globalOptions) *cobra.Command {
	var (
		output    string
		tolerance float64
	)
	cmd := &cobra.Command{
		Use:   "instance SCENE",
		Short: "Write the facet-group instance map as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tolerance") {
				cfg.Instancing.Tolerance = tolerance
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			p := NewPipeline(cfg, logger)
			s, err := p.Load(cmd.Context(), source)
			if err != nil {
				return err
			}
			res, err := p.Instance(cmd.Context(), s)
			if err != nil {
				return err
			}
			return writeTo(cmd, output, func(w io.Writer) error {
				return export.WriteInstanceMap(w, export.NewInstanceMap(s, res))
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "JSON output file")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "max vertex distance when verifying a match")
	return cmd
}

func newValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate SCENE",
		Short: "Report validation errors and warnings for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			s, err := NewPipeline(cfg, logger).Evaluate(cmd.Context(), source)
			if err != nil {
				return err
			}
			res := primitive.Validate(s)
			out := cmd.OutOrStdout()
			for _, e := range slices.Concat(res.Errors, res.Warnings) {
				fmt.Fprintln(out, e)
			}
			fmt.Fprintf(out, "%d primitives, %d errors, %d warnings\n", s.Len(), len(res.Errors), len(res.Warnings))
			if !res.OK() {
				return &InvalidSceneError{Result: res}
			}
			return nil
		},
	}
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load(cmd)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}
