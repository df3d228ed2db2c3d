package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/launchdash/dashboard/internal/api"
	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/export"
	"github.com/launchdash/dashboard/internal/monitor"
	"github.com/launchdash/dashboard/internal/server"
	"github.com/launchdash/dashboard/pkg/core"
)

const statusInterval = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := initStorage()
	if err != nil {
		return err
	}
	defer closeStorage(backend)

	table, err := loadTable(backend)
	if err != nil {
		return err
	}

	stack, err := newCallbackStack(ctx, table, true)
	if err != nil {
		return err
	}
	defer stack.Close()

	var srv *server.Server
	var statusFile string
	if logsDir := viper.GetString("logsDir"); logsDir != "" {
		statusFile = filepath.Join(logsDir, AppName+".status.json")
	}
	monitorService := monitor.NewService(monitor.Dependencies{
		Callbacks:   stack.callbacks,
		Cache:       stack.cache,
		StorageType: storageType,
		Dataset:     backend.LatestDataset,
		Sessions: func() int {
			if srv == nil {
				return 0
			}
			return srv.Hub().Len()
		},
		StatusFile: statusFile,
		Logger:     Logger,
	})

	srv, err = server.New(server.Dependencies{
		Callbacks: stack.callbacks,
		Layout:    layoutFor(table),
		Monitor:   monitorService,
		Logger:    Logger,
	})
	if err != nil {
		return err
	}

	if err := monitorService.Start(statusInterval); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}
	defer monitorService.Stop()

	serverCfg := config.GetServerConfig()
	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard running on http://%s/\n", serverCfg.Addr())
	return srv.Run(ctx, serverCfg)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Parse the launch CSV and store it in the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(backend)

			info, err := importCSV(backend)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d launches into dataset %d (%d skipped) from %s\n",
				info.Rows, info.ID, info.Skipped, info.SourcePath)
			return nil
		},
	}
}

// inputFlags are the dashboard inputs selectable from the command line.
type inputFlags struct {
	site string
	min  float64
	max  float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.site, "site", core.AllSites, "launch site, or All")
	cmd.Flags().Float64Var(&f.min, "min", 0, "lower payload bound (kg)")
	cmd.Flags().Float64Var(&f.max, "max", 0, "upper payload bound (kg)")
}

// inputs builds the dashboard inputs. An unset bound takes its value from
// def; with both bounds unset the payload is left to the server.
func (f *inputFlags) inputs(cmd *cobra.Command, def core.PayloadRange) core.Inputs {
	in := core.Inputs{Site: f.site}
	minSet, maxSet := cmd.Flags().Changed("min"), cmd.Flags().Changed("max")
	if !minSet && !maxSet {
		return in
	}
	r := def
	if minSet {
		r[0] = f.min
	}
	if maxSet {
		r[1] = f.max
	}
	in.Payload = &r
	return in
}

func newExportCmd() *cobra.Command {
	var (
		opts   export.Options
		inputs inputFlags
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the layout and both figures to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := initStorage()
			if err != nil {
				return err
			}
			defer closeStorage(backend)

			table, err := loadTable(backend)
			if err != nil {
				return err
			}
			stack, err := newCallbackStack(cmd.Context(), table, false)
			if err != nil {
				return err
			}
			defer stack.Close()

			in := inputs.inputs(cmd, table.DefaultPayload())
			var figs []export.Named
			for _, o := range callbacks.Graph {
				f, err := stack.callbacks.Figure(o.ID, in)
				if err != nil {
					return fmt.Errorf("failed to build %s: %w", o.ID, err)
				}
				figs = append(figs, export.Named{Output: o.ID, Figure: f})
			}

			written, err := export.New(opts, ZLogger).Export(layoutFor(table), figs)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Dir, "out", "export", "output directory")
	cmd.Flags().BoolVar(&opts.Gzip, "gzip", false, "gzip the JSON files")
	cmd.Flags().BoolVar(&opts.PNG, "png", false, "render a PNG per figure")
	cmd.Flags().BoolVar(&opts.HTML, "html", false, "write a standalone HTML page")
	inputs.register(cmd)
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	var (
		serverURL string
		outDir    string
		compress  bool
		png       bool
		inputs    inputFlags
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the figures of a running dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := api.New(serverURL)
			if err := client.Healthcheck(); err != nil {
				return fmt.Errorf("dashboard at %s is not healthy: %w", serverURL, err)
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			layout, err := client.Layout()
			if err != nil {
				return err
			}
			path, err := export.WriteJSON(filepath.Join(outDir, export.LayoutFile), layout, compress)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)

			// an unset bound keeps the value the page starts with
			var def core.PayloadRange
			if s, ok := layout.Component(core.PayloadSlider); ok && s.Slider != nil {
				def = s.Slider.Value
			}
			in := inputs.inputs(cmd, def)

			for _, o := range callbacks.Graph {
				opt, err := client.Figure(o.ID, in)
				if err != nil {
					return fmt.Errorf("failed to fetch %s: %w", o.ID, err)
				}
				path, err := export.WriteJSON(filepath.Join(outDir, o.ID+".json"), opt, compress)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)

				if !png {
					continue
				}
				img, err := client.FigurePNG(o.ID, in)
				var statusErr *api.StatusError
				if errors.As(err, &statusErr) && statusErr.Status == 422 {
					Logger.Info("Figure has nothing to draw, skipping PNG", "output", o.ID)
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to fetch %s PNG: %w", o.ID, err)
				}
				path = filepath.Join(outDir, o.ID+".png")
				if err := export.WriteFile(path, img); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}

			status, err := client.Status()
			if err != nil {
				Logger.Warn("Dashboard status unavailable", "error", err)
				return nil
			}
			path, err = export.WriteJSON(filepath.Join(outDir, "status.json"), status, compress)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8050", "dashboard base URL")
	cmd.Flags().StringVar(&outDir, "out", "snapshot", "output directory")
	cmd.Flags().BoolVar(&compress, "gzip", false, "gzip the JSON files")
	cmd.Flags().BoolVar(&png, "png", false, "also fetch a PNG per figure")
	inputs.register(cmd)
	return cmd
}
