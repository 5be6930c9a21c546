// Command oxydx opens a window and draws a triangle with Direct3D11 until the window is closed.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-dx/config"
	"github.com/Carmen-Shannon/oxy-dx/engine"
	"github.com/Carmen-Shannon/oxy-dx/engine/d3d11"
	"github.com/Carmen-Shannon/oxy-dx/engine/window"
)

// The window message queue and the immediate context belong to the thread that created them.
func init() {
	runtime.LockOSThread()
}

// exitFailure is returned for every failure, matching App.Run.
const exitFailure = -1

// Startup hooks, swapped out by tests.
var (
	newAPI      = d3d11.NewAPI
	newReporter = engine.DialogReporter
)

// cliFlags holds the command line values shared by every subcommand.
type cliFlags struct {
	configPath   string
	title        string
	shaderPath   string
	logLevel     string
	syncInterval uint32
	drivers      []string
	debug        bool
	profile      bool
}

func main() {
	exitCode := 0
	root := newRootCommand(&exitCode)
	if err := root.Execute(); err != nil {
		os.Exit(exitFailure)
	}
	os.Exit(exitCode)
}

// newRootCommand builds the oxydx command tree. The run exit code is written to exitCode.
func newRootCommand(exitCode *int) *cobra.Command {
	flags := &cliFlags{}
	root := &cobra.Command{
		Use:          "oxydx",
		Short:        "Draw a triangle with Direct3D11",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			*exitCode = run(cfg)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "TOML configuration file; unset keys keep their defaults")
	pf.StringVar(&flags.title, "title", "", "window title")
	pf.StringVar(&flags.shaderPath, "shader", "", "HLSL source file holding the vertex and pixel entry points")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.Uint32Var(&flags.syncInterval, "sync-interval", 1, "vertical blanks to wait per present, 0..4")
	pf.StringSliceVar(&flags.drivers, "driver", nil, "driver types to try in order (hardware, warp, reference, software, null)")
	pf.BoolVar(&flags.debug, "debug", false, "enable the Direct3D11 debug layer")
	pf.BoolVar(&flags.profile, "profile", false, "log frame rate and memory statistics once per second")

	root.AddCommand(newConfigCommand(flags))
	return root
}

// newConfigCommand prints the effective configuration, after file and flags are merged, as TOML.
func newConfigCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:          "config",
		Short:        "Print the effective configuration as TOML",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// load reads the configuration file, if any, and layers the flags the user set over it.
func (f *cliFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	o := config.Overrides{
		Title:      f.title,
		ShaderPath: f.shaderPath,
		LogLevel:   f.logLevel,
		Debug:      f.debug,
		Profile:    f.profile,
	}
	if cmd.Flags().Changed("sync-interval") {
		o.SyncInterval = &f.syncInterval
	}
	for _, name := range f.drivers {
		var driver d3d11.DriverType
		if err := driver.UnmarshalText([]byte(name)); err != nil {
			return config.Config{}, fmt.Errorf("--driver: %w", err)
		}
		o.DriverTypes = append(o.DriverTypes, driver)
	}
	return cfg.Apply(o)
}

// run draws until the window closes and returns the process exit code. Failures before the app
// starts are reported the same way the app reports its own.
func run(cfg config.Config) int {
	logger := logrus.New()
	report := newReporter(logger)
	fail := func(op string, err error) int {
		logger.WithError(err).Error(op)
		report(engine.ErrorTitle, fmt.Sprintf("%s: %v", op, err))
		return exitFailure
	}

	if err := cfg.ConfigureLogger(logger); err != nil {
		return fail("configure logger", err)
	}

	api, err := newAPI()
	if err != nil {
		return fail("load direct3d11", err)
	}

	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithLogger(logger),
	)
	return engine.NewApp(api, win, cfg, engine.WithLogger(logger), engine.WithErrorReporter(report)).Run()
}
