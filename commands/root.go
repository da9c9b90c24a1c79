package commands

import (
	"io"
	"os"
	"strconv"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/openintegrity/oi-audit/util/cobrautil"
	"github.com/openintegrity/oi-audit/util/cobrautil/completion"
	"github.com/openintegrity/oi-audit/util/confutil"
	"github.com/openintegrity/oi-audit/util/logutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Streams are the standard streams a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process standard streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type rootOptions struct {
	chdir      string
	configFile string
	format     string

	verbose bool
	debug   bool
	quiet   bool

	color       *bool
	interactive *bool
	noStandards bool
}

// verbosity returns the verbosity selected on the command line, or an empty
// string when none of the flags was given.
func (o *rootOptions) verbosity() string {
	switch {
	case o.debug:
		return confutil.VerbosityDebug
	case o.verbose:
		return confutil.VerbosityVerbose
	case o.quiet:
		return confutil.VerbosityQuiet
	}
	return ""
}

func NewRootCmd(name string, streams Streams) *cobra.Command {
	options := &rootOptions{}

	cmd := &cobra.Command{
		Use:   name + " [OPTIONS]",
		Short: "Audit the inception commit of a git repository",
		Long: `Audit the inception commit of a git repository against the Open Integrity
Progressive Trust model: structural wholeness, cryptographic proof, identity
reference and community standards.`,
		Args:                  usageArgs(cobra.NoArgs),
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		ValidArgsFunction:     completion.Disable,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, streams, options)
		},
		RunE: cobrautil.ConfigureContext(func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), streams, options)
		}),
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return audit.Wrap(audit.UsageError, err, "Run '"+c.CommandPath()+" --help' for usage.")
	})

	flags := cmd.PersistentFlags()
	rootFlags(options, flags)
	_ = cmd.RegisterFlagCompletionFunc("format", completion.Values("text", "json"))

	addCommands(cmd, streams, options)
	return cmd
}

func addCommands(cmd *cobra.Command, streams Streams, rootOpts *rootOptions) {
	cmd.AddCommand(
		auditCmd(streams, rootOpts),
		versionCmd(streams),
	)
}

func rootFlags(options *rootOptions, flags *pflag.FlagSet) {
	flags.StringVarP(&options.chdir, "chdir", "C", "", "Run as if started in this directory")
	flags.StringVar(&options.configFile, "config", "", "Configuration file (default \"$XDG_CONFIG_HOME/oi-audit/config.toml\")")
	flags.StringVar(&options.format, "format", "text", `Output format ("text", "json")`)
	flags.BoolVarP(&options.verbose, "verbose", "v", false, "Show details of passed checks")
	flags.BoolVarP(&options.debug, "debug", "d", false, "Enable debug logging")
	flags.BoolVarP(&options.quiet, "quiet", "q", false, "Only show failures and the final verdict")
	flags.BoolVar(&options.noStandards, "no-standards", false, "Skip the community standards check")

	boolPtrFlag(flags, &options.color, "color", "Force colored output")
	boolPtrFlag(flags, &options.interactive, "interactive", "Allow interactive prompts")
}

// boolPtrFlag registers --name and --no-name, both recording an explicit
// choice in dst. dst stays nil when neither is given.
func boolPtrFlag(flags *pflag.FlagSet, dst **bool, name, usage string) {
	set := func(invert bool) cobrautil.BoolFuncValue {
		return func(s string) error {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return err
			}
			if invert {
				v = !v
			}
			*dst = &v
			return nil
		}
	}
	flags.Var(set(false), name, usage)
	flags.Lookup(name).NoOptDefVal = "true"
	flags.Var(set(true), "no-"+name, "Disable --"+name)
	flags.Lookup("no-" + name).NoOptDefVal = "true"
}

// setup layers the config file under the command-line flags and configures
// logging.
func setup(cmd *cobra.Command, streams Streams, options *rootOptions) error {
	var n int
	for _, v := range []bool{options.verbose, options.debug, options.quiet} {
		if v {
			n++
		}
	}
	if options.quiet && n > 1 {
		return audit.Wrap(audit.UsageError, errors.New("--quiet cannot be combined with --verbose or --debug"), "")
	}

	fp, required := options.configFile, options.configFile != ""
	if fp == "" {
		fp = confutil.DefaultPath()
		required = os.Getenv(confutil.EnvConfig) != ""
	}
	cfg, err := confutil.Load(fp, required)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		options.format = cfg.Format
	}
	if options.format != "text" && options.format != "json" {
		return audit.Wrap(audit.UsageError, errors.Errorf("invalid output format %q", options.format), "Use --format text or --format json.")
	}
	if options.color == nil {
		options.color = cfg.Color
	}
	if options.interactive == nil {
		options.interactive = cfg.Interactive
	}
	if !cmd.Flags().Changed("no-standards") && cfg.Standards != nil {
		options.noStandards = !*cfg.Standards
	}

	verbosity := options.verbosity()
	if verbosity == "" {
		verbosity = cfg.Verbosity
	}
	switch verbosity {
	case confutil.VerbosityQuiet:
		options.quiet = true
	case confutil.VerbosityVerbose:
		options.verbose = true
	case confutil.VerbosityDebug:
		options.debug = true
	}
	logutil.Configure(streams.Err, logutil.Level(verbosity))
	return nil
}

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return audit.Wrap(audit.UsageError, err, "Run '"+cmd.CommandPath()+" --help' for usage.")
		}
		return nil
	}
}
