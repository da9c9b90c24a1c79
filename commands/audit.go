package commands

import (
	"context"
	"os"

	"github.com/openintegrity/oi-audit/audit"
	"github.com/openintegrity/oi-audit/util/cobrautil"
	"github.com/openintegrity/oi-audit/util/cobrautil/completion"
	"github.com/openintegrity/oi-audit/util/ghutil"
	"github.com/openintegrity/oi-audit/util/gitutil"
	"github.com/openintegrity/oi-audit/util/progress"
	"github.com/openintegrity/oi-audit/util/prompt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runAudit(ctx context.Context, streams Streams, opts *rootOptions) error {
	if opts.chdir != "" {
		fi, err := os.Stat(opts.chdir)
		if err != nil {
			return audit.Wrap(audit.IOError, errors.Wrapf(err, "cannot change to %s", opts.chdir), "")
		}
		if !fi.IsDir() {
			return audit.Wrap(audit.UsageError, errors.Errorf("%s is not a directory", opts.chdir), "")
		}
	}

	g, err := gitutil.New(gitutil.WithContext(ctx), gitutil.WithWorkingDir(opts.chdir))
	if err != nil {
		return err
	}
	if err := g.CheckVersion(); err != nil {
		return err
	}
	if !g.IsInsideWorkTree() {
		return audit.Wrap(audit.GitFailure, errors.New("not inside a git working tree"), "Run oi-audit from within a git repository or pass -C <dir>.")
	}

	mode := progress.PrinterModeText
	switch {
	case opts.format == progress.PrinterModeJSON:
		mode = progress.PrinterModeJSON
	case opts.quiet:
		mode = progress.PrinterModeQuiet
	}
	printer, err := progress.NewPrinter(streams.Out, mode, progress.WithColor(progress.ColorEnabled(streams.Out, opts.color)))
	if err != nil {
		return err
	}

	auditOpts := []audit.Option{audit.WithReporter(printer)}
	if opts.noStandards {
		auditOpts = append(auditOpts, audit.WithoutStandards())
	} else {
		remote, err := g.RemoteURL()
		if err != nil {
			logrus.Debugf("no remote: %v", err)
		}
		auditOpts = append(auditOpts,
			audit.WithStandardsSource(ghutil.New(remote)),
			audit.WithPrompter(prompt.New(streams.In, streams.Err, opts.interactive), prompt.OpenURL),
		)
	}

	rep, err := audit.New(g, auditOpts...).Run(ctx)
	if err != nil {
		return err
	}
	if err := printer.Finish(rep); err != nil {
		return audit.Wrap(audit.IOError, errors.Wrap(err, "failed to write report"), "")
	}
	if err := rep.Err(); err != nil {
		logrus.Infof("%v", err)
	}
	if rep.Verdict.ExitStatus != audit.ExitSuccess {
		return cobrautil.ExitCodeError(rep.Verdict.ExitStatus)
	}
	return nil
}

func auditCmd(streams Streams, rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [OPTIONS]",
		Short: "Audit the inception commit (default command)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: cobrautil.ConfigureContext(func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), streams, rootOpts)
		}),
		ValidArgsFunction:     completion.Disable,
		DisableFlagsInUseLine: true,
	}
	return cmd
}
