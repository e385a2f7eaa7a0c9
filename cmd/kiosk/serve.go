package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"last-snow/internal/analytics"
	"last-snow/internal/control"
	"last-snow/internal/language"
	"last-snow/internal/osc"
	"last-snow/internal/scheduler"
	"last-snow/internal/settings"
)

var (
	serveLang      string
	serveNoConsole bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the control listener and read sentences from stdin",
	Long: `Starts the OSC control listener and, unless --no-console is given, submits
every line read from stdin as a sentence. A line of the form ":lang XX"
switches the language of the following sentences.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveLang, "lang", language.Default.Code, "initial language code")
	serveCmd.Flags().BoolVar(&serveNoConsole, "no-console", false, "do not read sentences from stdin")
}

func runServe(cmd *cobra.Command, args []string) error {
	a := kiosk
	lang, err := language.Parse(serveLang)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := settings.Seed(a.settings, a.logger); err != nil {
		a.logger.Error("error saving seeded settings", zap.Error(err))
	}

	listener, err := control.Listen(a.cfg.ListenAddr, a.logger)
	if err != nil {
		return err
	}
	dispatcher := control.NewDispatcher(a.settings, a.records, a.logger)
	packets := make(chan osc.Packet)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := listener.Serve(gctx, packets); err != nil {
			a.logger.Error("control listener stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx, packets)
	})

	if a.cfg.StatusSchedule != "" {
		sched := scheduler.New(a.cfg.StatusSchedule, a.logger)
		sched.SetReportFunction(func(ctx context.Context) error {
			return logStatus(a)
		})
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	if !serveNoConsole {
		c := &console{submitter: a.submitter, logger: a.logger, lang: lang, out: cmd.OutOrStdout()}
		g.Go(func() error {
			return c.run(gctx, cmd.InOrStdin())
		})
	}

	return g.Wait()
}

func logStatus(a *app) error {
	st, err := a.records.Status()
	if err != nil {
		return err
	}
	recs, err := a.records.Records()
	if err != nil {
		return err
	}
	today := analytics.AnalyzeDailyRecords(recs, time.Now().UTC())
	a.logger.Info("record log status",
		zap.Int("archives", st.ArchiveCount),
		zap.Uint64("last_index", st.LastIndex),
		zap.Int("staging_rows", st.StagingRows),
		zap.Int("sentences_today", today.TotalSentences),
		zap.Any("by_language", today.ByLanguage),
	)
	return nil
}
