package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/nihonngo-exam/internal/client"
	"github.com/aliskhannn/nihonngo-exam/internal/config"
	"github.com/aliskhannn/nihonngo-exam/internal/delivery/terminal"
	"github.com/aliskhannn/nihonngo-exam/internal/exam"
	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres"
	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres/repository"
	"github.com/aliskhannn/nihonngo-exam/internal/logger"
	"github.com/aliskhannn/nihonngo-exam/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("exam", pflag.ExitOnError)
	config.BindFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	lg, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoints, err := client.ResolveEndpoints(
		cfg.Server.BaseURL,
		cfg.Server.QuestionPath,
		cfg.Server.AnswerPath,
		cfg.Server.SignInPath,
	)
	if err != nil {
		return err
	}

	c, err := client.New(endpoints, cfg.Server.Timeout, lg)
	if err != nil {
		return err
	}

	res, err := c.SignIn(ctx, cfg.Exam.Username, cfg.Exam.Password, cfg.Exam.Remember)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	fmt.Println(res.Message)

	opts := []exam.Option{exam.WithMachine(exam.NewMachine(cfg.Exam.AdvanceDelay))}
	if cfg.DB.Enabled() {
		dsn, _ := cfg.DB.DSN()
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        cfg.DB.MaxConnections,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		opts = append(opts, exam.WithJournal(repository.NewJournalRepository(pool)))
	}

	ctrl := exam.NewController(
		ulid.Make().String(),
		c,
		terminal.NewRenderer(os.Stdout),
		scheduler.NewTimer(),
		lg,
		opts...,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return terminal.NewInput(os.Stdin, ctrl).Run(gctx) })

	err = g.Wait()
	switch {
	case err == nil, errors.Is(err, terminal.ErrQuit), errors.Is(err, context.Canceled):
		lg.Debug("exam finished", zap.Error(err))
		return nil
	default:
		return err
	}
}
