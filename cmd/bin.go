package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/api"
	"github.com/LambdaTest/forkplan/pkg/constants"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/planqueue"
	"github.com/LambdaTest/forkplan/pkg/server"
	"github.com/spf13/cobra"
)

// RootCommand will setup and return the root command
func RootCommand() *cobra.Command {
	rootCmd := cobra.Command{
		Use:     "forkplan",
		Long:    `forkplan splits test workloads across parallel forks, balancing them by historical test durations.`,
		Version: constants.BinaryVersion,
		RunE:    run,
	}

	// define flags used for this command
	AttachCLIFlags(&rootCmd)
	rootCmd.AddCommand(planCommand(), shardCommand())

	return &rootCmd
}

// setup loads the config and creates the logger every command starts with.
func setup(cmd *cobra.Command) (*config.Config, lumber.Logger, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		fmt.Printf("Failed to load config: %v", err)
		return nil, nil, err
	}

	// patch logconfig file location with root level log file location
	if cfg.LogFile != "" {
		cfg.LogConfig.FileLocation = filepath.Join(cfg.LogFile, "fp.log")
	}

	// You can also use logrus implementation
	// by using lumber.InstanceLogrusLogger
	logger, err := lumber.NewLogger(&cfg.LogConfig, cfg.Verbose, lumber.InstanceZapLogger)
	if err != nil {
		log.Printf("could not instantiate logger %s", err.Error())
		return nil, nil, err
	}
	return cfg, logger, nil
}

func run(cmd *cobra.Command, args []string) error {
	// a WaitGroup for the goroutines to tell us they've stopped
	wg := sync.WaitGroup{}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	// create a context that we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sources, err := newTimingStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sources.Close(logger)

	var publisher *planqueue.Publisher
	if cfg.Kafka.Brokers != "" {
		producer := planqueue.NewProducer(cfg, logger)
		defer producer.Close()
		publisher = planqueue.NewPublisher(producer, logger)
	}

	// child context fails the health API as soon as a signal is received
	childCtx, childCancel := context.WithCancel(ctx)
	defer childCancel()
	router := api.New(childCtx, cfg, sources.store, publisher, logger)

	wg.Add(1)
	// setup http server
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(ctx, &router, cfg, logger); err != nil {
			logger.Errorf("error while running http server %v", err)
		}
	}()

	// listen for C-c
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	// create channel to mark status of waitgroup
	// this is required to brutally kill application in case of
	// timeout
	done := make(chan struct{})

	// asynchronously wait for all the go routines
	go func() {
		// and wait for all go routines
		wg.Wait()
		logger.Debugf("main: all goroutines have finished.")
		close(done)
	}()
	// wait for signal channel
	select {
	case <-c:
		logger.Debugf("main: received close signal - attempting graceful shutdown ....")
	case <-done:
		return nil
	}
	childCancel()
	// tell the goroutines to stop
	logger.Debugf("main: telling all goroutines to stop")
	cancel()
	select {
	case <-done:
		logger.Debugf("Go routines exited within timeout")
	case <-time.After(cfg.GracefulTimeout):
		logger.Errorf("Graceful timeout exceeded. Brutally killing the application")
		return errs.ErrTimeoutExceeded
	}
	return nil
}
