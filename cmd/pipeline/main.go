package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devsapp/model-retrain-pipeline/pkg/config"
	"github.com/devsapp/model-retrain-pipeline/pkg/deploy"
	"github.com/devsapp/model-retrain-pipeline/pkg/gate"
	"github.com/devsapp/model-retrain-pipeline/pkg/pipeline"
	"github.com/devsapp/model-retrain-pipeline/pkg/statestore"
	"github.com/devsapp/model-retrain-pipeline/pkg/trainer"
	"github.com/devsapp/model-retrain-pipeline/pkg/version"
	"github.com/devsapp/model-retrain-pipeline/pkg/watch"
)

const (
	defaultConfigPath  = "config.yaml"
	deployProbeTimeout = 3000 // ms
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: pipeline <command> [flags]

commands:
  install   install training dependencies
  retrain   retrain the model if the dataset changed
  build     package the current model into an image
  run       install + retrain + build
  deploy    replace the running service container
  versions  list saved model versions
  clean     delete all saved models and the current pointer
  watch     keep retraining on dataset changes
`)
	os.Exit(2)
}

func logInit(mode string) {
	switch mode {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
		// include function and file
		logrus.SetReportCaller(true)
	case "dev":
		logrus.SetLevel(logrus.InfoLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// signalContext cancel on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logrus.Info("Shutting down...")
		cancel()
	}()
	return ctx, cancel
}

func newEngine(cfg *config.Config, force bool) (*gate.Engine, error) {
	models, err := version.NewStore(cfg.ModelsDir, nil)
	if err != nil {
		return nil, err
	}
	factory := &statestore.StoreFactory{}
	return &gate.Engine{
		Checksums: factory.NewStore(statestore.File, cfg.ChecksumFile),
		Trainer: &trainer.ScriptTrainer{
			Command:    cfg.TrainCommand,
			OutputPath: cfg.TrainOutput,
			Timeout:    time.Duration(cfg.TrainTimeoutSecond) * time.Second,
		},
		Models: models,
		Force:  force,
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configFile := flags.String("config", defaultConfigPath, "config file path")
	mode := flags.String("mode", "dev", "work mode debug|dev|product")
	once := flags.Bool("once", false, "force a retrain attempt regardless of checksum")
	interval := flags.Int("interval", 0, "watch poll interval seconds (overrides config)")
	flags.Parse(os.Args[2:])

	logInit(*mode)
	if err := config.InitConfig(*configFile); err != nil {
		logrus.Fatal(err.Error())
	}
	cfg := config.ConfigGlobal

	engine, err := newEngine(cfg, *once)
	if err != nil {
		logrus.Fatal(err.Error())
	}

	ctx, cancel := signalContext()
	defer cancel()

	switch command {
	case "install":
		err = pipeline.CommandStep(config.STEP_INSTALL, cfg.InstallCommand, nil).Run(ctx)
	case "retrain":
		_, err = engine.Run(ctx, cfg.DatasetPath)
	case "build":
		err = pipeline.BuildStep(cfg, engine.Models, nil).Run(ctx)
	case "run":
		err = pipeline.New(cfg, engine, nil).Run(ctx)
	case "deploy":
		manager := &deploy.Manager{
			Runtime:        cfg.ContainerRuntime,
			ProbeTimeoutMs: deployProbeTimeout,
		}
		err = manager.Deploy(cfg.ImageRef, cfg.ContainerName, cfg.HostPort, cfg.ServicePort)
	case "versions":
		var tags []version.Tag
		tags, err = engine.Models.List()
		if err == nil {
			for _, tag := range tags {
				fmt.Println(tag)
			}
			if cur, ok, curErr := engine.Models.Current(); curErr == nil && ok {
				fmt.Printf("current: %s\n", cur)
			}
		}
	case "clean":
		err = engine.Models.Clean()
	case "watch":
		seconds := cfg.WatchIntervalSecond
		if *interval > 0 {
			seconds = int32(*interval)
		}
		watcher := &watch.Watcher{
			Path:     cfg.DatasetPath,
			Interval: time.Duration(seconds) * time.Second,
			OnChange: func(ctx context.Context) error {
				_, err := engine.Run(ctx, cfg.DatasetPath)
				return err
			},
		}
		err = watcher.Watch(ctx)
	default:
		usage()
	}

	if err != nil {
		logrus.Error(err.Error())
		os.Exit(1)
	}
}
