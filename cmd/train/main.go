package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/chenBenjamin97/money-lockon/pkg/config"
	"github.com/chenBenjamin97/money-lockon/pkg/train"
	"github.com/cyclopcam/logs"
)

func main() {
	parser := argparse.NewParser("train", "Fine-tune the classifier on a labeled image dataset")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Path to config file (default ./config.yaml if present)", Default: ""})
	dataDir := parser.String("d", "data", &argparse.Options{Help: "Dataset root holding train/ and val/ (overrides train.data_dir)", Default: ""})
	epochs := parser.Int("e", "epochs", &argparse.Options{Help: "Number of epochs (overrides train.epochs)", Default: 0})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Error: Could not create log, got '%v'\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Criticalf("Error: %v", err)
		logger.Close()
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Train.DataDir = *dataDir
	}
	if *epochs > 0 {
		cfg.Train.Epochs = *epochs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trainer := train.NewTrainer(logger, train.Options{
		Python:       cfg.Train.Python,
		Script:       cfg.Train.Script,
		DataDir:      cfg.Train.DataDir,
		WeightsPath:  cfg.Model.Path,
		ClassesPath:  cfg.Model.Classes,
		BatchSize:    cfg.Train.BatchSize,
		Epochs:       cfg.Train.Epochs,
		ImgSize:      cfg.Train.ImgSize,
		ClassifierLR: cfg.Train.ClassifierLR,
		FinetuneLR:   cfg.Train.FinetuneLR,
	})

	report, err := trainer.Run(ctx)
	if err != nil {
		logger.Criticalf("Error: %v", err)
		logger.Close()
		os.Exit(1)
	}

	if final, ok := report.Final(); ok {
		logger.Infof("Fine-tuning finished in %v, final val accuracy %.2f%%", report.Duration.Round(time.Second), final.ValAccuracy)
	} else {
		logger.Infof("Fine-tuning finished in %v", report.Duration.Round(time.Second))
	}
}
