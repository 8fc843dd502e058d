package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/chenBenjamin97/money-lockon/pkg/api"
	"github.com/chenBenjamin97/money-lockon/pkg/capture"
	"github.com/chenBenjamin97/money-lockon/pkg/config"
	"github.com/chenBenjamin97/money-lockon/pkg/notify"
	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/chenBenjamin97/money-lockon/pkg/video"
	"github.com/cyclopcam/logs"
)

func main() {
	parser := argparse.NewParser("live", "Classify the webcam feed and trigger the visualization on a stable detection")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Path to config file (default ./config.yaml if present)", Default: ""})
	headless := parser.Flag("", "headless", &argparse.Options{Help: "Do not open the debug window"})
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

	if err := run(logger, *configFile, *headless); err != nil {
		logger.Criticalf("Error: %v", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Infof("Application closed.")
}

func run(logger logs.Log, configFile string, headless bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	//output directory is created once, never per export
	if created, err := capture.EnsureDir(cfg.Capture.Dir); err != nil {
		return err
	} else if created {
		logger.Infof("Created output directory: %s", cfg.Capture.Dir)
	}

	classes, err := utils.ReadClassList(cfg.Model.Classes)
	if err != nil {
		return fmt.Errorf("'%s' not found or unreadable, run the trainer first: %w", cfg.Model.Classes, err)
	}
	if _, err := os.Stat(cfg.Model.Path); err != nil {
		return fmt.Errorf("model file '%s' not found, run the trainer first: %w", cfg.Model.Path, err)
	}

	classifier, err := video.NewNetClassifier(logger, cfg.Model.Path, classes, cfg.Model.InputSize, cfg.Model.Layers, cfg.Model.OutputLayer)
	if err != nil {
		return err
	}
	defer classifier.Close()
	logger.Infof("Successfully loaded fine-tuned model for %d classes.", len(classes))

	camera, err := video.OpenCamera(cfg.Camera.Device)
	if err != nil {
		return fmt.Errorf("could not open webcam: %w", err)
	}
	defer camera.Close()

	var display video.Display = video.HeadlessDisplay{}
	if !headless && !cfg.Camera.Headless {
		display = video.NewWindowDisplay(cfg.Camera.Window)
	}
	defer display.Close()

	board := &api.Board{}
	if cfg.HTTP.Port != "" {
		r := api.SetRouter(board, cfg.Capture.Dir, classes)
		go func() {
			if err := r.Run(":" + cfg.HTTP.Port); err != nil {
				logger.Errorf("Status API stopped, got '%v'", err)
			}
		}()
		logger.Infof("Status API listening on :%s", cfg.HTTP.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := &video.Loop{
		Log:        logger,
		Source:     camera,
		Classifier: classifier,
		Stabilizer: stabilizer.New(cfg.StabilizerParams()),
		Exporter:   capture.NewExporter(logger, cfg.Capture.Dir, cfg.Capture.NumMaps, cfg.Capture.ImageSize),
		Notifier:   notify.NewNotifier(logger, cfg.OSC.Host, cfg.OSC.Port, cfg.OSC.Address),
		Display:    display,
		Reporter:   board,
		FailFast:   cfg.Detector.FailFast,
	}

	stats, err := loop.Run(ctx)
	logger.Infof("Processed %d frames, %d skipped, %d lock-ons", stats.Frames, stats.Skipped, stats.Locks)
	return err
}
