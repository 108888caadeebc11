// cmd/analytics/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/config"
	"github.com/smart-store/analytics-pipeline/pkg/logging"
	"github.com/smart-store/analytics-pipeline/pkg/pipeline"
)

func main() {
	stagesFlag := flag.String("stages", "prepare,load,cube",
		"comma-separated stages to run (prepare, load, cube)")
	envFile := flag.String("env", "", "path to a .env file (optional)")
	flag.Parse()

	if err := run(*stagesFlag, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(stagesFlag, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort: a .env in the working directory is optional
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	stages, err := parseStages(stagesFlag)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, logger.Named("pipeline"))
	if err != nil {
		return err
	}

	summary, err := p.Run(context.Background(), stages)
	if err != nil {
		return err
	}
	if summary.Failed() {
		return fmt.Errorf("pipeline run %s failed", summary.RunID)
	}
	return nil
}

func parseStages(s string) ([]pipeline.Stage, error) {
	if strings.TrimSpace(s) == "" {
		return pipeline.AllStages, nil
	}
	var stages []pipeline.Stage
	for _, part := range strings.Split(s, ",") {
		stage := pipeline.Stage(strings.TrimSpace(part))
		switch stage {
		case pipeline.StagePrepare, pipeline.StageLoad, pipeline.StageCube:
			stages = append(stages, stage)
		default:
			return nil, fmt.Errorf("unknown stage: %s", stage)
		}
	}
	return stages, nil
}
