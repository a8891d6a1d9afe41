package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nullmodel/llmvm/bytecode"
	"github.com/nullmodel/llmvm/executor"
	"github.com/nullmodel/llmvm/inspector"
	"github.com/nullmodel/llmvm/languagelogic"
	"github.com/nullmodel/llmvm/runnerconfig"
	"github.com/nullmodel/llmvm/vmcore"
)

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	debug := fs.Bool("debug", false, "annotate output and trace every instruction")
	inspect := fs.Bool("inspect", false, "open a terminal inspector view while the program runs")
	stubLLM := fs.Bool("stub-llm", false, "answer every Language-Logic call with a fixed canned response, bypassing the service")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("run requires exactly one image file")
	}
	imagePath := fs.Arg(0)

	cfg, err := runnerconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *debug {
		cfg.Run.Debug = true
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", imagePath, err)
	}
	text, data, err := bytecode.Read(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", imagePath, err)
	}

	mem := vmcore.New(text, data)

	var client languagelogic.LLMClient
	if *stubLLM {
		client = &stubLLMClient{}
	} else {
		timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		http := languagelogic.NewHTTPClient(cfg.LLM.BaseURL, timeout)
		if cfg.Run.Debug {
			http.Debug = log.New(os.Stderr, "llmvm/llm: ", log.LstdFlags)
		}
		client = http
	}

	models := languagelogic.Models{Text: cfg.LLM.TextModel, Embedding: cfg.LLM.EmbeddingModel}
	machine := executor.New(mem, client, models, os.Stdout)

	if cfg.Run.Debug {
		machine.SetDebugLogger(log.New(os.Stderr, "llmvm: ", log.LstdFlags))
	}

	opts := executor.RunOptions{Debug: cfg.Run.Debug, MaxInstructions: cfg.Run.MaxInstructions}

	if *inspect {
		ins := inspector.New()
		opts.Inspector = ins.Hook()

		runErr := make(chan error, 1)
		go func() {
			runErr <- machine.Run(context.Background(), opts)
			ins.Stop()
		}()
		if err := ins.Run(); err != nil {
			return fmt.Errorf("inspector: %w", err)
		}
		return <-runErr
	}

	return machine.Run(context.Background(), opts)
}

// stubLLMClient answers every call with a fixed response, for exercising a
// program's control flow without a live service (spec.md §6.6's -stub-llm).
type stubLLMClient struct{}

func (stubLLMClient) ChatCompletion(ctx context.Context, model string, messages []vmcore.ContextMessage, sampler languagelogic.SamplerParams) (string, error) {
	return "stub response", nil
}

func (stubLLMClient) Embedding(ctx context.Context, model, input string) ([]float64, error) {
	return []float64{1, 0, 0, 0}, nil
}
