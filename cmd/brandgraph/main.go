package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/signalhouse/brandgraph/internal/server"
	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/ai"
	oai "github.com/signalhouse/brandgraph/pkg/ai/ollama"
	gai "github.com/signalhouse/brandgraph/pkg/ai/openai"
	"github.com/signalhouse/brandgraph/pkg/analysis"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/logger/console"
)

const usage = `Usage: brandgraph <command> [flags]

Commands:
  analyze   Analyze text for brands and relationships
  graph     Export the stored graph as JSON
  stats     Show relation store statistics

Run 'brandgraph <command> -h' for command flags.
`

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "analyze":
		err = analyzeCommand(ctx, os.Args[2:])
	case "graph":
		err = graphCommand(ctx, os.Args[2:])
	case "stats":
		err = statsCommand(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", "err", err)
	}
}

func analyzeCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	input := fs.String("i", "", "input text file (default: stdin)")
	subject := fs.String("s", "", "subject brand name (required)")
	output := fs.String("o", "", "output JSON file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		fs.Usage()
		return fmt.Errorf("subject brand is required")
	}

	var text []byte
	var err error
	if *input != "" {
		text, err = os.ReadFile(*input)
	} else {
		logger.Info("Reading text from stdin (Ctrl+D when done)")
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	st := server.NewStoreFromEnv(ctx)
	defer st.Close(ctx)

	pipeline := analysis.NewPipeline(analysis.NewPipelineParams{
		SubjectBrand:           *subject,
		Inference:              newInferenceClient(),
		Store:                  st,
		Search:                 server.NewSearchClientFromEnv(),
		ConfidenceThreshold:    util.GetEnvNumeric("CONFIDENCE_THRESHOLD", analysis.DefaultConfidenceThreshold),
		LowConfidenceThreshold: util.GetEnvNumeric("LOW_CONFIDENCE_THRESHOLD", analysis.DefaultLowConfidenceThreshold),
		ResolveConcurrency:     util.GetEnvInt("RESOLVE_CONCURRENCY", analysis.DefaultResolveConcurrency),
	})

	result := pipeline.Analyze(ctx, string(text))

	if err := writeJSON(*output, result); err != nil {
		return err
	}

	logger.Info("Analysis summary",
		"subject", result.SubjectBrand,
		"category", result.Category,
		"brands", len(result.Brands),
		"relationships", len(result.Relationships),
		"citations", len(result.Citations),
		"flagged", len(result.FlaggedItems),
	)
	for _, item := range result.FlaggedItems {
		logger.Warn("Flagged for review", "item", item.Item, "reason", item.Reason)
	}
	return nil
}

func graphCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	category := fs.String("c", "", "filter by category")
	output := fs.String("o", "", "output JSON file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := server.NewStoreFromEnv(ctx)
	defer st.Close(ctx)

	data, err := st.GraphData(ctx, *category)
	if err != nil {
		return err
	}

	return writeJSON(*output, data)
}

func statsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := server.NewStoreFromEnv(ctx)
	defer st.Close(ctx)

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}

	logger.Info("Relation store statistics",
		"brands", stats.Brands,
		"relationships", stats.Relationships,
		"categories", len(stats.Categories),
	)
	return writeJSON("", stats)
}

func newInferenceClient() ai.InferenceClient {
	if util.GetEnv("AI_ADAPTER") == "ollama" {
		client, err := oai.NewOllamaInferenceClient(oai.NewOllamaInferenceClientParams{
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
			InferenceModel:  util.GetEnv("AI_INFER_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return client
	}
	return gai.NewOpenAIInferenceClient(gai.NewOpenAIInferenceClientParams{
		ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
		InferenceModel:  util.GetEnv("AI_INFER_MODEL"),

		ChatURL: util.GetEnv("AI_CHAT_URL"),
		ChatKey: util.GetEnv("AI_CHAT_KEY"),
	})
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logger.Info("Results saved", "path", path)
	return nil
}
