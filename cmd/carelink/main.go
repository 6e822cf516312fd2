package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/api"
	"github.com/carelink-ai/carelink/internal/assessment"
	"github.com/carelink-ai/carelink/internal/config"
	"github.com/carelink-ai/carelink/internal/conversation"
	"github.com/carelink-ai/carelink/internal/llm"
	"github.com/carelink-ai/carelink/internal/records"
	"github.com/carelink-ai/carelink/internal/report"
	"github.com/carelink-ai/carelink/internal/storage"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	message    = flag.String("m", "", "Assess a health concern and exit (CLI mode)")
	version    = "dev"
)

func main() {
	flag.Parse()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("CareLink version %s\n", version)
			return
		}
	}

	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting CareLink",
		zap.String("version", version),
		zap.String("mode", getMode()),
	)

	// Load configuration
	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize durable storage
	kv, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer kv.Close()

	client := llm.NewClient(cfg.Gemini)
	assistant := assessment.NewAssistant(client, logger)
	recordStore := records.NewStore(kv, logger)
	chatStore := conversation.NewStore(kv, logger)
	reportSvc := report.NewService(logger)

	if *message != "" {
		runAssessment(assistant, *message)
		return
	}

	// Initialize and start API server
	server := api.New(cfg, assistant, recordStore, chatStore, reportSvc, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.Server.Address),
		zap.Int("port", cfg.Server.Port),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if err := server.Shutdown(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}

// runAssessment handles the one-shot CLI mode: assess a single concern and
// print the result to stdout.
func runAssessment(assistant *assessment.Assistant, text string) {
	result := assistant.AssessConcern(context.Background(), text)

	fmt.Println(result.Response)
	fmt.Println()
	fmt.Printf("Severity: %s\n", result.Severity)
	if result.Emergency {
		fmt.Println("EMERGENCY: seek immediate medical attention")
	}
	if len(result.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
	if len(result.FollowUpQuestions) > 0 {
		fmt.Printf("Follow-up: %s\n", strings.Join(result.FollowUpQuestions, " "))
	}
}

func getMode() string {
	if *message != "" {
		return "cli"
	}
	return "server"
}
