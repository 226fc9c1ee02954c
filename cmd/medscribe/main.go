// File path: cmd/medscribe/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kestrelhealth/medscribe/internal/api"
	"github.com/kestrelhealth/medscribe/internal/chatbot"
	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/docstore"
	"github.com/kestrelhealth/medscribe/internal/enrich"
	"github.com/kestrelhealth/medscribe/internal/extract"
	"github.com/kestrelhealth/medscribe/internal/llm"
	"github.com/kestrelhealth/medscribe/internal/rag"
	"github.com/kestrelhealth/medscribe/internal/terminology"
	"github.com/kestrelhealth/medscribe/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("medscribe: .env file not loaded", "error", err)
	} else {
		logger.Info("medscribe: environment loaded from .env")
	}

	addrDefault := ":8000"
	if env := strings.TrimSpace(os.Getenv("MEDSCRIBE_ADDR")); env != "" {
		addrDefault = env
	}
	addr := flag.String("addr", addrDefault, "listen address")
	dbPath := flag.String("db", "", "path to the SQLite document catalog (overrides MEDSCRIBE_DB_PATH)")
	seedDir := flag.String("seed-dir", "", "directory of soap_*.txt example notes for first-run seeding")

	autoStartDefault := false
	if env := strings.TrimSpace(os.Getenv("MEDSCRIBE_AUTOSTART")); env != "" {
		if parsed, err := strconv.ParseBool(env); err == nil {
			autoStartDefault = parsed
		}
	}
	autoStartChroma := flag.Bool("auto-start-chroma", autoStartDefault, "automatically launch the bundled ChromaDB helper")

	flag.Parse()

	logger.Info("medscribe: startup initiated", "addr", *addr)

	if *autoStartChroma {
		helper, helperErr := startChromaService(ctx)
		if helperErr != nil {
			logger.Error("medscribe: failed to launch chromadb helper", "error", helperErr)
			fmt.Println("chromadb startup error:", helperErr)
			os.Exit(1)
		}
		defer stopChromaService(context.Background(), helper, logger)
	}

	storeCfg, err := docstore.LoadConfig()
	if err != nil {
		logger.Error("medscribe: docstore config load failed", "error", err)
		fmt.Println("docstore config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*dbPath); trimmed != "" {
		storeCfg.Path = trimmed
	}
	if trimmed := strings.TrimSpace(*seedDir); trimmed != "" {
		storeCfg.SeedDir = trimmed
	}
	store, err := docstore.OpenWithConfig(storeCfg)
	if err != nil {
		logger.Error("medscribe: docstore initialization failed", "error", err)
		fmt.Println("docstore error:", err)
		os.Exit(1)
	}
	defer store.Close()

	if seeded, err := store.SeedFromDir(ctx, storeCfg.SeedDir); err != nil {
		logger.Warn("medscribe: example note seeding skipped", "dir", storeCfg.SeedDir, "error", err)
	} else if seeded > 0 {
		logger.Info("medscribe: example notes seeded", "documents", seeded)
	}

	provider := llm.NewProvider()
	logger.Info("medscribe: llm provider ready", "provider", provider.Name())

	resolver, err := terminology.NewFromEnv()
	if err != nil {
		logger.Error("medscribe: terminology config load failed", "error", err)
		fmt.Println("terminology config error:", err)
		os.Exit(1)
	}
	enricher := enrich.New(resolver)

	extractor := extract.NewAgent(provider, enricher)
	summarizer := extract.NewSummarizer(provider)

	vectorClient, err := vector.NewFromEnv(ctx)
	if err != nil {
		logger.Error("medscribe: vector config load failed", "error", err)
		fmt.Println("vector config error:", err)
		os.Exit(1)
	}
	if vectorClient.Available() {
		logger.Info("medscribe: chromadb available", "collection", vectorClient.Collection())
	} else {
		logger.Warn("medscribe: chromadb unreachable; knowledge base answers degrade to catalog listings",
			"collection", vectorClient.Collection())
	}
	answers := rag.New(vectorClient, provider)

	chat := chatbot.NewRouter(store, extractor, summarizer, answers, chatbot.NewMemorySessionStore())

	server, err := api.NewServer(store, provider, extractor, summarizer, answers, chat)
	if err != nil {
		logger.Error("medscribe: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("medscribe: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("medscribe: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("medscribe: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
