package main

import (
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"

	"ecofood/config"
	"ecofood/db"
	"ecofood/handlers"
	"ecofood/planner"
	"ecofood/platform/shutdown"
	"ecofood/providers"
	"ecofood/tools"
)

func main() {
	config.Initialize()
	cfg := config.Get()

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to initialize database")
		return
	}

	done := make(chan struct{})
	shutdown.InitShutdownService(done)
	shutdown.RegisterHook(func(grace time.Duration) error {
		return database.Close()
	})

	// The chef's LLM path stays dark without an API key; the
	// deterministic catalogue covers generation either way
	var generator providers.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator = providers.NewGeminiClient()
		logger.Info("Gemini text generation enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("No Gemini API key set, using the recipe catalogue")
	}

	registry := tools.DefaultRegistry(generator)
	workflow, err := planner.NewWorkflow(registry)
	if err != nil {
		logger.LogErr(err, "failed to build planning workflow")
		return
	}
	runner := planner.NewRunner(database, database, database, workflow)

	s := rweb.NewServer(rweb.ServerOptions{
		Address: cfg.Address,
		Verbose: true,
	})
	s.Use(rweb.RequestInfo)

	handlers.SetupRoutes(s, runner)

	go func() {
		logger.Info("Starting EcoFood server", "address", cfg.Address)
		if err := s.Run(); err != nil {
			logger.LogErr(err, "server stopped")
		}
	}()

	<-done
	logger.Info("EcoFood shut down")
}
