package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"fitforge/internal/api"
	"fitforge/internal/config"
	"fitforge/internal/generator"
	"fitforge/internal/llm"
	"fitforge/internal/store"
	"fitforge/internal/vault"
)

func main() {
	var apiPort int
	var configPath string

	flag.IntVar(&apiPort, "api-port", 0, "The port the API server binds to (overrides config).")
	flag.StringVar(&configPath, "config", "config.yaml", "The path to the configuration file.")
	flag.Parse()

	// Use Zap for structured logging.
	zapLog, _ := zap.NewDevelopment()
	log := zapr.NewLogger(zapLog)
	setupLog := log.WithName("setup")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}
	if apiPort != 0 {
		cfg.APIPort = apiPort
	}

	master, err := vault.MasterSecretFromEnv()
	if err != nil {
		setupLog.Error(err, "unable to read master secret")
		os.Exit(1)
	}
	v, err := vault.New(master)
	if err != nil {
		setupLog.Error(err, "unable to initialize vault")
		os.Exit(1)
	}

	defaultCred, err := loadDefaultCredential(cfg, v)
	if err != nil {
		setupLog.Error(err, "unable to load default provider credential")
		os.Exit(1)
	}
	if defaultCred == nil {
		setupLog.Info("no system-default provider configured; users must supply their own keys")
	}

	factory := llm.NewFactory(v, defaultCred)

	// Single-node deployment: credentials and plans live in memory. A real
	// deployment swaps in the persistence layer behind the same interfaces.
	st := store.NewInMemoryStore()

	orch := generator.NewOrchestrator(factory, st, slog.Default(),
		generator.WithCallTimeout(time.Duration(cfg.CallTimeoutSeconds)*time.Second),
		generator.WithMaxRetries(cfg.MaxSchemaRetries),
	)

	server := api.NewServer(orch, factory, v, st, cfg.APIPort, log.WithName("api")).
		WithPlanStore(st)

	setupLog.Info("starting api server", "port", cfg.APIPort)
	if err := server.Start(); err != nil {
		setupLog.Error(err, "api server exited")
		os.Exit(1)
	}
}

// loadDefaultCredential turns the config block into the factory's
// system-wide fallback, decrypting the key when it is a vault payload.
func loadDefaultCredential(cfg *config.Config, v *vault.Vault) (*llm.DefaultCredential, error) {
	dp := cfg.DefaultProvider
	if dp == nil || dp.Provider == "" {
		return nil, nil
	}

	apiKey := dp.APIKey
	if vault.IsEncrypted(apiKey) {
		decrypted, err := v.Decrypt(apiKey)
		if err != nil {
			return nil, err
		}
		apiKey = decrypted
	}

	return &llm.DefaultCredential{
		Provider:    strings.ToLower(dp.Provider),
		APIKey:      strings.TrimSpace(apiKey),
		Model:       dp.Model,
		EndpointURL: dp.EndpointURL,
	}, nil
}
