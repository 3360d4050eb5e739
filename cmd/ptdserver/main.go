// Command ptdserver runs the PTD save-protocol HTTP transport: it parses
// form-encoded requests, invokes the request dispatcher, and writes the
// assembled response (§6).
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/config"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/dispatch"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/persist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            PTD Save Server                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("PTD_CONFIG"); p != "" {
		cfgPath = p
	}

	var cfg *config.Config
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		// No config file on disk — zero-config quickstart path.
		cfg = defaultConfig()
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	printSection("storage")
	var store persist.Store
	switch cfg.Storage.Backend {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		pg, err := persist.NewPgStore(ctx, cfg.Storage.DSN, cfg.Storage.MaxOpenConns, cfg.Storage.MaxIdleConns, cfg.Storage.ConnMaxLifetime)
		if err != nil {
			return fmt.Errorf("postgres store: %w", err)
		}
		store = pg
		printOK("postgres connected, migrations applied")
	default:
		fs, err := persist.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("file store: %w", err)
		}
		store = fs
		printOK(fmt.Sprintf("file store ready at %s", cfg.Storage.Dir))
	}
	defer store.Close()
	fmt.Println()

	locks := persist.NewAccountLocks()
	d := dispatch.New(store, locks, cfg.Policy, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/crossdomain.xml", handleCrossdomain)
	mux.HandleFunc("/", handleRequest(d, cfg.Network.UseHexEncoding, log))

	srv := &http.Server{
		Addr:         cfg.Network.BindAddress,
		Handler:      mux,
		ReadTimeout:  cfg.Network.ReadTimeout,
		WriteTimeout: cfg.Network.WriteTimeout,
	}

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", cfg.Network.BindAddress))
	printStat("hex encoding", boolToInt(cfg.Network.UseHexEncoding))
	fmt.Println()

	return srv.ListenAndServe()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// handleRequest parses the incoming form body (or the saveString
// fallback parameter, §6) into dispatch.Params and writes the
// dispatcher's response.
func handleRequest(d *dispatch.Dispatcher, useHex bool, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			log.Warn("parse form", zap.Error(err))
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		params := dispatch.Params{}
		for key := range r.Form {
			params[key] = r.Form.Get(key)
		}
		if saveString := params["saveString"]; saveString != "" {
			for key, value := range parseSaveString(saveString) {
				if _, exists := params[key]; !exists {
					params[key] = value
				}
			}
		}

		body := d.Handle(r.Context(), params)
		io.WriteString(w, dispatch.EncodeResponse(body, useHex))
	}
}

// parseSaveString parses the fallback pre-concatenated form body (§6):
// the same "&"-joined key=value shape as a normal form body, used when
// the client posts everything as a single opaque parameter.
func parseSaveString(s string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		}
	}
	return out
}

func handleCrossdomain(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	io.WriteString(w, `<?xml version="1.0"?>
<!DOCTYPE cross-domain-policy SYSTEM "http://www.adobe.com/xml/dtds/cross-domain-policy.dtd">
<cross-domain-policy>
  <allow-access-from domain="*" />
</cross-domain-policy>
`)
}

func defaultConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Name: "ptdserver"},
		Storage: config.StorageConfig{Backend: "file", Dir: "data/accounts"},
		Network: config.NetworkConfig{BindAddress: "0.0.0.0:8080", ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second},
		Policy:  config.PolicyConfig{AutoCreateAccount: true},
		Logging: config.LoggingConfig{Level: "info", Format: "console"},
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
