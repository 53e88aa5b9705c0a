// Command memorygame starts the Memory Match game server.
//
// It supports two commands:
//  1. "server" (default) – runs the HTTP server exposing the browser game, REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and a .env file); flags override them.
// Best scores are kept in memory, a JSON file, or SQLite.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/score"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
	"github.com/wricardo/mcp-training/memorygame/transport/mcp"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Game Server"
)

// externalURL is where stdio-mcp looks for an already running server
const externalURL = "http://localhost:8080"

// app bundles the services one process runs
type app struct {
	settings *config.Settings
	service  service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
	closeFn  func() error
}

// Close stops every session and releases the score store
func (a *app) Close() {
	a.sessions.CloseAll()
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			log.Printf("Warning: failed to close score store: %v", err)
		}
	}
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	if err := newCommand(settings).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newCommand builds the CLI. Flag defaults come from settings and the
// subcommands inherit the root flags.
func newCommand(settings *config.Settings) *cli.Command {
	flags := []cli.Flag{
		&cli.IntFlag{Name: "port", Value: settings.Port, Usage: "HTTP server port"},
		&cli.StringFlag{Name: "host", Value: settings.Host, Usage: "HTTP server host"},
		&cli.StringFlag{Name: "config-dir", Value: settings.ConfigDir, Usage: "Directory containing themes"},
		&cli.StringFlag{Name: "score-store", Value: settings.ScoreStore, Usage: "Best score backend: memory, file or sqlite"},
		&cli.StringFlag{Name: "score-path", Value: settings.ScorePath, Usage: "Best score file or database path"},
		&cli.BoolFlag{Name: "debug", Value: settings.Debug, Usage: "Enable debug logging"},
		&cli.BoolFlag{Name: "ngrok", Value: settings.NgrokEnabled, Usage: "Enable ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-auth", Value: settings.NgrokAuthToken, Usage: "Ngrok auth token"},
		&cli.StringFlag{Name: "ngrok-domain", Value: settings.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
	}

	serve := func(ctx context.Context, cmd *cli.Command) error {
		a, err := setup(cmd, settings)
		if err != nil {
			return err
		}
		defer a.Close()
		return runHTTPServer(ctx, a)
	}

	return &cli.Command{
		Name:    "memorygame",
		Usage:   AppName,
		Version: Version,
		Flags:   flags,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with game UI, API, WebSocket, and MCP endpoint",
				Action:  serve,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := setup(cmd, settings)
					if err != nil {
						return err
					}
					defer a.Close()
					return runStdioMCPWithInternalServer(ctx, a)
				},
			},
		},
	}
}

// applyFlags copies the command line onto settings and validates the result
func applyFlags(cmd *cli.Command, base *config.Settings) (*config.Settings, error) {
	s := *base
	s.Port = int(cmd.Int("port"))
	s.Host = cmd.String("host")
	s.ConfigDir = cmd.String("config-dir")
	s.ScoreStore = cmd.String("score-store")
	s.ScorePath = cmd.String("score-path")
	s.Debug = cmd.Bool("debug")
	s.NgrokEnabled = cmd.Bool("ngrok")
	s.NgrokAuthToken = cmd.String("ngrok-auth")
	s.NgrokDomain = cmd.String("ngrok-domain")

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setup(cmd *cli.Command, base *config.Settings) (*app, error) {
	settings, err := applyFlags(cmd, base)
	if err != nil {
		return nil, err
	}

	if settings.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	log.Printf("Starting %s v%s (command: %s)", AppName, Version, cmd.Name)

	a, err := initializeServices(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return a, nil
}

// openScoreStore returns the configured best score backend and its closer
func openScoreStore(settings *config.Settings) (score.Store, func() error, error) {
	switch settings.ScoreStore {
	case config.StoreMemory:
		return score.NewMemoryStore(), nil, nil
	case config.StoreSQLite:
		store, err := score.OpenSQLite(settings.ScorePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := score.NewFileStore(settings.ScorePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

// initializeServices wires the score store, session and config managers,
// the WebSocket hub and the game service. It also starts the hub and a
// background routine that prunes idle sessions.
func initializeServices(settings *config.Settings) (*app, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, closeFn, err := openScoreStore(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open score store: %w", err)
	}
	log.Printf("Best scores: %s store", settings.ScoreStore)

	hub := websocket.NewHub()
	go hub.Run()

	sessionManager := session.NewManager(
		session.WithStore(store),
		session.WithPresenterFactory(hub.PresenterFor),
	)

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(sessionManager, settings.CleanupInterval, settings.SessionMaxAge)

	return &app{
		settings: settings,
		service:  gameService,
		sessions: sessionManager,
		hub:      hub,
		closeFn:  closeFn,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(maxAge)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// newMux mounts the API server at root and the MCP endpoint at /mcp
func newMux(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mux
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with the game UI, REST API, WebSocket hub and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, a *app) error {
	addr := a.settings.Addr()
	mainRouter := newMux(api.NewServer(a.service, a.hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Game UI: http://%s/", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
			stop()
		}
	}()

	if a.settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, a.settings, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, settings *config.Settings, handler http.Handler) {
	authToken := settings.NgrokAuthToken
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", settings.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Game UI (ngrok): %s/", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server stopped: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// externalServerAvailable reports whether a game server already answers at baseURL
func externalServerAvailable(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := (&http.Client{Timeout: 2 * time.Second}).Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, a *app) error {
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	if externalServerAvailable(ctx, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		baseURL = "http://" + listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", listener.Addr())

		httpServer := &http.Server{Handler: api.NewServer(a.service, a.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
