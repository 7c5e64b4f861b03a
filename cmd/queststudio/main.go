package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/questmaster/studio/internal/api"
	"github.com/questmaster/studio/internal/cache"
	"github.com/questmaster/studio/internal/config"
	"github.com/questmaster/studio/internal/dispatcher"
	"github.com/questmaster/studio/internal/export"
	"github.com/questmaster/studio/internal/handlers"
	"github.com/questmaster/studio/internal/influx"
	"github.com/questmaster/studio/internal/logging"
	intOtel "github.com/questmaster/studio/internal/otel"
	"github.com/questmaster/studio/internal/progression"
	"github.com/questmaster/studio/internal/session"
	"github.com/questmaster/studio/internal/storage"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentStudioVersion string = "0.1.0"
	BuildDate            string = "unknown"

	AppName string = "queststudio"
)

// global services
var (
	SlogManager *logging.SlogManager
	Logger      *slog.Logger

	OTelProvider *intOtel.Provider

	// QuestCache maps quest ids to titles for cheap existence checks
	QuestCache *cache.QuestCache = cache.NewQuestCache()

	SessionStartTime time.Time = time.Now()

	LogFilePath string
	LogFile     *os.File

	sessionCtx      *session.Context
	handlerService  *handlers.Service
	eventDispatcher *dispatcher.Dispatcher
	storageBackend  storage.Backend
	influxManager   *influx.Manager
	exportEngine    *export.Engine
)

func setup() error {
	var err error

	// bootstrap logging to stdout until the log file is open
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, config.GetString("logLevel"), nil, nil)
	Logger = SlogManager.Logger()

	if err = config.Load("."); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	// progression engine and session context
	engine, err := progression.New(config.Progression())
	if err != nil {
		return fmt.Errorf("failed to build progression engine: %w", err)
	}
	sessionCtx = session.NewContext(engine)

	// logs dir and file
	logsDir := config.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		_ = os.Mkdir(logsDir, 0755)
	}
	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	// OTel provider if enabled
	if config.GetBool("otel.enabled") {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      true,
			ServiceName:  AppName,
			BatchTimeout: config.GetDuration("otel.batchTimeout"),
			LogWriter:    LogFile,
			Endpoint:     config.GetString("otel.endpoint"),
			Insecure:     config.GetBool("otel.insecure"),
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath)
		}
	}

	// re-setup logging with the file, OTel bridge, and session attributes
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(LogFile, config.GetString("logLevel"), otelLogProvider, sessionAttrs)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	// storage backend
	storageBackend, err = storage.NewBackend(config.Storage(), QuestCache, SlogManager)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err = storageBackend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	Logger.Info("Storage backend initialized", "type", config.GetString("storage.type"))

	// parchment export engine
	exportEngine, err = export.NewEngine(config.GetString("parchmentsDir"))
	if err != nil {
		return fmt.Errorf("failed to create export engine: %w", err)
	}

	// InfluxDB authoring metrics (optional)
	if config.GetBool("influx.enabled") {
		zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
		influxManager = influx.NewManager(zl, logging.LogFilePath(logsDir, AppName+"_influx_backup", SessionStartTime)+".gz")
		if err := influxManager.Connect(); err != nil {
			Logger.Warn("InfluxDB not available, authoring events will be buffered", "error", err)
		}
	}

	// handler service and dispatcher
	handlerService = handlers.NewService(handlers.Dependencies{
		Backend:    storageBackend,
		Exporter:   exportEngine,
		LogManager: SlogManager,
		Influx:     influxManager,
	}, sessionCtx)

	dispatcherLogger := logging.NewDispatcherLogger(zerolog.New(os.Stdout).With().Timestamp().Logger())
	eventDispatcher, err = dispatcher.New(dispatcherLogger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	registerLifecycleHandlers(eventDispatcher)
	handlerService.RegisterHandlers(eventDispatcher)
	Logger.Info("Dispatcher initialized with authoring handlers")

	go checkServerStatus()

	return nil
}

// sessionAttrs injects the active quest and session score into every
// log record.
func sessionAttrs() []slog.Attr {
	if sessionCtx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id, ok := sessionCtx.ActiveQuest(); ok {
		attrs = append(attrs, slog.Uint64("activeQuest", uint64(id)))
	}
	state := sessionCtx.Engine().State()
	attrs = append(attrs, slog.Int("score", state.Score), slog.String("tier", state.Tier))
	return attrs
}

func checkServerStatus() {
	// check if the guild frontend is reachable with a healthcheck request
	client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		Logger.Info("Guild frontend is offline", "error", err)
	} else {
		Logger.Info("Guild frontend is online")
	}
}

// registerLifecycleHandlers registers system command handlers with the dispatcher.
func registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register("version", func(e dispatcher.Event) (any, error) {
		return []string{CurrentStudioVersion, BuildDate}, nil
	})

	d.Register("save", func(e dispatcher.Event) (any, error) {
		Logger.Info("Received save command, flushing session")
		if OTelProvider != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := OTelProvider.Flush(ctx); err != nil {
				Logger.Warn("Failed to flush OTel data", "error", err)
			}
		}
		return "ok", nil
	})
}

func shutdown() {
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Error closing storage backend", "error", err)
		}
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Error shutting down OTel provider", "error", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

// repl reads authoring commands from stdin and dispatches them.
// Lines are "command arg1|arg2|...", e.g. "quest:update 3|title|Dragon Hunt".
func repl() {
	fmt.Printf("%s %s (build %s). Type 'help' for commands, 'quit' to exit.\n", AppName, CurrentStudioVersion, BuildDate)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			return
		case "help":
			printHelp()
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		command := parts[0]
		var args []string
		if len(parts) > 1 {
			args = strings.Split(parts[1], "|")
		}

		if !eventDispatcher.HasHandler(command) {
			fmt.Printf("unknown command: %s\n", command)
			continue
		}

		result, err := eventDispatcher.Dispatch(dispatcher.Event{
			Command:   command,
			Args:      args,
			Timestamp: time.Now(),
		})
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(result)
	}
}

func printResult(result any) {
	switch v := result.(type) {
	case nil:
		fmt.Println("not found")
	case string:
		fmt.Println(v)
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Printf("%v\n", v)
			return
		}
		fmt.Println(string(out))
	}
}

func printHelp() {
	fmt.Println(`commands:
  quest:create                       create a new draft quest
  quest:update id|field|value        update one field (title, difficulty, reward, description, deadline)
  quest:get [id]                     show the quest's current fields
  quest:versions [id]                show the quest's version history
  annotation:add id|x|y|kind|label   add a map annotation
  annotation:route id|route|label    add a free-hand route as [[x,y],...] JSON
  annotations:list [id]              list the quest's annotations
  map:save [id]                      finish a map editing session
  export:html [id]                   export the quest as a parchment document
  export:bundle [id]                 export the quest's full bundle as JSON
  exports:list [id]                  show the quest's export history
  progress:event name                apply a progression event
  progress:state                     show score, tier, and achievements
  version                            show studio version
  save                               flush buffered session data`)
}

func main() {
	if err := setup(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer shutdown()

	args := os.Args[1:]
	if len(args) > 0 {
		if err := runMaintenance(args); err != nil {
			Logger.Error("Maintenance command failed", "error", err)
			os.Exit(1)
		}
		return
	}

	repl()
}
