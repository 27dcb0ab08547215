package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalhouse/brandgraph/internal/queue"
	mid "github.com/signalhouse/brandgraph/internal/server/middleware"
	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/search"
	"github.com/signalhouse/brandgraph/pkg/search/serpapi"
	"github.com/signalhouse/brandgraph/pkg/search/tavily"
	"github.com/signalhouse/brandgraph/pkg/store"
	"github.com/signalhouse/brandgraph/pkg/store/memory"
	neo4jstore "github.com/signalhouse/brandgraph/pkg/store/neo4j"
	pgxstore "github.com/signalhouse/brandgraph/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rabbitmq/amqp091-go"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := NewStoreFromEnv(ctx)
	defer st.Close(ctx)

	searchClient := NewSearchClientFromEnv()

	var ch *amqp091.Channel
	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()

		var err error
		ch, err = que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch, queue.Queues); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
	}

	apiKey := util.GetEnv("API_KEY")

	e.Use(mid.AppContextMiddleware(st, searchClient, ch, apiKey))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "err", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// NewStoreFromEnv builds the relation store selected by STORE_BACKEND:
// "neo4j" (the default), "postgres", or "memory".
func NewStoreFromEnv(ctx context.Context) store.RelationStore {
	switch util.GetEnv("STORE_BACKEND") {
	case "postgres":
		st, err := pgxstore.NewPgxStore(ctx, pgxstore.NewPgxStoreParams{
			DatabaseURL:    util.GetEnv("DATABASE_URL"),
			MigrationsPath: util.GetEnvString("MIGRATIONS_PATH", "file://migrations"),
		})
		if err != nil {
			logger.Fatal("Failed to connect to postgres", "err", err)
		}
		return st
	case "memory":
		return memory.NewMemoryStore()
	default:
		st, err := neo4jstore.NewNeo4jStore(ctx, neo4jstore.NewNeo4jStoreParams{
			URI:      util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
			Username: util.GetEnvString("NEO4J_USER", "neo4j"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
		})
		if err != nil {
			logger.Fatal("Failed to connect to neo4j", "err", err)
		}
		return st
	}
}

// NewSearchClientFromEnv builds the web search client selected by
// SEARCH_PROVIDER ("tavily" or "serpapi"). Without a provider the client
// still works; searches report unavailability and the resolver degrades to
// inference over the text alone.
func NewSearchClientFromEnv() *search.Client {
	var provider search.Provider
	switch util.GetEnv("SEARCH_PROVIDER") {
	case "serpapi":
		provider = serpapi.NewSerpApiProvider(serpapi.NewSerpApiProviderParams{
			ApiKey: util.GetEnv("SERPAPI_API_KEY"),
		})
	case "tavily":
		provider = tavily.NewTavilyProvider(tavily.NewTavilyProviderParams{
			ApiKey: util.GetEnv("TAVILY_API_KEY"),
		})
	default:
		if util.GetEnv("TAVILY_API_KEY") != "" {
			provider = tavily.NewTavilyProvider(tavily.NewTavilyProviderParams{
				ApiKey: util.GetEnv("TAVILY_API_KEY"),
			})
		}
	}

	return search.NewClient(search.NewClientParams{
		Provider:   provider,
		MaxResults: util.GetEnvInt("SEARCH_MAX_RESULTS", search.DefaultMaxResults),
	})
}
