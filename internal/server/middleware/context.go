package middleware

import (
	"github.com/signalhouse/brandgraph/internal/util"

	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/signalhouse/brandgraph/pkg/ai"
	oai "github.com/signalhouse/brandgraph/pkg/ai/ollama"
	gai "github.com/signalhouse/brandgraph/pkg/ai/openai"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/search"
	"github.com/signalhouse/brandgraph/pkg/store"
)

type App struct {
	Store    store.RelationStore
	Search   *search.Client
	Queue    *amqp091.Channel
	AiClient ai.InferenceClient
	APIKey   string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(
	st store.RelationStore,
	searchClient *search.Client,
	queue *amqp091.Channel,
	apiKey string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			adapter := util.GetEnv("AI_ADAPTER")
			var aiClient ai.InferenceClient

			switch adapter {
			case "ollama":
				client, err := oai.NewOllamaInferenceClient(oai.NewOllamaInferenceClientParams{
					ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
					InferenceModel:  util.GetEnv("AI_INFER_MODEL"),

					BaseURL: util.GetEnv("AI_CHAT_URL"),
					ApiKey:  util.GetEnv("AI_CHAT_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
				})
				if err != nil {
					logger.Fatal("Failed to create Ollama client", "err", err)
				}
				aiClient = client
			default:
				aiClient = gai.NewOpenAIInferenceClient(gai.NewOpenAIInferenceClientParams{
					ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
					InferenceModel:  util.GetEnv("AI_INFER_MODEL"),

					ChatURL: util.GetEnv("AI_CHAT_URL"),
					ChatKey: util.GetEnv("AI_CHAT_KEY"),
				})
			}

			app := &App{
				Store:    st,
				Search:   searchClient,
				Queue:    queue,
				AiClient: aiClient,
				APIKey:   apiKey,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
