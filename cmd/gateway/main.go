package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"routine-builder/handler"
	"routine-builder/internal/integrations/openai"
	"routine-builder/internal/integrations/paramstore"
)

const defaultModel = "gpt-4o"

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	model := envOr("OPENAI_MODEL", defaultModel)
	baseURL := os.Getenv("OPENAI_BASE_URL")
	apiKey := os.Getenv("OPENAI_API_KEY")

	opts := []openai.Option{}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	// ---- Provider client ----
	// The credential is resolved here and nowhere else: either injected via
	// the environment or fetched from SSM under PARAM_PREFIX.
	var llm *openai.Client
	var err error
	if apiKey != "" {
		llm, err = openai.NewClient(nil, "", append(opts, openai.WithStaticKey(apiKey))...)
	} else {
		paramPrefix := mustEnv("PARAM_PREFIX")

		cfg, cfgErr := config.LoadDefaultConfig(ctx)
		if cfgErr != nil {
			slog.Error("failed to load AWS config", "err", cfgErr)
			os.Exit(1)
		}
		ps, psErr := paramstore.New(awsssm.NewFromConfig(cfg))
		if psErr != nil {
			slog.Error("failed to create SSM client", "err", psErr)
			os.Exit(1)
		}
		llm, err = openai.NewClient(ps, paramPrefix, opts...)
	}
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(llm, model)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
