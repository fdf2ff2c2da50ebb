package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	supportx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/agents/support"
	contractx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/contract"
	identityx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/identity"
	promptx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/prompt"
	toolx "github.com/tanpawarit/Chative-Customer-Support-Agent/agent/tool"
	dbx "github.com/tanpawarit/Chative-Customer-Support-Agent/db"
	configx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/config"
	_ "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/openrouter"
	shippingx "github.com/tanpawarit/Chative-Customer-Support-Agent/pkg/shipping"
)

func main() {
	// Flags must be registered before the first config load; the loader
	// owns flag.Parse for the -env flag.
	email := flag.String("email", "", "customer email address (required)")
	message := flag.String("message", "", "one-shot question; omit for interactive mode")

	agentCfg := configx.MustNew[supportx.Config]("AGENT")
	postgresCfg := configx.MustNew[dbx.Config]("POSTGRES")
	embeddingCfg := configx.MustNew[dbx.EmbedderConfig]("EMBEDDING")
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	shippingCfg := configx.MustNew[shippingx.Config]("SHIPPING")

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "usage: support-agent --email <address> [--message <question>]")
		os.Exit(2)
	}

	ctx := context.Background()

	embeddingClient := openrouterx.NewClient(openrouterx.Config{
		BaseURL: embeddingCfg.BaseURL,
		APIKey:  embeddingCfg.APIKey,
	})
	if embeddingClient == nil {
		log.Fatal().Msg("failed to initialize embedding client")
	}
	embedder, err := dbx.NewOpenAIEmbedder(embeddingClient, embeddingCfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	store := dbx.MustNew(*postgresCfg, embedder)
	defer store.Close()

	shippingClient := shippingx.MustNew(*shippingCfg)

	prompts := promptx.LoadPromptSet()
	planner, err := supportx.NewPlanner(ctx, openRouterCfg, prompts.Support)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize planner")
	}

	agent, err := supportx.New(
		identityx.NewResolver(store),
		planner,
		toolx.Deps{Store: store, Shipping: shippingClient},
		*agentCfg,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize agent")
	}

	session, err := agent.StartSession(ctx, *email)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrNotFound):
			fmt.Fprintf(os.Stderr, "No account matches %s. Please check the address.\n", *email)
		case errors.Is(err, contractx.ErrAmbiguous):
			fmt.Fprintf(os.Stderr, "More than one account matches %s. Please contact support directly.\n", *email)
		default:
			log.Fatal().Err(err).Msg("failed to start session")
		}
		os.Exit(1)
	}
	log.Info().
		Str("session_id", session.ID()).
		Msg("session started")

	if strings.TrimSpace(*message) != "" {
		ask(ctx, session, *message)
		return
	}

	runREPL(ctx, session)
}

func runREPL(ctx context.Context, session *supportx.Session) {
	fmt.Println("Support agent ready. Type your question, or 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit", "q":
			return
		}
		ask(ctx, session, line)
	}
}

func ask(ctx context.Context, session *supportx.Session, message string) {
	answer, err := session.Ask(ctx, message)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrBudgetExhausted):
			fmt.Println("I could not complete that request within my step limit. Please try a more specific question.")
		case errors.Is(err, contractx.ErrValidation):
			fmt.Println("Please enter a question.")
		default:
			log.Error().Err(err).Msg("question failed")
			fmt.Println("Something went wrong while answering. Please try again.")
		}
		return
	}
	fmt.Println(answer)
}
