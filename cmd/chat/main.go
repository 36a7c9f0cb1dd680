package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/pkg/dialogue"
	"ai-chatbot-be/pkg/embedding"
	"ai-chatbot-be/pkg/intent"
	"ai-chatbot-be/pkg/orchestrator"
	"ai-chatbot-be/pkg/responder"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
	userID     string
	ollamaURL  string
	showTrace  bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the terminal",
	Long: `Runs the full message pipeline in-process against local data files.

No database, broker or HTTP server is needed. FAQs are read from faqs.csv,
the menu from menu.csv and free text from the docs directory.
Type "exit" or press Ctrl+D to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "business YAML (defaults to config.yaml, then config_example.yaml)")
	rootCmd.Flags().StringVarP(&dataDir, "data", "d", "data", "directory with faqs.csv, menu.csv and docs/")
	rootCmd.Flags().StringVarP(&userID, "user", "u", "console", "user id the session is keyed by")
	rootCmd.Flags().StringVar(&ollamaURL, "ollama", "", "Ollama URL for embeddings; keyword search when empty")
	rootCmd.Flags().BoolVarP(&showTrace, "trace", "t", false, "print the trace of every reply")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewNopLogger()

	business, err := config.LoadBusiness(configPath)
	if err != nil {
		return err
	}

	src, err := retrieval.LoadDataDir(dataDir, log)
	if err != nil {
		return err
	}
	var embedder embedding.EmbeddingProvider
	if ollamaURL != "" {
		embedder = embedding.NewOllamaProvider(ollamaURL, "")
	}
	index := retrieval.NewIndex(embedder, log, retrieval.Options{
		ChunkSize:    business.Retrieval.ChunkSize,
		ChunkOverlap: business.Retrieval.ChunkOverlap,
	})
	stats := index.Rebuild(ctx, src)
	if stats.Error != "" {
		color.Yellow("Index build failed: %s", stats.Error)
	}

	defs, err := business.DialogueDefinitions()
	if err != nil {
		return err
	}
	engine, err := dialogue.NewEngine(defs, memory.NewSessionRepository(time.Hour), log,
		dialogue.WithProductReplies(business.Orders.Products))
	if err != nil {
		return err
	}
	engine.RegisterFinalizer(dialogue.QuickOrder, dialogue.NewOrderFinalizer(business.Business.Name))

	synth := responder.NewSynthesizer(business.SynthesizerSettings(), nil, log)
	orch := orchestrator.New(orchestrator.Config{
		TopK:            business.Retrieval.TopK,
		MinScore:        business.Retrieval.MinScore,
		OrdersEnabled:   business.Orders.Enable,
		TriggerKeywords: business.Orders.TriggerKeywords,
		TriggerDialogue: business.Orders.TriggerFlow,
		CancelReply:     business.Responses.Cancelled,
		Apology:         business.Responses.Apology,
	}, engine, index, intent.MustNewClassifier(intent.DefaultRules()), synth, log)

	color.Cyan("%s · %d FAQs, %d productos, %d documentos", business.Business.Name, stats.FAQCount, stats.CatalogCount, stats.DocCount)
	return repl(ctx, orch)
}

func repl(ctx context.Context, orch *orchestrator.Orchestrator) error {
	prompt := color.New(color.FgGreen, color.Bold)
	bot := color.New(color.FgWhite)
	hint := color.New(color.FgHiBlack)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("tú> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return nil
		}

		res, err := orch.ProcessMessage(ctx, orchestrator.Message{Text: text, UserID: userID, Channel: "console"})
		if err != nil {
			color.Red("error: %v", err)
			fallback := orch.Apology()
			res = &fallback
		}

		bot.Println("bot> " + res.Reply)
		if len(res.QuickReplies) > 0 {
			hint.Printf("     [%s]\n", strings.Join(res.QuickReplies, "] ["))
		}
		if res.Order != nil {
			color.Magenta("     pedido: %s x%d para %s (%s)", res.Order.Product, res.Order.Quantity, res.Order.CustomerName, res.Order.Phone)
		}
		if showTrace {
			raw, _ := json.MarshalIndent(res.Trace, "     ", "  ")
			hint.Println("     " + string(raw))
		}
	}
}
