package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kroy92/copilot-automation-testing/internal/config"
	"github.com/kroy92/copilot-automation-testing/internal/service/directline"
	"github.com/kroy92/copilot-automation-testing/internal/service/judge"
)

var (
	// Persistent flags available to all subcommands
	tokenEndpoint  string
	baseURL        string
	receiveTimeout time.Duration
	verbose        bool

	cfg *config.Config
)

var errNoEndpoint = errors.New("no token endpoint configured: set BOT_TOKEN_ENDPOINT or pass --endpoint")

var rootCmd = &cobra.Command{
	Use:   "botprobe",
	Short: "botprobe exercises a Direct Line bot and asserts on its replies",
	Long: `botprobe opens Direct Line conversations with a bot, sends user turns and checks the
replies, either by substring matching or with an LLM similarity judge.

Configuration is read from the environment (and a .env file when present); flags override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && verbose {
			log.Printf("warning: failed to load .env file: %v", err)
		}
		if !verbose {
			log.SetOutput(io.Discard)
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tokenEndpoint, "endpoint", "", "token endpoint of the bot (default: BOT_TOKEN_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Direct Line base URL (default: DIRECTLINE_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&receiveTimeout, "timeout", 0, "per-frame receive timeout (default: BOT_RECEIVE_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print protocol logs to stderr")

	rootCmd.AddCommand(runCmd, chatCmd, judgeCmd)
}

// clientOptions 合并环境配置与命令行参数。
func clientOptions() (directline.Options, error) {
	opts := directline.OptionsFromConfig(cfg.DirectLine)
	if tokenEndpoint != "" {
		opts.TokenEndpoint = tokenEndpoint
	}
	if baseURL != "" {
		opts.BaseURL = baseURL
	}
	if receiveTimeout > 0 {
		opts.ReceiveTimeout = receiveTimeout
	}
	if opts.TokenEndpoint == "" {
		return directline.Options{}, errNoEndpoint
	}
	return opts, nil
}

func connect(ctx context.Context) (*directline.Client, error) {
	opts, err := clientOptions()
	if err != nil {
		return nil, err
	}

	client := directline.NewClient(opts)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// newJudge 在 Ark 凭证缺失时返回 nil。
func newJudge(ctx context.Context) (*judge.Service, error) {
	if !cfg.AI.Enabled() {
		return nil, nil
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return judge.NewService(ctx, chatModel, judge.Config{Threshold: cfg.AI.Threshold})
}
