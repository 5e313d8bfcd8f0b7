package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yanqian/zh-translator/internal/infra/config"
	"github.com/yanqian/zh-translator/internal/infra/llm/chatgpt"
)

type probeOptions struct {
	configPath string
	text       string
}

// newRootCmd sends one raw chat message upstream and prints what came back.
func newRootCmd(out io.Writer) *cobra.Command {
	opts := &probeOptions{}
	cmd := &cobra.Command{
		Use:          "probe",
		Short:        "Check connectivity and credentials against the chat completion API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd.Context(), out, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: $CONFIG_PATH or ./configs/config.yaml)")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "你好", "message sent as the user turn")
	return cmd
}

func runProbe(ctx context.Context, out io.Writer, opts *probeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "url: %s/chat/completions\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "model: %s\n", cfg.Model.Name)
	fmt.Fprintf(out, "api key: %s\n", maskKey(cfg.API.Key))

	client := chatgpt.NewClient(chatgpt.Options{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
	})
	resp, err := client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:    cfg.Model.Name,
		Messages: []chatgpt.Message{{Role: "user", Content: opts.text}},
	})
	if err != nil {
		var apiErr *chatgpt.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(out, "status: %d\nbody: %s\n", apiErr.StatusCode, apiErr.Body)
		}
		return fmt.Errorf("probe failed: %w", err)
	}

	fmt.Fprintln(out, "status: ok")
	if len(resp.Choices) == 0 {
		return errors.New("probe failed: no choices returned")
	}
	fmt.Fprintf(out, "reply: %s\n", resp.Choices[0].Message.Content)
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
