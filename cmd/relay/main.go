// relay forwards chat messages to webhook destinations, optionally
// translating between Chinese and English on the way out.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/relay/internal/config"
	"github.com/memohai/relay/internal/feishu"
	"github.com/memohai/relay/internal/logger"
	"github.com/memohai/relay/internal/relay"
	"github.com/memohai/relay/internal/version"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "relay",
		Short:   "Relay chat messages to webhook destinations",
		Version: version.GetInfo(),
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.toml")

	root.AddCommand(sendCmd())
	root.AddCommand(infoCmd())
	root.AddCommand(cardCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSender() (*relay.Sender, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return relay.NewSender(logger.L, cfg)
}

func sendCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Dispatch JSON-line messages from stdin or a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, err := loadSender()
			if err != nil {
				return err
			}

			reader := io.Reader(os.Stdin)
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				reader = f
			}

			messages, err := readMessages(reader)
			if err != nil {
				return err
			}

			ctx := context.Background()
			sender.Prepare(ctx)
			results := sender.SendData(ctx, messages)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range results {
				if err := encoder.Encode(r); err != nil {
					return err
				}
			}
			logger.L.Info("batch dispatched",
				slog.Int("messages", len(messages)),
				slog.Int("delivered", len(results)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "read messages from file instead of stdin")
	return cmd
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the webhook metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, err := loadSender()
			if err != nil {
				return err
			}
			sender.Prepare(context.Background())
			info := sender.Info()
			if info.ChannelID == "" {
				return fmt.Errorf("webhook metadata unavailable")
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
		},
	}
}

func cardCmd() *cobra.Command {
	var title, note string
	cmd := &cobra.Command{
		Use:   "card [body]",
		Short: "Post an interactive card to the Feishu webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)

			sender, err := feishu.NewSender(logger.L, cfg.Feishu)
			if err != nil {
				return err
			}
			return sender.SendCard(context.Background(), feishu.CardMessage{
				Title: title,
				Body:  args[0],
				Note:  note,
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "card title")
	cmd.Flags().StringVarP(&note, "note", "n", "", "card footnote")
	return cmd
}

func readMessages(r io.Reader) ([]relay.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var messages []relay.Message
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg relay.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("parse message line: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, scanner.Err()
}
