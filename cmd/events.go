/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jjudge-oj/userservice/internal/mq"
	"github.com/jjudge-oj/userservice/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect user lifecycle events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print user lifecycle events as they are published",
	Long: `Subscribes to the user events channel and prints one JSON line per
event until interrupted. Usage:

	userservice events tail
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		broker, err := mq.New(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("user events are disabled: set MQ_BACKEND")
		}
		defer func() { _ = broker.Close() }()

		logger.Info("tailing user events", zap.String("channel", cfg.MQ.UserEventsChannel))
		return broker.Subscribe(cmd.Context(), cfg.MQ.UserEventsChannel, printEvent(cmd.OutOrStdout(), logger))
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

// printEvent writes each decoded event as a single JSON line. Undecodable
// messages are logged and acked so they do not redeliver forever.
func printEvent(out io.Writer, logger *zap.Logger) mq.Handler {
	enc := json.NewEncoder(out)
	return func(_ context.Context, msg mq.Message) error {
		var event services.UserEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("skip undecodable event", zap.String("message_id", msg.ID), zap.Error(err))
			return nil
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("write event %s: %w", msg.ID, err)
		}
		return nil
	}
}
