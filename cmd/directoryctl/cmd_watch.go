package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gartstein/directory/internal/directory/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	brokers string
	topic   string
	groupID string
	verbose bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail employee change events from Kafka",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&brokers, "brokers", "localhost:9092", "comma-separated Kafka brokers")
	watchCmd.Flags().StringVar(&topic, "topic", events.DefaultTopic, "change event topic")
	watchCmd.Flags().StringVar(&groupID, "group", "directoryctl", "consumer group id")
	watchCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log consumer diagnostics")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(strings.Split(brokers, ","), groupID, topic, logger)
	defer consumer.Close()
	consumer.RegisterHandler(func(_ context.Context, ev events.Event) error {
		fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
		return nil
	})
	return consumer.Run(ctx)
}

func formatEvent(ev events.Event) string {
	line := fmt.Sprintf("%s %s", ev.OccurredAt.Format("2006-01-02 15:04:05"), ev.Type)
	if ev.Employee != nil {
		line += fmt.Sprintf(" #%d %s <%s>", ev.Employee.ID, ev.Employee.FullName(), ev.Employee.Email)
	}
	return line
}
