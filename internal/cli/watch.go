package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fiado/backend/internal/domain/shared"
	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/fiado/backend/internal/infrastructure/event"
	"github.com/fiado/backend/internal/infrastructure/logger"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type watchOptions struct {
	url    string
	stream string
	prefix string
	types  []string
}

// apply overrides the loaded NATS settings with any flags that were set
func (o watchOptions) apply(cfg config.NATSConfig) config.NATSConfig {
	if o.url != "" {
		cfg.URL = o.url
	}
	if o.stream != "" {
		cfg.StreamName = o.stream
	}
	if o.prefix != "" {
		cfg.SubjectPrefix = o.prefix
	}
	return cfg
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	wopts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow ledger events published by the API server",
		Long: `Follow ledger events published to NATS JetStream by the API server.
Connection settings come from config.toml and FIADO_NATS_* environment
variables; flags override them. Only events published after the watch
starts are shown.`,
		Example: `  ledgerctl watch
  ledgerctl watch --type SaleRecorded --type PaymentRecorded -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			natsCfg := wopts.apply(cfg.NATS)

			log, err := logger.New(&logger.Config{Level: "warn", Format: "console", Output: "stderr"})
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			conn, err := event.Connect(natsCfg, log)
			if err != nil {
				return err
			}
			defer conn.Close()

			js, err := jetstream.New(conn)
			if err != nil {
				return fmt.Errorf("create jetstream context: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serializer := event.NewLedgerSerializer()
			printEvent := eventPrinter(cmd.OutOrStdout(), serializer, opts.output == outputJSON)
			return event.Watch(ctx, js, natsCfg, serializer, wopts.types, printEvent, func(err error) {
				log.Warn("skipping undecodable message", zap.Error(err))
			})
		},
	}

	cmd.Flags().StringVar(&wopts.url, "nats-url", "", "NATS server URL")
	cmd.Flags().StringVar(&wopts.stream, "stream", "", "JetStream stream name")
	cmd.Flags().StringVar(&wopts.prefix, "subject-prefix", "", "Subject prefix of ledger events")
	cmd.Flags().StringSliceVar(&wopts.types, "type", nil, "Event types to follow (repeatable)")
	return cmd
}

// eventPrinter writes one line per event: the wire envelope in JSON mode,
// otherwise a short summary.
func eventPrinter(w io.Writer, serializer *event.EventSerializer, asJSON bool) func(shared.DomainEvent) {
	return func(e shared.DomainEvent) {
		if asJSON {
			data, err := serializer.Serialize(e)
			if err != nil {
				fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
				return
			}
			fmt.Fprintf(w, "%s\n", data)
			return
		}
		fmt.Fprintf(w, "%s  %-24s %s/%s\n",
			e.OccurredAt().Format("2006-01-02T15:04:05Z07:00"), e.EventType(), e.AggregateType(), e.AggregateID())
	}
}
