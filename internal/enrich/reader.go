package enrich

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/Nic0Byte/NearYou-v1/internal/config"
)

// NewKafkaReader builds the C6 ingestion reader: a partitioned topic
// consumer group reader with CommitInterval disabled so every commit
// goes through an explicit CommitMessages call (never auto-committed),
// a new consumer group starting at the latest offset, and TLS
// configured from ssl when a CA file is set.
func NewKafkaReader(cfg config.KafkaConfig, ssl config.SSLConfig) (*kafka.Reader, error) {
	dialer, err := NewDialer(ssl)
	if err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.Broker},
		Topic:          cfg.Topic,
		GroupID:        cfg.ConsumerGroup,
		Dialer:         dialer,
		CommitInterval: 0, // explicit commits only
		StartOffset:    kafka.LastOffset,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return reader, nil
}

// NewDialer builds the kafka.Dialer C6 and C7 both connect with: plain
// DefaultDialer when ssl.CAFile is unset, else a TLS dialer built from
// the configured CA/cert/key files.
func NewDialer(ssl config.SSLConfig) (*kafka.Dialer, error) {
	if ssl.CAFile == "" {
		return kafka.DefaultDialer, nil
	}
	tlsConfig, err := buildTLSConfig(ssl)
	if err != nil {
		return nil, fmt.Errorf("enrich: failed to build tls config: %w", err)
	}
	return &kafka.Dialer{DualStack: true, TLS: tlsConfig}, nil
}

func buildTLSConfig(ssl config.SSLConfig) (*tls.Config, error) {
	caCert, err := os.ReadFile(ssl.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ca file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse ca file %q", ssl.CAFile)
	}

	tlsConfig := &tls.Config{RootCAs: pool}

	if ssl.CertFile != "" && ssl.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(ssl.CertFile, ssl.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// Run drains reader, dispatching each message by its key (the user_id)
// to d, and commits the message only after Dispatch has handed it off
// to its per-user queue. It returns when ctx is cancelled or the
// reader returns a non-context error.
func Run(ctx context.Context, reader *kafka.Reader, d *Dispatcher) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("enrich: fetch message failed: %w", err)
		}

		userID, _ := strconv.ParseUint(string(msg.Key), 10, 64)
		d.Dispatch(ctx, userID, msg.Value, uint64(msg.Offset))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("enrich: commit failed: %w", err)
		}
	}
}
