package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/slipstream-ws/slipstream"
	natsconnection "github.com/slipstream-ws/slipstream/nats-connection"
)

type config struct {
	Transport    string        `mapstructure:"transport"`
	URL          string        `mapstructure:"url"`
	NatsURL      string        `mapstructure:"nats_url"`
	ReadSubject  string        `mapstructure:"read_subject"`
	WriteSubject string        `mapstructure:"write_subject"`
	WriterBuffer int           `mapstructure:"writer_buffer"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TickPath     string        `mapstructure:"tick_path"`
}

func loadConfig() (*config, error) {
	v := viper.New()
	v.SetConfigName("client")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("transport", "websocket")
	v.SetDefault("url", "ws://localhost:8167")
	v.SetDefault("nats_url", nats.DefaultURL)
	v.SetDefault("read_subject", "slipstream.demo.inbound")
	v.SetDefault("write_subject", "slipstream.demo.outbound")
	v.SetDefault("writer_buffer", 64)
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("tick_path", "/time/tick")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	options := []slipstream.Option{
		slipstream.WithLogger(log),
		slipstream.WithWriterBufferSize(cfg.WriterBuffer),
		slipstream.WithWriteTimeout(cfg.WriteTimeout),
	}

	var client *slipstream.Client
	switch cfg.Transport {
	case "nats":
		natsConn, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NatsURL).Msg("connecting to NATS")
		}
		defer natsConn.Close()

		conn, err := natsconnection.New(natsConn, cfg.ReadSubject, cfg.WriteSubject, cfg.WriterBuffer)
		if err != nil {
			log.Fatal().Err(err).Str("subject", cfg.ReadSubject).Msg("subscribing to read subject")
		}
		client = slipstream.NewClient(conn, options...)
	default:
		client, err = slipstream.Dial(ctx, cfg.URL, options...)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.URL).Msg("dialing server")
		}
	}

	client.Bind(cfg.TickPath, func(ctx *slipstream.Context) {
		var tick struct {
			Time int64 `json:"time"`
		}
		if err := ctx.Unmarshal(&tick); err != nil {
			log.Warn().Err(err).Msg("bad tick payload")
			return
		}
		log.Info().Int64("time", tick.Time).Msg("tick")
	})

	if err := client.SendTo("/time/start", nil); err != nil {
		log.Fatal().Err(err).Msg("starting time stream")
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("interrupt received, stopping client")
		if err := client.SendTo("/time/stop", nil); err != nil {
			log.Warn().Err(err).Msg("stopping time stream")
		}
		client.Kill()
		<-client.Done()
	case <-client.Done():
		if err := client.Err(); err != nil {
			log.Error().Err(err).Msg("client stopped")
			return
		}
		log.Info().Msg("client stopped")
	}
}
