package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/rtc"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	gatewayURL := flag.String("gateway", "http://localhost:8080", "voicegate server base URL")
	email := flag.String("email", "", "identity to check against the access gate")
	realtimeURL := flag.String("realtime", "https://api.openai.com/v1/realtime", "realtime endpoint for the answer exchange")
	model := flag.String("model", "gpt-4o-realtime-preview-2024-12-17", "realtime model")
	flag.Parse()

	if *email == "" {
		log.Fatal().Msg("-email is required")
	}

	gateway := rtc.NewGatewayClient(*gatewayURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authorized, err := gateway.CheckAccess(ctx, *email)
	if err != nil {
		log.Fatal().Err(err).Msg("access check failed")
	}
	if !authorized {
		log.Fatal().Str("email", *email).Msg("no active subscription, refusing to start a session")
	}

	negotiator := rtc.NewNegotiator(rtc.Config{
		Credentials: gateway,
		Devices:     rtc.NewStaticAudioSource(),
		NewPeer:     rtc.NewPionPeerFactory(),
		Exchanger:   rtc.NewHTTPExchanger(*realtimeURL, *model),
		OnStateChange: func(s rtc.State) {
			log.Info().Str("state", s.String()).Msg("negotiation state")
		},
		OnRemoteTrack: func() {
			log.Info().Msg("receiving remote audio")
		},
	})

	if err := negotiator.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("negotiation failed")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("tearing down session")
	negotiator.Stop()
}
