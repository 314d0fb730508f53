package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"momentumbt/cmd/backtester/commands"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := commands.Execute(); err != nil {
		log.Error().Err(err).Msg("backtest failed")
		os.Exit(1)
	}
}
