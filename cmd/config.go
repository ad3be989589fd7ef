package main

import "time"

type Config struct {
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel           string        `env:"LOG_LEVEL,required=true"`
	Host               string        `env:"HOST,required=true"`
	Port               int           `env:"PORT,required=true"`
	NatsURL            string        `env:"NATS_URL,required=true"`
	DriverTickInterval time.Duration `env:"DRIVER_TICK_INTERVAL,required=true"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,required=true"`
	RecentLimit        *int          `env:"RECENT_LIMIT"`
}
