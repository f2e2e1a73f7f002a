package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nest/internal/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// addEngineFlags registers the session store and telemetry flags shared by
// the serving commands.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", cli.StoreMemory, "Session store: memory, file or redis")
	cmd.Flags().String("session-dir", cli.DefaultSessionDir, "Directory of the file store")
	cmd.Flags().String("redis-addr", os.Getenv("NEST_REDIS_ADDR"), "Redis address (host:port)")
	cmd.Flags().String("redis-password", os.Getenv("NEST_REDIS_PASSWORD"), "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().String("redis-prefix", "", "Key prefix for sessions and locks")
	cmd.Flags().Duration("session-ttl", 0, "Expire idle sessions after this long (redis only)")
	cmd.Flags().Duration("lock-ttl", 0, "Session lock lease when the store supports locking")
	cmd.Flags().Bool("trace-spans", false, "Export OpenTelemetry spans as JSON to Stderr")
}

// openEngine builds the engine selected by the flags of addEngineFlags.
func openEngine(cmd *cobra.Command, reg prometheus.Registerer) *cli.Engine {
	path, _ := cmd.Flags().GetString("config")
	kind, _ := cmd.Flags().GetString("store")
	dir, _ := cmd.Flags().GetString("session-dir")
	addr, _ := cmd.Flags().GetString("redis-addr")
	password, _ := cmd.Flags().GetString("redis-password")
	db, _ := cmd.Flags().GetInt("redis-db")
	prefix, _ := cmd.Flags().GetString("redis-prefix")
	ttl, _ := cmd.Flags().GetDuration("session-ttl")
	lockTTL, _ := cmd.Flags().GetDuration("lock-ttl")
	spans, _ := cmd.Flags().GetBool("trace-spans")

	opts := cli.EngineOptions{
		ConfigPath: path,
		Store: cli.StoreOptions{
			Kind:          kind,
			Dir:           dir,
			RedisAddr:     addr,
			RedisPassword: password,
			RedisDB:       db,
			Prefix:        prefix,
			TTL:           ttl,
		},
		LockTTL:    lockTTL,
		Logger:     commandLogger(cmd),
		Registerer: reg,
	}
	if spans {
		opts.SpanOutput = os.Stderr
	}

	engine, err := cli.NewEngine(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing nest: %v\n", err)
		os.Exit(1)
	}
	return engine
}
