// cmd/confd/main.go
//
// confd – dynamic configuration daemon entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load bootstrap settings (conf/confd.yaml + DYNCONF_ overrides),
//     resolving `vault:` secret indirections when VAULT_ADDR is set.
//
//  3. Start daily rotating logger (tees to console when in a TTY).
//
//  4. Build the configured sources: file, env, and, when enabled,
//     the repository source over the control-plane DB.
//
//  5. Register them with the composite store; each registration runs
//     one synchronous initial poll, so the effective snapshot is
//     populated before the admin surface comes up.
//
//  6. Serve the admin API (chi): /healthz, /config, /config/{key},
//     POST /refresh/{source}, and Prometheus /metrics.
//
//  7. On SIGINT/SIGTERM: drain the HTTP server, close the store (no
//     poll runs after close), and close the DB pool.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/dynconf/internal/config"
	"github.com/yanizio/dynconf/internal/database"
	"github.com/yanizio/dynconf/internal/entry"
	"github.com/yanizio/dynconf/internal/field"
	"github.com/yanizio/dynconf/internal/logger"
	"github.com/yanizio/dynconf/internal/settings"
	"github.com/yanizio/dynconf/internal/source"
	"github.com/yanizio/dynconf/internal/vault"
)

const serverEnvPath = "/usr/local/etc/dynconf/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Bootstrap settings (vault indirection optional) ────────────
	//
	var resolver settings.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New(ctx)
		if err != nil {
			log.Fatalf("vault client: %v", err)
		}
		resolver = cli
	}

	cfg, err := settings.Load(ctx, resolver)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 2.  Sources → composite store ──────────────────────────────────
	//
	store := source.NewStore()

	if cfg.Sources.File.Enabled {
		if err := store.Add(source.NewFile("file", cfg.Sources.File.Path, cfg.Sources.File.Interval)); err != nil {
			logOut.Fatalw("register file source", "err", err)
		}
	}
	if cfg.Sources.Env.Enabled {
		prefix := cfg.Sources.Env.Prefix
		if prefix == "" {
			prefix = "DYNCONF_KV_"
		}
		if err := store.Add(source.NewEnv("env", prefix, 0)); err != nil {
			logOut.Fatalw("register env source", "err", err)
		}
	}

	if cfg.Sources.Repo.Enabled {
		logOut.Infow("connecting to control-plane DB")
		db, err := database.Open(cfg.Sources.Repo.DSN)
		if err != nil {
			logOut.Fatalw("connect control-plane DB", "err", err)
		}
		defer db.Close()

		repo := entry.NewSQLRepository(db, cfg.Sources.Repo.Table)
		src := source.NewRepo("repo", repo,
			cfg.Sources.Repo.InitialDelay, cfg.Sources.Repo.Interval)
		if err := store.Add(src); err != nil {
			logOut.Fatalw("register repo source", "err", err)
		}
	}

	conf := config.New(store)
	logOut.Infow("composite store online", "keys", len(conf.Snapshot()))

	//
	// ── 3.  Admin API ──────────────────────────────────────────────────
	//
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, maskSnapshot(conf.Snapshot()))
	})

	r.Get("/config/{key}", func(w http.ResponseWriter, req *http.Request) {
		key := chi.URLParam(req, "key")
		snap := maskSnapshot(conf.Snapshot())
		v, ok := snap[key]
		if !ok {
			http.NotFound(w, req)
			return
		}
		writeJSON(w, map[string]any{"key": key, "value": v})
	})

	r.Post("/refresh/{source}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "source")
		if err := store.Refresh(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: r}
	go func() {
		logOut.Infow("admin API listening", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalw("http server", "err", err)
		}
	}()

	//
	// ── 4.  Shutdown ───────────────────────────────────────────────────
	//
	<-ctx.Done()
	logOut.Infow("shutting down")

	drain, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(drain)
	store.Close()
	logOut.Infow("bye")
}

// maskSnapshot hides values whose key suggests a credential.  Field
// descriptors carry real sensitivity flags, but the admin surface has
// only keys, so it errs on the side of masking.
func maskSnapshot(snap map[string]any) map[string]any {
	out := make(map[string]any, len(snap))
	for k, v := range snap {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "password") || strings.Contains(lk, "secret") || strings.Contains(lk, "token") {
			out[k] = field.Mask
			continue
		}
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
