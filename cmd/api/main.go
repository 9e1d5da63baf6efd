package main

import (
	"context"
	"errors"
	"fmt"
	"killboard"
	"killboard/battles"
	"killboard/httperror"
	"killboard/store"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/olahol/melody"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	config, err := killboard.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read config")
	}

	log.Logger = killboard.NewLogger(config.Environment)

	rdb := redis.NewClient(&redis.Options{Addr: config.RedisURL})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	defer rdb.Close()

	documents := store.New(rdb)
	reconstructor := battles.NewReconstructor(documents)

	m := melody.New()

	// No limit on messages
	m.Config.MaxMessageSize = 0
	m.Config.WriteWait = 5 * time.Second

	r := NewRouter()
	r.Use(middleware.Logger)

	r.Get("/_healthz", func(w http.ResponseWriter, r *http.Request) *httperror.HTTPError {
		w.WriteHeader(http.StatusOK)
		return nil
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) *httperror.HTTPError {
		w.Write([]byte(killboard.Version))
		w.WriteHeader(http.StatusOK)
		return nil
	})

	r.Get("/killmails/{killmailID}", func(w http.ResponseWriter, r *http.Request) *httperror.HTTPError {
		killmailID, err := strconv.ParseInt(chi.URLParam(r, "killmailID"), 10, 32)
		if err != nil {
			return httperror.BadRequestWithError("invalid killmail ID", err)
		}

		killmail, ok, err := documents.KillmailByID(r.Context(), int32(killmailID))
		if err != nil {
			return httperror.InternalServerError("failed to load killmail", err)
		}

		if !ok {
			return httperror.NotFound("killmail not found")
		}

		render.JSON(w, r, killmail)
		return nil
	})

	r.Get("/battles/{systemID}", func(w http.ResponseWriter, r *http.Request) *httperror.HTTPError {
		systemID, err := strconv.ParseInt(chi.URLParam(r, "systemID"), 10, 32)
		if err != nil {
			return httperror.BadRequestWithError("invalid system ID", err)
		}

		at := time.Now().UTC()
		if raw := r.URL.Query().Get("time"); raw != "" {
			at, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return httperror.BadRequestWithError("invalid time", err)
			}
		}

		battle, ok, err := reconstructor.Report(r.Context(), int32(systemID), at)
		if err != nil {
			return httperror.InternalServerError("failed to build battle report", err)
		}

		if !ok {
			return httperror.NotFound("no battle found")
		}

		render.JSON(w, r, battle)
		return nil
	})

	r.Get("/websocket/{queueID}", func(w http.ResponseWriter, r *http.Request) *httperror.HTTPError {
		queueID := chi.URLParam(r, "queueID")
		if len(queueID) > 128 {
			return httperror.BadRequest("queue ID must be 128 characters or less")
		}

		m.HandleRequestWithKeys(w, r, map[string]any{"queueID": queueID})
		return nil
	})

	r.Get("/poll/{queueID}", func(w http.ResponseWriter, r *http.Request) *httperror.HTTPError {
		ctx := r.Context()

		queueID := chi.URLParam(r, "queueID")
		if len(queueID) > 128 {
			return httperror.BadRequest("queue ID must be 128 characters or less")
		}

		messages, err := fetchKillmails(ctx, rdb, fmt.Sprintf("stream:poll:%s", queueID), 100, 60*time.Second)
		if err != nil {
			if errors.Is(err, errStreamEmpty) {
				render.JSON(w, r, []struct{}{})
				return nil
			}

			return httperror.InternalServerError("failed to read killmail stream", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(joinJSONArray(messages))
		return nil
	})

	m.HandleConnect(func(s *melody.Session) {
		queueID := s.Keys["queueID"].(string)

		log.Info().Str("queueID", queueID).Msg("new websocket connection")

		go handleWebsocket(s.Request.Context(), log.With().Str("queue-id", queueID).Logger(), rdb, s, queueID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		queueID := s.Keys["queueID"].(string)

		log.Info().Str("queueID", queueID).Msg("closed websocket connection")
	})

	log.Info().Int("port", config.Port).Msg("http server listening")

	srv := &http.Server{Addr: fmt.Sprintf(":%d", config.Port), Handler: r}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http listener failed")
	}
}

func handleWebsocket(ctx context.Context, logger zerolog.Logger, rdb *redis.Client, s *melody.Session, queueID string) {
	latestIDKey := fmt.Sprintf("stream:websocket:%s", queueID)

	for {
		select {
		case <-ctx.Done():
			return

		default:
			messages, err := fetchKillmails(ctx, rdb, latestIDKey, 10, 0)
			if err != nil && !errors.Is(err, errStreamEmpty) {
				if errors.Is(err, context.Canceled) && s.IsClosed() {
					return
				}

				logger.Error().Err(err).Msg("failed to fetch websocket killmails")
				if err := s.CloseWithMsg(melody.FormatCloseMessage(melody.CloseInternalServerErr, "internal server error")); err != nil {
					logger.Error().Err(err).Msg("failed to close websocket after fetch error")
				}

				return
			}

			for _, message := range messages {
				if err := s.WriteWithDeadline(message, 0); err != nil {
					logger.Error().Err(err).Msg("failed to write to websocket")
					if err := s.CloseWithMsg(melody.FormatCloseMessage(melody.CloseAbnormalClosure, "write failed")); err != nil {
						logger.Error().Err(err).Msg("failed to close websocket after write error")
					}
				}
			}
		}
	}
}
