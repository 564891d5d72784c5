// cmd/server/main.go
package main

import (
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wasender/wablast-backend/internal/controller"
	"github.com/wasender/wablast-backend/internal/db"
	"github.com/wasender/wablast-backend/internal/handler"
	"github.com/wasender/wablast-backend/internal/queue"
	"github.com/wasender/wablast-backend/internal/repository"
	"github.com/wasender/wablast-backend/internal/service"
)

func main() {
	log := newLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, relying on OS environment variables")
	}

	ownerID := os.Getenv("SESSION_OWNER_ID")
	if ownerID == "" {
		ownerID = "default"
	}

	// Duplicate store: sqlite by default, postgres for shared deployments,
	// memory when persistence is explicitly disabled.
	dbCfg := db.FromEnv()
	var store repository.DuplicateStore
	if dbCfg.Driver == "none" || dbCfg.Driver == "memory" {
		store = repository.NewMemoryDuplicateStore()
		log.Warn().Msg("duplicate records are not persisted (memory store)")
	} else {
		conn, err := db.Open(dbCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		defer conn.Close()
		store, err = repository.NewDuplicateStore(dbCfg.Driver, conn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init duplicate store")
		}
		log.Info().Str("driver", dbCfg.Driver).Msg("connected to database")
	}

	// Delivery reports: RabbitMQ when configured, otherwise an in-memory
	// queue with a logging subscriber.
	var reports queue.Queue
	if url := os.Getenv("AMQP_URL"); url != "" {
		rq, err := queue.NewRabbitQueue(url, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rq.Close()
		reports = rq
		log.Info().Msg("publishing delivery reports to RabbitMQ")
	} else {
		mq := queue.NewInMemoryQueue(log)
		_ = mq.Subscribe(queue.TopicBlastReports, func(body []byte) error {
			log.Debug().RawJSON("report", body).Msg("delivery report")
			return nil
		})
		reports = mq
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	planner := service.NewTimingPlanner(rng)
	guard := service.NewDuplicateGuard(store, log)

	// The real WhatsApp Web channel is attached by the automation layer;
	// this binary wires the mock so the API can run standalone.
	channel := service.NewMockChannel(0.1, rng)

	blastService := service.NewBlastService(ownerID, planner, guard, channel, reports, log)

	blastController := &controller.BlastController{
		Service: blastService,
		Log:     log,
	}
	duplicateHandler := &handler.DuplicateHandler{
		Store:   store,
		OwnerID: ownerID,
		Log:     log,
	}

	r := chi.NewRouter()

	// Blast control routes
	r.Post("/blast/start", blastController.Start)
	r.Get("/blast/status", blastController.Status)
	r.Post("/blast/pause", blastController.Pause)
	r.Post("/blast/resume", blastController.Resume)
	r.Post("/blast/stop", blastController.Stop)
	r.Post("/blast/resend-failed", blastController.ResendFailed)
	r.Get("/blast/results", blastController.Results)

	// Duplicate record routes
	r.Get("/duplicates", duplicateHandler.ListDuplicates)
	r.Delete("/duplicates/{phone}", duplicateHandler.DeleteDuplicate)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("server running")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}
