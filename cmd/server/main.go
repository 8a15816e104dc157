package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"hub-ops-service/internal/adapters/events"
	"hub-ops-service/internal/adapters/scanner"
	"hub-ops-service/internal/app"
	"hub-ops-service/internal/config"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or memory, Redis, RabbitMQ, MQTT) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()

	// Schema is created on startup for local runs; hubctl migrate does the same.
	if err := stores.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	refCache, closeCache, err := app.NewReferenceCache(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	hub := events.NewHub()
	publishers := events.Multi{hub}
	if cfg.RabbitMQURL != "" {
		conn, err := config.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer func() { _ = conn.Close() }()

		pub, err := events.NewRabbitPublisher(conn)
		if err != nil {
			log.Fatal(err)
		}
		publishers = append(publishers, pub)
		log.Printf("Event bus enabled exchange=%s", events.ExchangeName)
	}

	mod, err := app.Build(cfg, stores, refCache, publishers)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.MQTTBroker != "" {
		sub := scanner.NewDriverScanSubscriber(mod.Tracker)
		client, err := config.NewMQTT(cfg, func(c mqtt.Client) {
			if err := sub.Start(c); err != nil {
				log.Printf("op=scanner.subscribe err=%v", err)
				return
			}
			log.Printf("Scanner feed subscribed topic=%s", scanner.TopicPattern)
		})
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			sub.Stop(client)
			client.Disconnect(250)
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mod.Router(hub),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown err=%v", err)
		}
	}()

	log.Printf("Server listening addr=:%s store=%s", cfg.Port, cfg.Store)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
