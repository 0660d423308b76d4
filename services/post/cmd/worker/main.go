package main

import (
	"os"
	"os/signal"
	"syscall"

	"seniors/pkg/config"
	"seniors/pkg/logger"
	"seniors/pkg/queue"
	"seniors/pkg/s3"
	"seniors/services/post/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer queueClient.Close()

	if pending, err := queueClient.GetQueueLength(); err == nil {
		log.Info("Media cleanup worker starting, %d tasks pending", pending)
	}

	handler := worker.NewCleanupHandler(s3Client, log)
	if err := queueClient.ConsumeMediaCleanup(handler.Handle); err != nil {
		log.Error("Error starting media cleanup consumer: %v", err)
		panic(err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Media cleanup worker exited")
}
