package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/gateway/config"
	"github.com/ai-library/ai-library/gateway/internal/handler"
	"github.com/ai-library/ai-library/gateway/internal/server"
	"github.com/ai-library/ai-library/pkg/kafka"
	"github.com/ai-library/ai-library/pkg/logger"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "gateway")

	// the broker is optional; without it heartbeat parking degrades to
	// a no-op
	var producer sarama.SyncProducer
	if len(cfg.Kafka.Addrs) > 0 {
		p, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Warn("kafka producer", zap.Error(err))
		} else {
			producer = p
		}
	}

	h, err := handler.New(log, cfg, producer)
	if err != nil {
		log.Fatal("handler init", zap.Error(err))
	}

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		_ = producer.Close()
	}
	log.Info("Graceful shutdown finished")
}
