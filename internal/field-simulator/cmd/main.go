package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/LeonardoBeccarini/field_simulator/internal/config"
	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	field_simulator "github.com/LeonardoBeccarini/field_simulator/internal/field-simulator"
	"github.com/LeonardoBeccarini/field_simulator/internal/logging"
	"github.com/LeonardoBeccarini/field_simulator/internal/services/fleet"
	"github.com/LeonardoBeccarini/field_simulator/pkg/broker"
	"github.com/LeonardoBeccarini/field_simulator/pkg/rabbitmq"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging, version)

	if err := run(cfg, logger.Logger); err != nil {
		logger.Error("field simulator stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Broker.Embedded {
		b, err := broker.New(logger, cfg.Broker.Address)
		if err != nil {
			return err
		}
		if err := b.Start(); err != nil {
			return err
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Warn("broker close", slog.Any("error", err))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := field_simulator.NewMetrics(reg)
	if err != nil {
		return err
	}

	dialer := field_simulator.MQTTDialer(rabbitmq.NewDialer(rabbitmq.RabbitMQConfig{
		Host:            cfg.MQTT.Host,
		Port:            cfg.MQTT.Port,
		User:            cfg.MQTT.User,
		Password:        cfg.MQTT.Password,
		ClientID:        cfg.MQTT.ClientPrefix,
		QoS:             byte(cfg.MQTT.QoS),
		ConnectTimeout:  cfg.MQTT.ConnectTimeout,
		PublishTimeout:  cfg.MQTT.PublishTimeout,
		ConnectRetries:  cfg.MQTT.ConnectRetries,
		BreakerFailures: cfg.MQTT.Breaker.Failures,
		BreakerOpenFor:  cfg.MQTT.Breaker.OpenFor,
	}, logger))

	sim := field_simulator.NewSimulator(
		device.NewSensorFactory(dialer, logger, device.WithRecorder(metrics)),
		device.NewActuatorFactory(dialer, logger, device.WithRecorder(metrics)),
		logger,
	)
	// zones go before the broker
	defer sim.Shutdown()

	health := fleet.NewHealthServer(logger)
	grpcLis, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		if err := health.Serve(grpcLis); err != nil {
			logger.Error("grpc health serve", slog.Any("error", err))
		}
	}()
	defer health.Stop()

	httpSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:           fleet.NewRouter(fleet.NewHandler(sim, logger), reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("fleet API listening", slog.String("address", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", slog.Any("error", err))
			stop()
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			logger.Warn("http shutdown", slog.Any("error", err))
		}
	}()

	roster, err := field_simulator.LoadRoster(cfg.Roster.Path)
	if err != nil {
		return err
	}
	sensors, actuators := roster.DeviceCount()
	logger.Info("building fleet",
		slog.Int("zones", len(roster.Zones)),
		slog.Int("sensors", sensors),
		slog.Int("actuators", actuators),
		slog.String("broker", cfg.MQTT.BrokerURL()))

	if err := sim.Build(ctx, roster); err != nil {
		return fmt.Errorf("build fleet: %w", err)
	}
	health.SetServing(true)
	st := sim.Stats()
	logger.Info("fleet running", slog.Int("active", st.Active), slog.Int("devices", st.Sensors+st.Actuators))

	<-ctx.Done()
	logger.Info("shutting down")
	health.SetServing(false)
	return nil
}
