package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aranet-tools/aranet-cloud-go/pkg/aranet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile  string
	cacheFile   string
	metricsAddr string
	interval    time.Duration
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var scrapesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "aranet_cloud_scrapes_total",
	Help: "Scrapes against the Aranet cloud, by result.",
}, []string{"result"})

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Parse command line flags
	pflag.StringVarP(&configFile, "config", "c", "aranet_cloud.yaml", "Path to the Aranet cloud credentials file")
	pflag.StringVar(&cacheFile, "cache", "", "Path to the login cache file (empty disables caching)")
	pflag.StringVar(&metricsAddr, "metrics-addr", ":9117", "Listen address for the Prometheus /metrics endpoint")
	pflag.DurationVarP(&interval, "interval", "i", time.Minute, "Scrape interval")
	if v := os.Getenv("ARANET_CONFIG"); v != "" {
		pflag.Lookup("config").Value.Set(v)
	}
	if v := os.Getenv("ARANET_LOGIN_CACHE"); v != "" {
		pflag.Lookup("cache").Value.Set(v)
	}
	pflag.Parse()

	// Setup Otel
	shutdown, err := setupOTelSDK(ctx)
	defer shutdown(ctx)
	if err != nil {
		panic(err)
	}

	// Initialize logger
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(os.Stdout), zapcore.DebugLevel),
		otelzap.NewCore("github.com/aranet-tools/aranet-cloud-go", otelzap.WithLoggerProvider(global.GetLoggerProvider())),
	)
	logger := zap.New(core)
	defer logger.Sync()
	logger.Info("starting up", zap.String("version", version), zap.String("commit", commit), zap.String("buildDate", date))

	cfg, err := aranet.LoadConfig(configFile)
	if err != nil {
		logger.Fatal("cannot load configuration", zap.Error(err))
	}

	// create the client
	client, err := aranet.NewClient(cfg,
		aranet.WithLogger(logger),
		aranet.WithCacheFile(cacheFile),
	)
	if err != nil {
		log.Fatal("cannot create client", zap.Error(err))
	}

	// Initialize metrics
	meter := otel.Meter(
		"github.com/aranet-tools/aranet-cloud-go",
		metric.WithInstrumentationAttributes(semconv.OTelScopeName("github.com/aranet-tools/aranet-cloud-go")),
	)
	temperature, _ := meter.Float64Gauge("sensor.temperature",
		metric.WithUnit("C"),
		metric.WithDescription("Temperature in degrees Celsius"),
	)
	humidity, _ := meter.Float64Gauge("sensor.humidity",
		metric.WithUnit("%"),
		metric.WithDescription("Relative humidity as a percentage"),
	)
	co2, _ := meter.Float64Gauge("sensor.co2",
		metric.WithUnit("ppm"),
		metric.WithDescription("CO2 concentration in parts per million"),
	)
	pressure, _ := meter.Float64Gauge("sensor.pressure",
		metric.WithUnit("hPa"),
		metric.WithDescription("Atmospheric pressure in hectopascal"),
	)
	rssi, _ := meter.Float64Gauge("sensor.rssi",
		metric.WithUnit("dBm"),
		metric.WithDescription("Signal strength between sensor and base station"),
	)
	battery, _ := meter.Float64Gauge("sensor.battery",
		metric.WithUnit("%"),
		metric.WithDescription("Sensor battery level as a percentage"),
	)
	lastReading, _ := meter.Float64Histogram(
		"sensor.lastReading.duration",
		metric.WithDescription("The duration since the last sensor reading."),
		metric.WithUnit("s"),
	)
	gauges := map[string]metric.Float64Gauge{
		"1":  temperature,
		"2":  humidity,
		"3":  co2,
		"4":  pressure,
		"61": rssi,
		"62": battery,
	}

	prometheus.MustRegister(scrapesTotal)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("metrics endpoint failed", zap.Error(err))
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	readSensors := func() {
		logger.Info("fetching data from Aranet cloud")
		resp, err := client.GetSensorsInfo(ctx, nil)
		if err != nil {
			logger.Error("Failed to fetch data", zap.Error(err))
			scrapesTotal.WithLabelValues("error").Inc()
			return
		}
		items, err := aranet.ProjectItems(resp)
		if err != nil {
			logger.Error("Failed to project data", zap.Error(err))
			scrapesTotal.WithLabelValues("error").Inc()
			return
		}
		scrapesTotal.WithLabelValues("success").Inc()

		for _, item := range items {
			attrs := metric.WithAttributes(
				attribute.String("sensor.id", item.ID),
				attribute.String("sensor.name", item.Name),
			)
			for _, rec := range append(item.Metrics, item.Telemetry...) {
				gauge, ok := gauges[rec.ID]
				if !ok {
					logger.Debug("skipping reading with unknown metric id",
						zap.String("sensorId", item.ID), zap.String("metricId", rec.ID))
					continue
				}
				gauge.Record(ctx, rec.Value, attrs)
			}
			if len(item.Metrics) > 0 {
				lastReading.Record(ctx, time.Since(item.Metrics[0].Timestamp()).Seconds(), attrs)
			}
			logger.Info("Fetched data",
				zap.String("sensorId", item.ID),
				zap.String("name", item.Name),
				zap.Int("metrics", len(item.Metrics)),
				zap.Int("telemetry", len(item.Telemetry)),
			)
		}
	}

	readSensors()

	for {
		select {
		case <-ticker.C:
			readSensors()
		case <-ctx.Done():
			return
		}
	}
}
