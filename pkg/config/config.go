package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration for a vodforge process.
// It is built once at startup and passed by reference; nothing in the
// pipeline reads configuration ambiently.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Tracing  TracingConfig
	Upload   UploadConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"vodforge"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	ProcessingTopic  string        `env:"KAFKA_PROCESSING_TOPIC" envDefault:"vodforge.processing"`
	ConsumerGroup    string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"vodforge-workers"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	RetryBackoff     time.Duration `env:"KAFKA_RETRY_BACKOFF" envDefault:"500ms"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
}

type StorageConfig struct {
	Provider  string `env:"STORAGE_PROVIDER" envDefault:"minio"`
	Endpoint  string `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"STORAGE_BUCKET" envDefault:"vodforge-media"`
	AccessKey string `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL    bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	LocalRoot string `env:"STORAGE_LOCAL_ROOT" envDefault:"/var/lib/vodforge/media"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=vodforge"`
}

type UploadConfig struct {
	MaxSizeBytes      int64 `env:"UPLOAD_MAX_SIZE_BYTES" envDefault:"10737418240"`
	MultipartMemBytes int64 `env:"UPLOAD_MULTIPART_MEM_BYTES" envDefault:"52428800"`
}

// PipelineConfig holds everything the media processing pipeline needs:
// external tool locations, the default quality ladder, and per-asset
// feature switches.
type PipelineConfig struct {
	FFmpegPath  string `env:"PIPELINE_FFMPEG_PATH" envDefault:"ffmpeg"`
	FFprobePath string `env:"PIPELINE_FFPROBE_PATH" envDefault:"ffprobe"`

	// Ladder is a comma-separated list of height:video_kbps:audio_kbps rungs,
	// e.g. "360:800:96,720:2500:128". Empty disables transcoding.
	Ladder string `env:"PIPELINE_LADDER" envDefault:"360:800:96,720:2500:128,1080:5000:160"`

	SegmentDuration  int           `env:"PIPELINE_SEGMENT_DURATION" envDefault:"6"`
	PreviewAtSeconds float64       `env:"PIPELINE_PREVIEW_AT" envDefault:"3.0"`
	HLSSubdir        string        `env:"PIPELINE_HLS_SUBDIR" envDefault:"hls"`
	ExtractMetadata  bool          `env:"PIPELINE_EXTRACT_METADATA" envDefault:"true"`
	TranscodeEnabled bool          `env:"PIPELINE_TRANSCODE_ENABLED" envDefault:"true"`
	ToolTimeout      time.Duration `env:"PIPELINE_TOOL_TIMEOUT" envDefault:"0"`
	DispatchMode     string        `env:"PIPELINE_DISPATCH_MODE" envDefault:"inline"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
