package config

import (
	"log"

	"github.com/spf13/viper"
)

// Configs holds every environment-driven setting of the service. Values
// are bound to env vars and unmarshalled once at startup.
type Configs struct {
	AppName            string  `mapstructure:"app_name"`
	AppEnv             string  `mapstructure:"app_env"`
	AppLogLevel        string  `mapstructure:"app_log_level"`
	AppPort            int     `mapstructure:"app_port"`
	MetricSamplingRate float64 `mapstructure:"app_metric_sampling_rate"`

	ModelPath           string `mapstructure:"model_path"`
	LabelsPath          string `mapstructure:"labels_path"`
	ReferenceImagesPath string `mapstructure:"reference_images_path"`

	OnnxLibPath        string `mapstructure:"onnx_lib_path"`
	OnnxInputName      string `mapstructure:"onnx_input_name"`
	OnnxOutputName     string `mapstructure:"onnx_output_name"`
	OnnxIntraOpThreads int    `mapstructure:"onnx_intra_op_threads"`
	OnnxUseCuda        bool   `mapstructure:"onnx_use_cuda"`

	CacheMaxSize    int `mapstructure:"cache_max_size"`
	CacheTtlSeconds int `mapstructure:"cache_ttl_seconds"`

	FetchTimeoutInMs         int    `mapstructure:"fetch_timeout_in_ms"`
	FetchDialTimeoutInMs     int    `mapstructure:"fetch_dial_timeout_in_ms"`
	HttpUserAgent            string `mapstructure:"http_user_agent"`
	HttpMaxIdleConns         int    `mapstructure:"http_max_idle_conns"`
	HttpMaxIdleConnsPerHost  int    `mapstructure:"http_max_idle_conns_per_host"`
	HttpIdleConnTimeoutInMs  int    `mapstructure:"http_idle_conn_timeout_in_ms"`
	HttpKeepAliveTimeoutInMs int    `mapstructure:"http_keep_alive_timeout_in_ms"`
}

// Init binds env vars, applies defaults and unmarshals the resulting
// configuration. Called once from main before anything else starts.
func Init() *Configs {
	bindEnvVars()
	setDefaults()
	cfg := &Configs{}
	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("Failed to unmarshal config from environment: %v", err)
	}
	return cfg
}

func bindEnvVars() {
	viper.BindEnv("app_name", "APP_NAME")
	viper.BindEnv("app_env", "APP_ENV")
	viper.BindEnv("app_log_level", "APP_LOG_LEVEL")
	viper.BindEnv("app_port", "APP_PORT")
	viper.BindEnv("app_metric_sampling_rate", "APP_METRIC_SAMPLING_RATE")
	viper.BindEnv("metric_agent_addr", "METRIC_AGENT_ADDR")
	viper.BindEnv("model_path", "MODEL_PATH")
	viper.BindEnv("labels_path", "LABELS_PATH")
	viper.BindEnv("reference_images_path", "REFERENCE_IMAGES_PATH")
	viper.BindEnv("onnx_lib_path", "ONNX_LIB_PATH")
	viper.BindEnv("onnx_input_name", "ONNX_INPUT_NAME")
	viper.BindEnv("onnx_output_name", "ONNX_OUTPUT_NAME")
	viper.BindEnv("onnx_intra_op_threads", "ONNX_INTRA_OP_THREADS")
	viper.BindEnv("onnx_use_cuda", "ONNX_USE_CUDA")
	viper.BindEnv("cache_max_size", "CACHE_MAX_SIZE")
	viper.BindEnv("cache_ttl_seconds", "CACHE_TTL_SECONDS")
	viper.BindEnv("fetch_timeout_in_ms", "FETCH_TIMEOUT_IN_MS")
	viper.BindEnv("fetch_dial_timeout_in_ms", "FETCH_DIAL_TIMEOUT_IN_MS")
	viper.BindEnv("http_user_agent", "HTTP_USER_AGENT")
	viper.BindEnv("http_max_idle_conns", "HTTP_MAX_IDLE_CONNS")
	viper.BindEnv("http_max_idle_conns_per_host", "HTTP_MAX_IDLE_CONNS_PER_HOST")
	viper.BindEnv("http_idle_conn_timeout_in_ms", "HTTP_IDLE_CONN_TIMEOUT_IN_MS")
	viper.BindEnv("http_keep_alive_timeout_in_ms", "HTTP_KEEP_ALIVE_TIMEOUT_IN_MS")
}

func setDefaults() {
	viper.SetDefault("app_name", "happy-meowth")
	viper.SetDefault("app_env", "dev")
	viper.SetDefault("app_log_level", "INFO")
	viper.SetDefault("app_port", 8080)
	viper.SetDefault("model_path", "model/pokemon_cnn_v2.onnx")
	viper.SetDefault("labels_path", "model/labels_v2.json")
	viper.SetDefault("reference_images_path", "data/commands/pokemon/images")
	viper.SetDefault("onnx_input_name", "input")
	viper.SetDefault("onnx_output_name", "output")
	viper.SetDefault("cache_max_size", 1000)
	viper.SetDefault("cache_ttl_seconds", 3600)
	viper.SetDefault("fetch_timeout_in_ms", 5000)
	viper.SetDefault("fetch_dial_timeout_in_ms", 2000)
	viper.SetDefault("http_user_agent", "Pokemon-Helper-Bot/1.0")
	viper.SetDefault("http_max_idle_conns", 100)
	viper.SetDefault("http_max_idle_conns_per_host", 10)
	viper.SetDefault("http_idle_conn_timeout_in_ms", 30000)
	viper.SetDefault("http_keep_alive_timeout_in_ms", 30000)
}
