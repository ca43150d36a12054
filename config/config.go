package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Publishing    PublishingConfig    `yaml:"publishing"`
	API           APIConfig           `yaml:"api"`
	Clients       ClientsConfig       `yaml:"clients"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// ElasticsearchConfig 는 검색 인덱스 접속 정보와 인덱스 네이밍을 정의한다.
type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	// Namespace 는 인덱스/별칭 이름의 접두사다. (예: prod -> prod_posts)
	Namespace string `yaml:"namespace"`
	// MaxRetries 는 부분 업데이트 bulk 호출의 재시도 예산이다.
	MaxRetries int `yaml:"max_retries"`
}

// PublishingConfig 는 발행/예약 규칙을 정의한다.
type PublishingConfig struct {
	// MinScheduleLead 는 예약 발행 시각이 현재로부터 최소 얼마나 뒤여야 하는지를 나타낸다.
	MinScheduleLead time.Duration `yaml:"min_schedule_lead"`
}

type APIConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ClientsConfig struct {
	MediaBaseURL string        `yaml:"media_base_url"`
	GroupBaseURL string        `yaml:"group_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	applyEnv(&c)
	config = &c
}

// Parse 는 yaml 을 읽고 비어 있는 값에 기본값을 채운다.
func Parse(data []byte) (AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&c)
	return c, nil
}

func applyDefaults(c *AppConfig) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "social_content"
	}
	if c.Elasticsearch.Namespace == "" {
		c.Elasticsearch.Namespace = "dev"
	}
	if c.Elasticsearch.MaxRetries <= 0 {
		c.Elasticsearch.MaxRetries = 5
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.Clients.Timeout <= 0 {
		c.Clients.Timeout = 5 * time.Second
	}
}

// applyEnv 는 비밀값과 엔드포인트를 환경변수로 덮어쓴다.
func applyEnv(c *AppConfig) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("ELASTICSEARCH_ADDRESSES"); v != "" {
		c.Elasticsearch.Addresses = strings.Split(v, ",")
	}
	if v := os.Getenv("ELASTICSEARCH_USERNAME"); v != "" {
		c.Elasticsearch.Username = v
	}
	if v := os.Getenv("ELASTICSEARCH_PASSWORD"); v != "" {
		c.Elasticsearch.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
