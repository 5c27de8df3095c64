package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/pkg/kafka"
	"github.com/ai-library/ai-library/pkg/logger"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"GATEWAY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"GATEWAY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration
}

// Session controls the cookie that carries the backend bearer token
// between browser and gateway.
type Session struct {
	CookieName   string `envconfig:"SESSION_COOKIE_NAME" default:"library_session"`
	CookieSecure bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

type Config struct {
	Server  HTTPServer `yaml:"server"`
	Backend httpx.Config
	Session Session
	Kafka   kafka.Config
	Log     logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
