package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`
	Production `yaml:"production"`

	AdminLogin  string   `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass   string   `yaml:"admin_pass" env:"ADMIN_PASS"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	User      string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	Password  string `yaml:"db_password" env:"DB_PASSWORD"`
	Host      string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	Port      int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	Name      string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	ParseTime bool   `yaml:"parse_time" env-default:"true"`
}

// Production — значения по умолчанию для production_settings,
// пока администратор не сохранил свои.
type Production struct {
	StrictPunching          bool    `yaml:"strict_punching" env:"STRICT_PUNCHING" env-default:"false"`
	OverrunTolerancePercent float64 `yaml:"overrun_tolerance_percent" env-default:"3"`
	AllowLastRollOverrun    bool    `yaml:"allow_last_roll_overrun" env-default:"true"`
	WasteTolerancePercent   float64 `yaml:"waste_tolerance_percent" env-default:"5"`
	QRPrefix                string  `yaml:"qr_prefix" env-default:"ROLL"`
}

// DSN собирает строку подключения для go-sql-driver/mysql.
func (d DB) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=%v",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.ParseTime,
	)
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
