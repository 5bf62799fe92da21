package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Database DatabaseConfig
		Email    EmailConfig
		Latency  LatencyConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine string // inmem | sqlite | postgres
		DSN    string
		Seed   bool
	}

	EmailConfig struct {
		Backend        string // console | sendgrid
		FromName       string
		FromAddress    string
		SendgridApiKey string
	}

	// LatencyConfig holds the artificial delays applied by the record store per access kind.
	LatencyConfig struct {
		Read   time.Duration // list queries
		Lookup time.Duration // single lookups & filtered queries
		Write  time.Duration // create & update
		Delete time.Duration
		Bulk   time.Duration
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "Shuleboard")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("serverDisableReqLogs", false)
	conf.SetDefault("dbEngine", "inmem")
	conf.SetDefault("dbDSN", "file::memory:?cache=shared")
	conf.SetDefault("dbSeed", true)
	conf.SetDefault("emailBackend", "console")
	conf.SetDefault("defaultFromName", "Shuleboard")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("latencyRead", 300*time.Millisecond)
	conf.SetDefault("latencyLookup", 200*time.Millisecond)
	conf.SetDefault("latencyWrite", 400*time.Millisecond)
	conf.SetDefault("latencyDelete", 300*time.Millisecond)
	conf.SetDefault("latencyBulk", 500*time.Millisecond)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		for _, key := range []string{"latencyRead", "latencyLookup", "latencyWrite", "latencyDelete", "latencyBulk"} {
			conf.SetDefault(key, time.Duration(0))
		}
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      workDir,
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			Address:         conf.GetString("serverAddress"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:  conf.GetBool("serverDisableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine: strings.ToLower(conf.GetString("dbEngine")),
			DSN:    conf.GetString("dbDSN"),
			Seed:   conf.GetBool("dbSeed"),
		},
		Email: EmailConfig{
			Backend:        strings.ToLower(conf.GetString("emailBackend")),
			FromName:       conf.GetString("defaultFromName"),
			FromAddress:    conf.GetString("defaultFromEmail"),
			SendgridApiKey: conf.GetString("sendgridApiKey"),
		},
		Latency: LatencyConfig{
			Read:   conf.GetDuration("latencyRead"),
			Lookup: conf.GetDuration("latencyLookup"),
			Write:  conf.GetDuration("latencyWrite"),
			Delete: conf.GetDuration("latencyDelete"),
			Bulk:   conf.GetDuration("latencyBulk"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no latency, no seeding, no request logs.
func NewTestConfig() *Config {
	return &Config{
		AppName:  "Shuleboard",
		Env:      "TEST",
		Build:    "test",
		TestMode: true,
		Server:   ServerConfig{Host: "localhost", ShutdownTimeout: time.Second, DisableReqLogs: true},
		Database: DatabaseConfig{Engine: "inmem"},
		Email:    EmailConfig{Backend: "console", FromName: "Shuleboard", FromAddress: "noreply@localhost"},
	}
}

// DefaultFromEmail is the sender of the emails sent by the app.
func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.Email.FromName, Address: c.Email.FromAddress}
}
