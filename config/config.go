package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"clipforge-ai/internal/appdirs"
)

type App struct {
	Proxy       string   `toml:"proxy"`
	ParsedProxy *url.URL `toml:"-"`
	// SegmentDuration is the max seconds accumulated into one transcript
	// segment before it is force-closed.
	SegmentDuration int `toml:"segment_duration"`
	MaxSegmentWords int `toml:"max_segment_words"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Transcribe struct {
	Provider string `toml:"provider"`
	BaseUrl  string `toml:"base_url"`
	// ApiKeys is an ordered credential list; order defines rotation
	// preference (first available wins).
	ApiKeys            []string `toml:"api_keys"`
	KeyCooldownMinutes int      `toml:"key_cooldown_minutes"`
	MaxAttempts        int      `toml:"max_attempts"`
	ChunkConcurrency   int      `toml:"chunk_concurrency"`
}

type Llm struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type Clipper struct {
	MinClipDuration int     `toml:"min_clip_duration"`
	MaxClipDuration int     `toml:"max_clip_duration"`
	MinScore        int     `toml:"min_score"`
	SnapTolerance   float64 `toml:"snap_tolerance"`
	Prompt          string  `toml:"prompt"`
}

type Queue struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	App        App        `toml:"app"`
	Server     Server     `toml:"server"`
	Transcribe Transcribe `toml:"transcribe"`
	Llm        Llm        `toml:"llm"`
	Clipper    Clipper    `toml:"clipper"`
	Queue      Queue      `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

func defaultConfig() Config {
	return Config{
		App: App{
			SegmentDuration: 5,
			MaxSegmentWords: 15,
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Transcribe: Transcribe{
			Provider:           "openai",
			KeyCooldownMinutes: 60,
			MaxAttempts:        5,
			ChunkConcurrency:   4,
		},
		Clipper: Clipper{
			MinClipDuration: 30,
			MaxClipDuration: 90,
			MinScore:        65,
			SnapTolerance:   3,
		},
		Queue: Queue{
			RedisAddr:   "localhost:6379",
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig loads the TOML config, writing a default file first when
// none exists. It reports whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, fmt.Errorf("failed to write default config: %w", err)
		}
		return true, nil
	} else if err != nil {
		return false, err
	}

	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("failed to decode config file %s: %w", configPath, err)
	}
	return false, nil
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates loaded values and fills derived fields.
func CheckConfig() error {
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy address %q: %w", Conf.App.Proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}

	if Conf.App.SegmentDuration <= 0 {
		Conf.App.SegmentDuration = 5
	}
	if Conf.App.MaxSegmentWords <= 0 {
		Conf.App.MaxSegmentWords = 15
	}
	if Conf.Transcribe.KeyCooldownMinutes <= 0 {
		Conf.Transcribe.KeyCooldownMinutes = 60
	}
	if Conf.Transcribe.MaxAttempts <= 0 {
		Conf.Transcribe.MaxAttempts = 5
	}
	if Conf.Transcribe.ChunkConcurrency <= 0 {
		Conf.Transcribe.ChunkConcurrency = 4
	}
	if Conf.Clipper.MinClipDuration <= 0 {
		Conf.Clipper.MinClipDuration = 30
	}
	if Conf.Clipper.MaxClipDuration <= Conf.Clipper.MinClipDuration {
		Conf.Clipper.MaxClipDuration = Conf.Clipper.MinClipDuration + 60
	}
	if Conf.Clipper.MinScore <= 0 {
		Conf.Clipper.MinScore = 65
	}
	if Conf.Clipper.SnapTolerance <= 0 {
		Conf.Clipper.SnapTolerance = 3
	}

	if len(Conf.Transcribe.ApiKeys) == 0 {
		return fmt.Errorf("transcribe.api_keys is empty: at least one speech recognition key is required")
	}
	if Conf.Llm.ApiKey == "" {
		return fmt.Errorf("llm.api_key is empty: a generation service key is required")
	}
	return nil
}
