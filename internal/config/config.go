package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the defaults.
const (
	EnvDataDir     = "IBEXALIGN_DATA_DIR"
	EnvDataset     = "IBEXALIGN_FILE"
	EnvGentleURL   = "IBEXALIGN_GENTLE_URL"
	EnvCacheURL    = "IBEXALIGN_CACHE_URL"
	EnvLanguage    = "IBEXALIGN_LANGUAGE"
	EnvSaveEveryN  = "IBEXALIGN_SAVE_EVERY_N"
	EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Dirs holds the per-participant directory trees, relative to DataDir
// unless absolute.
type Dirs struct {
	Transcriptions string
	MP3            string
	Zip            string
	Results        string
}

// Config holds the full application configuration.
type Config struct {
	Dirs

	DataDir          string
	Dataset          string
	TranscriptionCol string

	GentleURL       string
	CacheURL        string
	LanguageCode    string
	CredentialsFile string

	// StripPadding is added to each row's seconds-to-strip when trimming
	// recordings, to drop the click at the start of the recording.
	StripPadding float64

	SaveEveryN      int
	MaxConcurrent   int
	MaxRetries      int
	RateLimitPerMin int
}

// Default returns a Config with hardcoded defaults.
func Default() *Config {
	return &Config{
		Dirs: Dirs{
			Transcriptions: "transcriptions",
			MP3:            "mp3_files",
			Zip:            "zip_archives",
			Results:        "gentle_align",
		},
		DataDir:          ".",
		Dataset:          "results_tidy_transcribed.csv",
		TranscriptionCol: "Transcription",
		GentleURL:        "http://localhost:8765",
		LanguageCode:     "en-US",
		StripPadding:     0.5,
		SaveEveryN:       10,
		MaxConcurrent:    3,
		MaxRetries:       3,
		RateLimitPerMin:  60,
	}
}

// Load reads .env files (missing files are ignored) and applies
// environment overrides on top of the defaults.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("loaded env file", "path", f)
		}
	}

	cfg := Default()
	setString(&cfg.DataDir, EnvDataDir)
	setString(&cfg.Dataset, EnvDataset)
	setString(&cfg.GentleURL, EnvGentleURL)
	setString(&cfg.CacheURL, EnvCacheURL)
	setString(&cfg.LanguageCode, EnvLanguage)
	setString(&cfg.CredentialsFile, EnvCredentials)

	if v := strings.TrimSpace(os.Getenv(EnvSaveEveryN)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			slog.Warn("ignoring invalid env value", "key", EnvSaveEveryN, "value", v)
		} else {
			cfg.SaveEveryN = n
		}
	}
	return cfg
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Path resolves a directory relative to DataDir.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.DataDir, rel)
}
