package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by STAGECRAFT_ENV (or .env by
// default), then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("STAGECRAFT_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

// TickInterval returns how long one simulation tick lasts in wall time.
func TickInterval() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("TICK_INTERVAL_MS"))
	if err != nil || ms <= 0 {
		return 5 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// DataDir is where the fact ledger is persisted. Empty means in-memory
// only.
func DataDir() string {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		return "world_data"
	}
	return dir
}

// DecisionProvider returns the configured character decision provider.
// Valid values: scripted, mock
func DecisionProvider() string {
	p := os.Getenv("DECISION_PROVIDER")
	if p == "" {
		return "scripted"
	}
	return p
}

// TargetArcLength is the pacing arc length in ticks.
func TargetArcLength() int64 {
	n, err := strconv.ParseInt(os.Getenv("TARGET_ARC_LENGTH"), 10, 64)
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

// StalenessThreshold is how many ticks an artifact may age before the
// refresh sweep considers correcting it.
func StalenessThreshold() int64 {
	n, err := strconv.ParseInt(os.Getenv("STALENESS_THRESHOLD"), 10, 64)
	if err != nil || n <= 0 {
		return 20
	}
	return n
}

func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 200
	}
	return burst
}
