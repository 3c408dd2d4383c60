package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Face encoder
	FaceProvider string `envconfig:"FACE_PROVIDER" default:"deepface"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`

	// Enrollment and matching
	FacesDir       string  `envconfig:"FACES_DIR" default:"known_faces"`
	MatchTolerance float64 `envconfig:"MATCH_TOLERANCE" default:"0.60"`

	// Attendance days and times are computed in this fixed offset, never the
	// server's local zone. Default is IST.
	TimeOffset string `envconfig:"TIME_OFFSET" default:"+05:30"`

	// Static pages (admin/scan UI); empty disables
	StaticDir string `envconfig:"STATIC_DIR" default:""`
}

func Load() (*Config, error) {
	// Best-effort: a missing .env is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location builds the fixed time zone from the configured offset ("+05:30").
func (c *Config) Location() (*time.Location, error) {
	offset, err := parseOffset(c.TimeOffset)
	if err != nil {
		return nil, fmt.Errorf("parse TIME_OFFSET: %w", err)
	}
	return time.FixedZone("UTC"+c.TimeOffset, offset), nil
}

func parseOffset(s string) (int, error) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("offset %q must look like +05:30", s)
	}

	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("offset hours in %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(s[4:6])
	if err != nil {
		return 0, fmt.Errorf("offset minutes in %q: %w", s, err)
	}
	if hours > 14 || minutes > 59 {
		return 0, fmt.Errorf("offset %q out of range", s)
	}

	seconds := hours*3600 + minutes*60
	if s[0] == '-' {
		seconds = -seconds
	}
	return seconds, nil
}
