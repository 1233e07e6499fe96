// Copyright 2024 The CXQUERY Authors
//   This file is part of CXQUERY.
//
//  CXQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CXQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CXQUERY.  If not, see <https://www.gnu.org/licenses/>.

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cxquery/rdb"
	"cxquery/store"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltListenPort             = 8080
	dfltTimeZone               = "Europe/Prague"
	dfltProjectsDir            = "projects"
	dfltContextLimit           = 100
	dfltMaxContextLimit        = 10000
)

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string           `json:"listenAddress"`
	ListenPort             int              `json:"listenPort"`
	ServerReadTimeoutSecs  int              `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int              `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string         `json:"corsAllowedOrigins"`
	ProjectsDir            string           `json:"projectsDir"`
	CreatePolicy           string           `json:"createPolicy"`
	DisableSubstitutions   bool             `json:"disableSubstitutions"`
	Redis                  *rdb.Conf        `json:"redis"`
	LogFile                string           `json:"logFile"`
	LogLevel               logging.LogLevel `json:"logLevel"`
	TimeZone               string           `json:"timeZone"`
	AuthHeaderName         string           `json:"authHeaderName"`
	AuthTokens             []string         `json:"authTokens"`

	// DefaultContextLimit is the number of occurrences returned
	// in case a client does not specify its own limit
	DefaultContextLimit int `json:"defaultContextLimit"`

	// MaxContextLimit is the largest limit a client can request
	MaxContextLimit int `json:"maxContextLimit"`

	srcPath string
}

func (conf *Conf) IsDebugMode() bool {
	return conf.LogLevel == "debug"
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as we always call ValidateAndDefaults
	// first (which also tries to load the location and report possible
	// error)
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

// StoreCreatePolicy returns the parsed policy. Because the value
// is validated on startup, the parsing cannot fail here.
func (conf *Conf) StoreCreatePolicy() store.CreatePolicy {
	p, _ := store.ParseCreatePolicy(conf.CreatePolicy)
	return p
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

func decodeConfig(rawData []byte, srcPath string) (*Conf, error) {
	var conf Conf
	conf.srcPath = srcPath
	if err := json.Unmarshal(rawData, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	conf, err := decodeConfig(rawData, path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return conf
}

func applyDefaults(conf *Conf) {
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Int("port", dfltListenPort).Msg("listenPort not specified, using default")
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.ProjectsDir == "" {
		conf.ProjectsDir = dfltProjectsDir
		log.Warn().Str("path", dfltProjectsDir).Msg("projectsDir not specified, using default")
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if conf.MaxContextLimit == 0 {
		conf.MaxContextLimit = dfltMaxContextLimit
		log.Warn().Int("value", dfltMaxContextLimit).Msg("maxContextLimit not specified, using default")
	}
	if conf.DefaultContextLimit == 0 {
		conf.DefaultContextLimit = min(dfltContextLimit, conf.MaxContextLimit)
		log.Warn().
			Int("value", conf.DefaultContextLimit).
			Msg("defaultContextLimit not specified, using default")
	}
	if conf.Redis == nil {
		conf.Redis = &rdb.Conf{}
		log.Warn().Msg("redis not configured, using defaults")
	}
}

func validate(conf *Conf) error {
	if _, err := store.ParseCreatePolicy(conf.CreatePolicy); err != nil {
		return fmt.Errorf("invalid createPolicy: %w", err)
	}
	if conf.DefaultContextLimit < 0 || conf.MaxContextLimit < 0 {
		return fmt.Errorf("context limits must be positive numbers")
	}
	if conf.DefaultContextLimit > conf.MaxContextLimit {
		return fmt.Errorf(
			"defaultContextLimit (%d) cannot be greater than maxContextLimit (%d)",
			conf.DefaultContextLimit, conf.MaxContextLimit,
		)
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	if err := conf.Redis.ValidateAndDefaults("redis"); err != nil {
		return err
	}
	return nil
}

func ValidateAndDefaults(conf *Conf) {
	applyDefaults(conf)
	if err := validate(conf); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}
