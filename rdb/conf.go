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

package rdb

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	dfltHost                   = "localhost"
	dfltPort                   = 6379
	dfltQueryAnswerTimeoutSecs = 60
)

// Conf configures the Redis connection used to pass queries
// from the API server to workers
type Conf struct {
	Host                   string `json:"host"`
	Port                   int    `json:"port"`
	DB                     int    `json:"db"`
	Password               string `json:"password"`
	ChannelQuery           string `json:"channelQuery"`
	ChannelResultPrefix    string `json:"channelResultPrefix"`
	QueryAnswerTimeoutSecs int    `json:"queryAnswerTimeoutSecs"`

	// CachePath is a directory for cached results. Empty
	// value disables caching.
	CachePath string `json:"cachePath"`
}

func (conf *Conf) ServerInfo() string {
	return fmt.Sprintf("%s:%d", conf.Host, conf.Port)
}

func (conf *Conf) ValidateAndDefaults(confContext string) error {
	if conf == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if conf.Host == "" {
		conf.Host = dfltHost
		log.Warn().Str("host", dfltHost).Msgf("%s.host not specified, using default", confContext)
	}
	if conf.Port == 0 {
		conf.Port = dfltPort
		log.Warn().Int("port", dfltPort).Msgf("%s.port not specified, using default", confContext)
	}
	if conf.ChannelQuery == "" {
		conf.ChannelQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", DefaultQueryChannel).
			Msgf("%s.channelQuery not specified, using default", confContext)
	}
	if conf.ChannelResultPrefix == "" {
		conf.ChannelResultPrefix = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", DefaultResultChannelPrefix).
			Msgf("%s.channelResultPrefix not specified, using default", confContext)
	}
	if conf.QueryAnswerTimeoutSecs == 0 {
		conf.QueryAnswerTimeoutSecs = dfltQueryAnswerTimeoutSecs
		log.Warn().
			Int("value", dfltQueryAnswerTimeoutSecs).
			Msgf("%s.queryAnswerTimeoutSecs not specified, using default", confContext)
	}
	if conf.QueryAnswerTimeoutSecs < 0 {
		return fmt.Errorf("%s.queryAnswerTimeoutSecs must be a positive number", confContext)
	}
	return nil
}
