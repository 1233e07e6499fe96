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
	"testing"

	"cxquery/rdb"
	"cxquery/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAndDefaults(t *testing.T) {
	conf, err := decodeConfig([]byte(`{
		"listenAddress": "127.0.0.1",
		"createPolicy": "ignore",
		"redis": {"host": "localhost", "port": 6379, "db": 2},
		"logLevel": "debug"
	}`), "conf.json")
	require.NoError(t, err)
	applyDefaults(conf)
	assert.NoError(t, validate(conf))

	assert.Equal(t, dfltListenPort, conf.ListenPort)
	assert.Equal(t, dfltServerWriteTimeoutSecs, conf.ServerWriteTimeoutSecs)
	assert.Equal(t, dfltProjectsDir, conf.ProjectsDir)
	assert.Equal(t, dfltTimeZone, conf.TimeZone)
	assert.Equal(t, dfltContextLimit, conf.DefaultContextLimit)
	assert.Equal(t, dfltMaxContextLimit, conf.MaxContextLimit)
	assert.Equal(t, store.CreateIgnore, conf.StoreCreatePolicy())
	assert.Equal(t, rdb.DefaultQueryChannel, conf.Redis.ChannelQuery)
	assert.True(t, conf.IsDebugMode())
	assert.NotNil(t, conf.TimezoneLocation())
}

func TestMissingRedisGetsDefaults(t *testing.T) {
	conf := &Conf{}
	applyDefaults(conf)
	require.NoError(t, validate(conf))
	assert.Equal(t, "localhost", conf.Redis.Host)
	assert.Equal(t, 6379, conf.Redis.Port)
	assert.Equal(t, store.CreateFail, conf.StoreCreatePolicy())
}

func TestInvalidCreatePolicy(t *testing.T) {
	conf := &Conf{CreatePolicy: "overwrite"}
	applyDefaults(conf)
	assert.Error(t, validate(conf))
}

func TestInvalidLimits(t *testing.T) {
	conf := &Conf{DefaultContextLimit: 500, MaxContextLimit: 100}
	applyDefaults(conf)
	assert.Error(t, validate(conf))
}

func TestDefaultLimitRespectsMax(t *testing.T) {
	conf := &Conf{MaxContextLimit: 20}
	applyDefaults(conf)
	assert.Equal(t, 20, conf.DefaultContextLimit)
	assert.NoError(t, validate(conf))
}

func TestInvalidTimeZone(t *testing.T) {
	conf := &Conf{TimeZone: "Mars/Olympus"}
	applyDefaults(conf)
	assert.Error(t, validate(conf))
}

func TestInvalidJSON(t *testing.T) {
	_, err := decodeConfig([]byte(`{"listenPort": "foo"}`), "conf.json")
	assert.Error(t, err)
}
