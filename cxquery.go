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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cxquery/cnf"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	redisConnectionTestTimeout = 120 * time.Second
	shutdownTimeout            = 10 * time.Second
)

var (
	version   string
	buildDate string
	gitCommit string
)

type service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

func getEnv(name string) string {
	for _, p := range os.Environ() {
		items := strings.SplitN(p, "=", 2)
		if len(items) == 2 && items[0] == name {
			return items[1]
		}
	}
	return ""
}

func additionalLogEvents() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logging.AddLogEvent(ctx, "userAgent", ctx.Request.UserAgent())
		logging.AddLogEvent(ctx, "projectId", ctx.Param("projectId"))
		ctx.Next()
	}
}

// CORSMiddleware returns nil in case no origins are configured
func CORSMiddleware(conf *cnf.Conf) gin.HandlerFunc {
	if len(conf.CorsAllowedOrigins) == 0 {
		return nil
	}
	return cors.New(cors.Config{
		AllowOrigins:     conf.CorsAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func AuthRequired(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if len(conf.AuthHeaderName) > 0 && !collections.SliceContains(conf.AuthTokens, ctx.GetHeader(conf.AuthHeaderName)) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Next()
	}
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "CXQUERY - a pattern occurrence and context query server\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\t%s [options] server [config.json]\n\t", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "%s [options] worker [config.json]\n\t", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "%s [options] ingest [config.json] [project] [corpus.json]\n\t", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "%s [options] export [config.json] [project]\n\t", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "%s [options] test [config.json]\n\t", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "%s [options] version\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	policy := flag.String("policy", "", "store creation policy for ingest (fail, ignore, replace), overrides config")
	maxSentences := flag.Int("max-sentences", 0, "maximum number of ingested sentences (0 = all)")
	taskID := flag.Int64("task", 0, "export only patterns of the task")
	outFile := flag.String("o", "", "export output file (stdout if omitted)")
	flag.Parse()
	action := flag.Arg(0)
	if action == "version" {
		fmt.Printf(
			"cxquery %s\nbuild date: %s\nlast commit: %s\n",
			cleanVersionInfo(version), cleanVersionInfo(buildDate), cleanVersionInfo(gitCommit))
		return
	}
	conf := cnf.LoadConfig(flag.Arg(1))

	switch action {
	case "worker":
		var wPath string
		if conf.LogFile != "" {
			wPath = filepath.Join(filepath.Dir(conf.LogFile), "worker.log")
		}
		logging.SetupLogging(logging.LoggingConf{Path: wPath, Level: conf.LogLevel})
		log.Logger = log.Logger.With().Str("worker", getWorkerID()).Logger()
	case "test":
		cnf.ValidateAndDefaults(conf)
		log.Info().Msg("config OK")
		return
	case "ingest", "export":
		logging.SetupLogging(logging.LoggingConf{Path: "", Level: conf.LogLevel})
	default:
		logging.SetupLogging(logging.LoggingConf{Path: conf.LogFile, Level: conf.LogLevel})
	}

	if *policy != "" {
		conf.CreatePolicy = *policy
	}
	cnf.ValidateAndDefaults(conf)

	switch action {
	case "server":
		log.Info().Msg("Starting CXQuery")
		runApiServer(conf)
	case "worker":
		log.Info().Msg("Starting CXQuery worker")
		runWorker(conf)
	case "ingest":
		if err := runIngest(conf, flag.Arg(2), flag.Arg(3), *maxSentences); err != nil {
			log.Fatal().Err(err).Msg("failed to ingest corpus")
		}
	case "export":
		if err := runExport(conf, flag.Arg(2), *taskID, *outFile); err != nil {
			log.Fatal().Err(err).Msg("failed to export patterns")
		}
	default:
		log.Fatal().Msgf("Unknown action %s", action)
	}
}
