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
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cxquery/cnf"
	"cxquery/docs"
	"cxquery/handlers"
	"cxquery/monitoring"
	"cxquery/project"
	"cxquery/rdb"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type serverInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

type apiServer struct {
	server    *http.Server
	conf      *cnf.Conf
	radapter  *rdb.Adapter
	registry  *project.Registry
	cache     *rdb.ResultCache
	jobLogger *monitoring.WorkerJobLogger
}

func mkServerInfo() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			serverInfoResponse{
				Name:      "CXQuery",
				Version:   cleanVersionInfo(version),
				BuildDate: cleanVersionInfo(buildDate),
				GitCommit: cleanVersionInfo(gitCommit),
			},
		)
	}
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(additionalLogEvents())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	if m := CORSMiddleware(api.conf); m != nil {
		engine.Use(m)
	}
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	actions := handlers.NewActions(
		api.radapter,
		api.cache,
		api.registry,
		handlers.Limits{
			DefaultContextLimit: api.conf.DefaultContextLimit,
			MaxContextLimit:     api.conf.MaxContextLimit,
		},
	)
	protected := engine.Group("/").Use(AuthRequired(api.conf))

	engine.GET("/", mkServerInfo())

	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET(
		"/openapi",
		func(ctx *gin.Context) {
			uniresp.WriteRawJSONResponse(ctx.Writer, []byte(docs.SwaggerInfo.ReadDoc()))
		},
	)

	engine.GET(
		"/projects", actions.Projects)

	engine.GET(
		"/projects/:projectId/tasks", actions.ListTasks)

	protected.POST(
		"/projects/:projectId/tasks", actions.NewTask)

	engine.GET(
		"/projects/:projectId/patterns", actions.ListPatterns)

	engine.GET(
		"/projects/:projectId/patterns.csv", actions.PatternsCSV)

	engine.GET(
		"/projects/:projectId/occurrences", actions.Occurrences)

	monActions := monitoring.NewActions(api.jobLogger)

	engine.GET(
		"/monitoring/workers-load", monActions.WorkersLoad)

	engine.GET(
		"/monitoring/workers-load/:workerId", monActions.WorkerLoad)

	engine.GET(
		"/monitoring/recent-jobs", monActions.RecentJobs)

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down CXQuery HTTP API server")
	return api.server.Shutdown(ctx)
}

// runServices starts all the services and waits for the context
// to be cancelled. Then the services are stopped in parallel.
func runServices(ctx context.Context, services []service) {
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var eg errgroup.Group
	for _, s := range services {
		srv := s
		eg.Go(func() error {
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("Shutdown finished with errors")

	} else {
		log.Info().Msg("Graceful shutdown completed")
	}
}

func runApiServer(conf *cnf.Conf) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis, ctx)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
		return
	}
	registry, err := project.NewRegistry(conf.ProjectsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize projects")
		return
	}
	var cache *rdb.ResultCache
	if conf.Redis.CachePath != "" {
		cache, err = rdb.NewResultCache(conf.Redis.CachePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize result cache")
			return
		}
		log.Info().Str("path", conf.Redis.CachePath).Msg("using result cache")
	}
	jobLogger := monitoring.NewWorkerJobLogger(radapter.SubscribeJobLogs())
	server := &apiServer{
		conf:      conf,
		radapter:  radapter,
		registry:  registry,
		cache:     cache,
		jobLogger: jobLogger,
	}
	runServices(ctx, []service{jobLogger, server})
	if err := radapter.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Redis connection")
	}
}
