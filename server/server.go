// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/config"
	"github.com/gorse-io/neighbor/logics"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server serves recommendations over HTTP.
type Server struct {
	RestServer
	httpServer *http.Server
}

// NewServer creates a server for an engine.
func NewServer(engine *logics.Engine, cfg *config.Config) *Server {
	return &Server{
		RestServer: RestServer{
			Config:     cfg,
			Engine:     engine,
			WebService: new(restful.WebService),
		},
	}
}

// Serve starts the HTTP server and blocks until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port))
	if err != nil {
		return errors.Trace(err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{Handler: s.Handler()}
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s", listener.Addr())),
		zap.Int("n_users", s.Engine.Ratings().CountUsers()),
		zap.Int("n_items", s.Engine.Ratings().CountItems()))
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()
	select {
	case err := <-errCh:
		return errors.Trace(err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Logger().Info("stop http server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Trace(err)
		}
		return nil
	}
}
