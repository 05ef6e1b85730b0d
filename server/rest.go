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
	"fmt"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/config"
	"github.com/gorse-io/neighbor/dataset"
	"github.com/gorse-io/neighbor/logics"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const apiDocsPath = "/apidocs.json"

// RestServer implements a REST-ful API server.
type RestServer struct {
	Config     *config.Config
	Engine     *logics.Engine
	WebService *restful.WebService
}

// RecommendedItem is a recommended item with its display attributes.
type RecommendedItem struct {
	ItemId      int64
	Title       string `json:",omitempty"`
	Image       string `json:",omitempty"`
	Description string `json:",omitempty"`
}

type Health struct {
	Ready bool
	Users int
	Items int
}

// LogFilter tags every request with an X-Request-ID and logs it after processing.
func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	requestId := req.HeaderParameter("X-Request-ID")
	if requestId == "" {
		requestId = uuid.NewString()
	}
	resp.Header().Set("X-Request-ID", requestId)
	chain.ProcessFilter(req, resp)
	if req.Request.URL.Path != "/api/health" {
		log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("used_time", time.Since(start)))
	}
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)

	// Get recommendation
	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get recommendation for user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.QueryParameter("n", "number of neighbors and returned items").DataType("integer")).
		Param(ws.QueryParameter("metric", "similarity metric").DataType("string").
			AllowableValues(lo.SliceToMap(logics.MetricNames(), func(name string) (string, string) {
				return name, name
			}))).
		Returns(http.StatusOK, "OK", []RecommendedItem{}).
		Writes([]RecommendedItem{}))
	// Get neighbors
	ws.Route(ws.GET("/user/{user-id}/neighbors").To(s.getNeighbors).
		Doc("Get neighbors of a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"user"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.QueryParameter("n", "number of returned users").DataType("integer")).
		Param(ws.QueryParameter("metric", "similarity metric").DataType("string")).
		Returns(http.StatusOK, "OK", []logics.Score{}).
		Writes([]logics.Score{}))
	// Get an item
	ws.Route(ws.GET("/item/{item-id}").To(s.getItem).
		Doc("Get an item.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"item"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("item-id", "identifier of the item").DataType("integer")).
		Returns(http.StatusOK, "OK", dataset.Item{}).
		Writes(dataset.Item{}))
	// Health check
	ws.Route(ws.GET("/health").To(s.getHealth).
		Doc("Health check.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Returns(http.StatusOK, "OK", Health{}).
		Writes(Health{}))
}

// Handler creates a container serving the web service, API docs and metrics.
func (s *RestServer) Handler() *restful.Container {
	if s.WebService == nil {
		s.WebService = new(restful.WebService)
	}
	s.CreateWebService()
	container := restful.NewContainer()
	container.Add(s.WebService)
	specConfig := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     apiDocsPath,
	}
	container.Add(restfulspec.NewOpenAPIService(specConfig))
	container.Handle("/metrics", promhttp.Handler())
	return container
}

// ParseInt parses integers from the query parameter.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

func parseId(request *restful.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(request.PathParameter(name), 10, 64)
	if err != nil {
		return 0, errors.Annotatef(err, "invalid %s", name)
	}
	return id, nil
}

// parseArgs reads the user id, the number of neighbors and the metric of a request.
func (s *RestServer) parseArgs(request *restful.Request) (userId int64, n int, metric logics.Metric, err error) {
	if userId, err = parseId(request, "user-id"); err != nil {
		return
	}
	if n, err = ParseInt(request, "n", s.Config.Recommend.TopN); err != nil {
		err = errors.Annotate(err, "invalid n")
		return
	}
	name := request.QueryParameter("metric")
	if name == "" {
		name = s.Config.Recommend.Metric
	}
	metric, err = logics.ParseMetric(name)
	return
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	start := time.Now()
	userId, n, metric, err := s.parseArgs(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	itemIds, err := s.Engine.Recommend(request.Request.Context(), userId, n, metric)
	if err != nil {
		RecommendFailuresTotal.WithLabelValues(failureKind(err)).Inc()
		writeError(response, err)
		return
	}
	items := lo.Map(itemIds, func(itemId int64, _ int) RecommendedItem {
		item, ok := s.Engine.Catalog().Get(itemId)
		if !ok {
			log.ResponseLogger(response).Warn("recommended item not found in catalog", zap.Int64("item_id", itemId))
			return RecommendedItem{ItemId: itemId}
		}
		return RecommendedItem{
			ItemId:      item.ItemId,
			Title:       item.Title,
			Image:       item.Image,
			Description: item.Description,
		}
	})
	GetRecommendSeconds.WithLabelValues(metric.String()).Observe(time.Since(start).Seconds())
	Ok(response, items)
}

func (s *RestServer) getNeighbors(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	start := time.Now()
	userId, n, metric, err := s.parseArgs(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	scores, err := s.Engine.Neighbors(request.Request.Context(), userId, n, metric)
	if err != nil {
		writeError(response, err)
		return
	}
	GetNeighborsSeconds.WithLabelValues(metric.String()).Observe(time.Since(start).Seconds())
	Ok(response, scores)
}

func (s *RestServer) getItem(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	itemId, err := parseId(request, "item-id")
	if err != nil {
		BadRequest(response, err)
		return
	}
	item, ok := s.Engine.Catalog().Get(itemId)
	if !ok {
		PageNotFound(response, errors.NotFoundf("item %d", itemId))
		return
	}
	Ok(response, item)
}

func (s *RestServer) getHealth(_ *restful.Request, response *restful.Response) {
	if s.Engine == nil {
		Ok(response, Health{})
		return
	}
	Ok(response, Health{
		Ready: true,
		Users: s.Engine.Ratings().CountUsers(),
		Items: s.Engine.Ratings().CountItems(),
	})
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, logics.ErrInvalidMetric):
		return "invalid_metric"
	case errors.Is(err, logics.ErrInvalidUser):
		return "invalid_user"
	default:
		return "internal"
	}
}

// writeError maps errors from the engine to status codes.
func writeError(response *restful.Response, err error) {
	switch {
	case errors.Is(err, logics.ErrInvalidMetric):
		BadRequest(response, err)
	case errors.Is(err, logics.ErrInvalidUser):
		PageNotFound(response, err)
	default:
		InternalServerError(response, err)
	}
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}

func (s *RestServer) auth(request *restful.Request, response *restful.Response) bool {
	if s.Config.Server.APIKey == "" {
		return true
	}
	apikey := request.HeaderParameter("X-API-Key")
	if apikey == s.Config.Server.APIKey {
		return true
	}
	log.ResponseLogger(response).Error("unauthorized", zap.String("X-API-Key", apikey))
	if err := response.WriteError(http.StatusUnauthorized, errors.Unauthorizedf("unauthorized")); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
	return false
}
