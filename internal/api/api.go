package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/api/controller"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/service/elections"
)

type APIService struct {
	router           *echo.Echo
	electionsService *elections.Service
}

func (svc *APIService) Serve(addr string) {
	logger.Fatal(context.Background(), svc.router.Start(addr))
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(electionsService *elections.Service) (*APIService, error) {
	svc := &APIService{router: echo.New(), electionsService: electionsService}

	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = NewSerializer()
	svc.router.Use(middleware.Logger())
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(svc.electionsService)

	scrape := api.Group("/scrape", svc.AdminMiddleware)
	scrape.POST("/:type", cntrl.Scrape)

	contests := api.Group("/contests")
	contests.GET("/list", cntrl.GetContests)
	contests.GET("/:id", cntrl.GetContest)
	contests.GET("/:id/results", cntrl.GetContestResults)

	areas := api.Group("/areas")
	areas.GET("/list", cntrl.GetAreas)

	meta := api.Group("/meta")
	meta.GET("/list", cntrl.GetMeta)

	api.GET("/elections", cntrl.GetElections)

	return svc, nil
}
