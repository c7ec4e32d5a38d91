package main

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/vidmerge/vidmerge-bot/docs"
	"github.com/vidmerge/vidmerge-bot/health"
	"github.com/vidmerge/vidmerge-bot/merges"
	"github.com/vidmerge/vidmerge-bot/responses"
	"github.com/vidmerge/vidmerge-bot/routers"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func BuildRouter(app *App) *gin.Engine {
	r := gin.New()

	applyCors(r, app)
	applyTracing(r, app)
	applySwagger(r, app)

	registerRoutes(r, app)

	return r
}

func applyCors(r *gin.Engine, app *App) {
	origins := strings.Split(app.Config.CorsConfig.Origins, ",")
	r.Use(cors.New(
		cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
		},
	))
}

func applyTracing(r *gin.Engine, app *App) {
	if !app.Config.Tracing {
		return
	}

	r.Use(otelgin.Middleware("vidmerge-bot"))
}

func applySwagger(r *gin.Engine, app *App) {
	if app.Config.Env == "PROD" {
		return
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func registerRoutes(r *gin.Engine, app *App) {
	r.GET("/test", func(ctx *gin.Context) {
		responses.JSONSuccess(ctx, "ok")
	})

	checks := []health.ReadinessCheck{
		app.Services.Stores.objects,
		app.Services.Stores.settings,
		app.Services.Stores.tasks,
	}
	if app.Services.Cache != nil {
		checks = append(checks, app.Services.Cache)
	}
	health.RegisterHealthRoutes(health.NewHealthHandler(checks...), r)

	v1 := routers.ApplyApiVersioning("1", r)

	routers.RegisterMergesRouter(
		merges.NewMergesHandler(app.Services.Sessions, app.Services.Stores.tasks),
		v1,
	)
}
