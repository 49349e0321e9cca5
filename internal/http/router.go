package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/valehub/internal/http/handlers"
	"github.com/geocoder89/valehub/internal/http/middlewares"
	"github.com/geocoder89/valehub/internal/observability"
	"github.com/geocoder89/valehub/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Log *slog.Logger

	Env            string
	AllowedOrigins []string
	LoginRateLimit int
	Tracing        bool

	Sessions interface {
		handlers.Sessions
		middlewares.SessionResolver
	}
	Users    handlers.UserService
	Vouchers interface {
		handlers.VoucherService
		handlers.DashboardSource
	}
	Checks map[string]handlers.Check

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	prod := d.Env == "prod"

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if d.Tracing {
		r.Use(otelgin.Middleware("valehub"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders(prod))
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.LoadSession(d.Sessions))
	r.Use(middlewares.RequestLogger(d.Log))

	// health + metrics
	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// auth
	var recorder handlers.LoginRecorder
	if d.Prom != nil {
		recorder = d.Prom
	}
	authHandler := handlers.NewAuthHandler(d.Sessions, recorder, prod)
	loginLimiter := middlewares.NewRateLimiter(d.LoginRateLimit, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.POST("/login",
		loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		authHandler.Login,
	)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/session", authHandler.Session)

	// api
	usersHandler := handlers.NewUsersHandler(d.Users)
	vouchersHandler := handlers.NewVouchersHandler(d.Vouchers)

	api := r.Group("/api")
	api.Use(middlewares.RequireSession(), middlewares.RequireJSON())

	users := api.Group("/users")
	users.GET("", middlewares.RequireAction(policy.ListUsers), usersHandler.ListUsers)
	users.GET("/employees", middlewares.RequireAction(policy.ListUsers), usersHandler.ListEmployees)
	users.POST("", middlewares.RequireAction(policy.CreateUser), usersHandler.CreateUser)
	users.PUT("/:id", middlewares.RequireAction(policy.UpdateUser), usersHandler.UpdateUser)
	users.DELETE("/:id", middlewares.RequireAction(policy.DeleteUser), usersHandler.DeleteUser)

	vouchers := api.Group("/vouchers")
	vouchers.GET("", vouchersHandler.ListVouchers)
	vouchers.GET("/summary", vouchersHandler.Summary)
	vouchers.GET("/:id", vouchersHandler.GetVoucher)
	vouchers.POST("", middlewares.RequireAction(policy.CreateVouch), vouchersHandler.CreateVoucher)
	vouchers.PUT("/:id", middlewares.RequireAction(policy.UpdateVouch), vouchersHandler.UpdateVoucher)
	vouchers.PATCH("/:id/status", middlewares.RequireAction(policy.ToggleVouch), vouchersHandler.ToggleStatus)
	vouchers.DELETE("/:id", middlewares.RequireAction(policy.DeleteVouch), vouchersHandler.DeleteVoucher)

	api.GET("/years", vouchersHandler.ListYears)

	// pages
	pages := handlers.NewPagesHandler(d.Vouchers)
	r.GET("/", pages.Root)
	r.GET("/login", middlewares.GuestOnly(), pages.Login)
	r.GET("/dashboard", middlewares.RequirePage(), pages.Dashboard)

	return r
}
