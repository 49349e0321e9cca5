package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/http/middlewares"
	"github.com/geocoder89/valehub/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardSource interface {
	Dashboard(ctx context.Context, u user.User) (service.Dashboard, error)
}

type PagesHandler struct {
	dashboards DashboardSource
}

func NewPagesHandler(dashboards DashboardSource) *PagesHandler {
	return &PagesHandler{dashboards: dashboards}
}

const loginHTML = `<!doctype html>
<html lang="pt-BR">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width,initial-scale=1" />
    <title>Vale Simplificado</title>
  </head>
  <body>
    <form id="login">
      <input name="email" type="email" autocomplete="username" required />
      <input name="password" type="password" autocomplete="current-password" required />
      <button type="submit">Entrar</button>
    </form>
    <script>
      document.getElementById("login").addEventListener("submit", async (e) => {
        e.preventDefault();
        const form = new FormData(e.target);
        const res = await fetch("/auth/login", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ email: form.get("email"), password: form.get("password") }),
        });
        if (res.ok) window.location.assign("/dashboard");
      });
    </script>
  </body>
</html>`

// Root sends signed-in users to the dashboard and everyone else to login.
func (h *PagesHandler) Root(ctx *gin.Context) {
	if _, ok := middlewares.CurrentUser(ctx); ok {
		ctx.Redirect(http.StatusFound, "/dashboard")
		return
	}
	ctx.Redirect(http.StatusFound, "/login")
}

func (h *PagesHandler) Login(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginHTML))
}

func (h *PagesHandler) Dashboard(ctx *gin.Context) {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.dashboards.Dashboard(cctx, u)
	if err != nil {
		RespondDomainError(ctx, err, "", "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, d)
}
