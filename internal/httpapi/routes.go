package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskManager/internal/access"
	"taskManager/internal/auth"
)

func (s *Server) routes() {
	e := s.echo
	e.GET("/health", s.health)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register, s.optionalAuth)
	authGroup.POST("/login", s.login)
	authGroup.GET("/me", s.me, s.requireAuth)

	tasks := api.Group("/tasks", s.requireAuth)
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTask)
	tasks.GET("/search/:query", s.searchTasks)
	tasks.GET("/:id", s.getTask)
	tasks.PATCH("/:id", s.updateTask)
	tasks.DELETE("/:id", s.deleteTask)

	users := api.Group("/users", s.requireAuth)
	users.GET("", s.listUsers)
	users.GET("/:id", s.getUser)
	users.PATCH("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// requireAuth rejects requests without a valid bearer token and stores the
// resolved actor in the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
		}
		if err := s.authenticate(c, header); err != nil {
			return err
		}
		return next(c)
	}
}

// optionalAuth authenticates when a token is sent and lets anonymous requests through.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
			if err := s.authenticate(c, header); err != nil {
				return err
			}
		}
		return next(c)
	}
}

func (s *Server) authenticate(c echo.Context, header string) error {
	ctx := c.Request().Context()
	a, err := auth.ParseBearer(header, s.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
	}
	a, err = auth.Resolve(ctx, s.lookup, a)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownUser) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, user not found")
		}
		return err
	}
	c.SetRequest(c.Request().WithContext(auth.WithActor(ctx, a)))
	return nil
}

// actorOf returns the authenticated actor. Routes behind requireAuth always have one.
func actorOf(c echo.Context) access.Actor {
	a, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return access.Actor{}
	}
	return *a
}
