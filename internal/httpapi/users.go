package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskManager/internal/access"
	"taskManager/internal/auth"
	"taskManager/internal/service"
)

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var caller *access.Actor
	if a, ok := auth.FromContext(c.Request().Context()); ok {
		caller = a
	}
	u, tok, err := s.users.Register(c.Request().Context(), caller, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Token: tok, User: u})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, tok, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Token: tok, User: u})
}

func (s *Server) me(c echo.Context) error {
	u, err := s.users.Me(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(u))
}

func (s *Server) listUsers(c echo.Context) error {
	var limit, offset int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return access.Invalid("limit and offset must be integers")
	}
	users, err := s.users.List(c.Request().Context(), actorOf(c), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okList(users))
}

func (s *Server) getUser(c echo.Context) error {
	u, err := s.users.Get(c.Request().Context(), actorOf(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(u))
}

func (s *Server) updateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, err := s.users.Update(c.Request().Context(), actorOf(c), c.Param("id"), service.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(u))
}

func (s *Server) deleteUser(c echo.Context) error {
	if err := s.users.Delete(c.Request().Context(), actorOf(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(echo.Map{}))
}
