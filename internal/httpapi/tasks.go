package httpapi

import (
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"taskManager/internal/access"
	"taskManager/internal/service"
	"taskManager/models"
)

// listTasks serves GET /api/tasks?status=&category=&limit=&offset=.
func (s *Server) listTasks(c echo.Context) error {
	var status, category string
	var opts service.ListOptions
	err := echo.QueryParamsBinder(c).
		String("status", &status).
		String("category", &category).
		Int("limit", &opts.Limit).
		Int("offset", &opts.Offset).
		BindError()
	if err != nil {
		return access.Invalid("limit and offset must be integers")
	}
	opts.Status = models.TaskStatus(status)
	opts.Category = models.TaskCategory(category)

	tasks, err := s.tasks.List(c.Request().Context(), actorOf(c), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okList(tasks))
}

func (s *Server) createTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := s.tasks.Create(c.Request().Context(), actorOf(c), service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Category:    models.TaskCategory(req.Category),
		Status:      models.TaskStatus(req.Status),
		AssignedTo:  req.AssignedTo,
		DueDate:     *req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ok(t))
}

func (s *Server) getTask(c echo.Context) error {
	t, err := s.tasks.Get(c.Request().Context(), actorOf(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(t))
}

// updateTask decodes the body strictly so unknown or null fields never reach the engine.
func (s *Server) updateTask(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	patch, err := access.DecodeTaskPatch(body)
	if err != nil {
		return err
	}
	t, err := s.tasks.Update(c.Request().Context(), actorOf(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(t))
}

func (s *Server) deleteTask(c echo.Context) error {
	if err := s.tasks.Delete(c.Request().Context(), actorOf(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok(echo.Map{}))
}

func (s *Server) searchTasks(c echo.Context) error {
	// echo routes on RawPath when one is set, leaving params escaped.
	query := c.Param("query")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(query)
		if err != nil {
			return access.Invalid("search query is malformed")
		}
		query = unescaped
	}
	tasks, err := s.tasks.Search(c.Request().Context(), actorOf(c), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okList(tasks))
}
