package jobs

import (
	"net/http"

	"PlacementHub/internal/auth"
	"PlacementHub/internal/httpio"

	"github.com/labstack/echo/v4"
)

type listQuery struct {
	Status string `query:"status" json:"status" validate:"omitempty,oneof=Open Filled"`
	Type   string `query:"type" json:"type" validate:"omitempty,oneof=Full-time Part-time Internship"`
}

type JobHandler struct {
	service *JobService
}

func NewJobHandler(service *JobService) *JobHandler {
	return &JobHandler{service: service}
}

func (h *JobHandler) Create(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	var req CreateJobRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	job, err := h.service.Create(c.Request().Context(), account, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) MyJobs(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.MyJobs(c.Request().Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) List(c echo.Context) error {
	var q listQuery
	if err := httpio.Bind(c, &q); err != nil {
		return err
	}
	jobs, err := h.service.List(c.Request().Context(), ListFilter{Status: Status(q.Status), Type: Type(q.Type)})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Update(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	var req UpdateJobRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	job, err := h.service.Update(c.Request().Context(), account, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), account, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Job removed"})
}
