package reviews

import (
	"net/http"

	"PlacementHub/internal/auth"
	"PlacementHub/internal/httpio"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	service *ReviewService
}

func NewReviewHandler(service *ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	var req CreateReviewRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	review, err := h.service.Create(c.Request().Context(), account, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"msg": "Review posted successfully", "review": review})
}

// Company is public.
func (h *ReviewHandler) Company(c echo.Context) error {
	result, err := h.service.ForCompany(c.Request().Context(), c.Param("companyId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) Mine(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	reviews, err := h.service.Mine(c.Request().Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}

func (h *ReviewHandler) Update(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	var req UpdateReviewRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	review, err := h.service.Update(c.Request().Context(), account, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Review updated successfully", "review": review})
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), account, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Review deleted successfully"})
}
