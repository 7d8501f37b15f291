package messages

import (
	"net/http"

	"PlacementHub/internal/auth"
	"PlacementHub/internal/httpio"

	"github.com/labstack/echo/v4"
)

type MessageHandler struct {
	service *MessageService
}

func NewMessageHandler(service *MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	var req SendRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.service.Send(c.Request().Context(), account, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"msg": "Message sent", "message": msg})
}

func (h *MessageHandler) Conversation(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.Conversation(c.Request().Context(), account, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

func (h *MessageHandler) Conversations(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	convs, err := h.service.Conversations(c.Request().Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": convs})
}

func (h *MessageHandler) UnreadCount(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": n})
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	msg, err := h.service.MarkRead(c.Request().Context(), account, c.Param("messageId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Message marked as read", "message": msg})
}

func (h *MessageHandler) Delete(c echo.Context) error {
	account, err := auth.AccountFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), account, c.Param("messageId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Message deleted successfully"})
}
