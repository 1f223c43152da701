package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/codinBabe/stock-tracker-app/internal/digest"
	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(user *model.User) (bool, error)
}

type WelcomeSender interface {
	SendWelcome(ctx context.Context, user digest.NewUser) digest.Outcome
}

// UserHandler registers users and fires the user-created welcome flow.
type UserHandler struct {
	store   UserStore
	welcome WelcomeSender
}

func NewUserHandler(store UserStore, welcome WelcomeSender) *UserHandler {
	return &UserHandler{store: store, welcome: welcome}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and name are required"})
		return
	}

	user := model.User{Email: req.Email, Name: req.Name}
	created, err := h.store.Create(&user)
	if err != nil {
		slog.Error("error creating user", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	outcome := h.welcome.SendWelcome(c.Request.Context(), digest.NewUser{
		Email:             req.Email,
		Name:              req.Name,
		Country:           req.Country,
		InvestmentGoals:   req.InvestmentGoals,
		RiskTolerance:     req.RiskTolerance,
		PreferredIndustry: req.PreferredIndustry,
	})
	if !outcome.Success {
		slog.Warn("welcome email not sent", "email", req.Email, "message", outcome.Message)
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "welcome": outcome})
}
