package handlers

import (
	"context"
	"net/http"

	"taskboard/store"
)

type AuthHandler struct {
	creds *store.Credentials
}

func NewAuthHandler(creds *store.Credentials) *AuthHandler {
	return &AuthHandler{creds: creds}
}

func (h *AuthHandler) Register(ctx context.Context, req *Request) (int, any, error) {
	var in store.RegisterInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	user, err := h.creds.Register(ctx, in)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, user, nil
}

func (h *AuthHandler) Login(ctx context.Context, req *Request) (int, any, error) {
	var in store.LoginInput
	if err := req.Decode(&in); err != nil {
		return 0, nil, err
	}
	user, err := h.creds.Login(ctx, in)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, user, nil
}

func (h *AuthHandler) Me(_ context.Context, req *Request) (int, any, error) {
	return http.StatusOK, req.User.View(), nil
}
