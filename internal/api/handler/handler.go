package handler

import (
	"groupchat/backend/internal/chathub"
	"groupchat/backend/internal/storage"
)

// Handler wires the HTTP surface to the chat gateway and storage.
type Handler struct {
	Gateway *chathub.Gateway
	Storage storage.Storage
	Tokens  *TokenService
}

func NewHandler(gateway *chathub.Gateway, s storage.Storage, tokens *TokenService) *Handler {
	return &Handler{Gateway: gateway, Storage: s, Tokens: tokens}
}
