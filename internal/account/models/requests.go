package models

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	dErrors "peerhelp/pkg/domain-errors"
)

// RegisterRequest is the payload handed over by the registration flow.
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	ClientIP    string `json:"client_ip"`
	UserAgent   string `json:"user_agent"`
}

func (r *RegisterRequest) Normalize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.ClientIP = strings.TrimSpace(r.ClientIP)
	if len(r.UserAgent) > 512 {
		r.UserAgent = r.UserAgent[:512]
	}
}

func (r *RegisterRequest) Validate() error {
	if r.DisplayName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "display_name is required")
	}
	if utf8.RuneCountInString(r.DisplayName) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "display_name must be at most 64 characters")
	}
	if len(r.Email) > 254 {
		return dErrors.New(dErrors.CodeInvalidInput, "email must be at most 254 characters")
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return dErrors.New(dErrors.CodeInvalidInput, "email is invalid")
	}
	return nil
}

// LinkChannelRequest carries the chat id confirmed by the verification handshake.
type LinkChannelRequest struct {
	ChatID string `json:"chat_id"`
}

func (r *LinkChannelRequest) Normalize() {
	r.ChatID = strings.TrimSpace(r.ChatID)
}

func (r *LinkChannelRequest) Validate() error {
	return ValidateChatID(r.ChatID)
}

// ValidateChatID accepts Telegram chat ids: signed 64-bit integers.
func ValidateChatID(chatID string) error {
	if chatID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "chat_id is required")
	}
	if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "chat_id must be a numeric id")
	}
	return nil
}
