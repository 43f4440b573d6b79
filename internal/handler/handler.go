package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"absence-tracker/internal/access"
	"absence-tracker/internal/models"
	"absence-tracker/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender - часть Telegram API, которой пользуется обработчик
type Sender interface {
	Send(msg tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	client         Sender
	userService    *service.UserService
	absenceService *service.AbsenceService
	calendar       *service.CalendarService
	logger         *logrus.Logger
	timeout        time.Duration
	now            func() time.Time
}

func NewHandler(
	client Sender,
	userService *service.UserService,
	absenceService *service.AbsenceService,
	calendar *service.CalendarService,
	logger *logrus.Logger,
	timeout time.Duration,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		client:         client,
		userService:    userService,
		absenceService: absenceService,
		calendar:       calendar,
		logger:         logger,
		timeout:        timeout,
		now:            time.Now,
	}
}

// HandleUpdates обрабатывает обновления до закрытия канала или отмены ctx
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	// Обработка callback query (для inline кнопок)
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	entry := h.logger.WithField("chat_id", message.Chat.ID)
	if message.From != nil {
		entry = entry.WithField("username", message.From.UserName)
	}
	// Аргументы /link содержат пароль
	if message.IsCommand() {
		entry.WithField("command", message.Command()).Info("Telegram command")
	}

	if !message.IsCommand() {
		h.reply(message.Chat.ID, "Je ne comprends que les commandes. Tapez /help pour la liste.")
		return
	}

	h.handleCommand(ctx, message)
}

// handleCallbackQuery обрабатывает inline кнопки "setstatus:<absence_id>:<status_id>"
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем на callback (убираем "часики" у кнопки)
	defer h.request(tgbotapi.NewCallback(callback.ID, ""))

	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	parts := strings.Split(callback.Data, ":")
	if len(parts) != 3 || parts[0] != "setstatus" {
		h.logger.WithField("data", callback.Data).Warn("Unknown callback data")
		return
	}

	// Удаляем клавиатуру
	h.request(tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup()))

	h.setStatus(ctx, chatID, parts[1]+" "+parts[2])
}

// principal находит аккаунт, привязанный к чату
func (h *Handler) principal(ctx context.Context, chatID int64) (*models.User, access.Principal, bool) {
	user, err := h.userService.GetByChatID(ctx, chatID)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			h.reply(chatID, "🔒 Ce chat n'est lié à aucun compte.\nUtilisez /link email mot_de_passe.")
		} else {
			h.replyError(chatID, err)
		}
		return nil, access.Principal{}, false
	}
	return user, access.Principal{UserID: user.ID, Role: user.Role}, true
}

func (h *Handler) adminGrant(ctx context.Context, chatID int64) (access.AdminGrant, bool) {
	_, p, ok := h.principal(ctx, chatID)
	if !ok {
		return access.AdminGrant{}, false
	}
	grant, err := p.Admin()
	if err != nil {
		h.logger.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		h.reply(chatID, "❌ Accès refusé. Cette commande est réservée aux administrateurs.")
		return access.AdminGrant{}, false
	}
	return grant, true
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(msg tgbotapi.Chattable) {
	if _, err := h.client.Send(msg); err != nil {
		h.logger.WithError(err).Error("Failed to send Telegram message")
	}
}

func (h *Handler) request(msg tgbotapi.Chattable) {
	if _, err := h.client.Request(msg); err != nil {
		h.logger.WithError(err).Warn("Telegram request failed")
	}
}

// replyError переводит ошибку сервиса в сообщение пользователю
func (h *Handler) replyError(chatID int64, err error) {
	var (
		verr  *service.ValidationError
		cerr  *service.ConflictError
		nferr *service.NotFoundError
	)

	switch {
	case errors.As(err, &verr):
		h.reply(chatID, "❌ "+verr.Error())
	case errors.As(err, &cerr):
		h.reply(chatID, "❌ "+cerr.Message)
	case errors.As(err, &nferr):
		h.reply(chatID, fmt.Sprintf("❌ %s introuvable.", resourceLabel(nferr.Resource)))
	case errors.Is(err, service.ErrInvalidCredentials):
		h.reply(chatID, "❌ Email ou mot de passe incorrect.")
	case errors.Is(err, service.ErrForbidden):
		h.reply(chatID, "❌ Accès refusé.")
	default:
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Telegram command failed")
		h.reply(chatID, "❌ Erreur interne, réessayez plus tard.")
	}
}

func resourceLabel(resource string) string {
	switch resource {
	case "Absence":
		return "Absence"
	case "User":
		return "Utilisateur"
	default:
		return resource
	}
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
