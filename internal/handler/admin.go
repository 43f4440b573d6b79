package handler

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"absence-tracker/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Лимиты Telegram: 4096 символов в сообщении и 100 кнопок в клавиатуре
const (
	maxMessageRunes = 3500
	maxKeyboardRows = 50
)

// showAllAbsences показывает заявки всех сотрудников (только для админов).
// Каждому сотруднику отдельное сообщение; длинные списки режутся на части.
// Для заявок в ожидании добавляются кнопки "Valider"/"Refuser".
func (h *Handler) showAllAbsences(ctx context.Context, chatID int64) {
	grant, ok := h.adminGrant(ctx, chatID)
	if !ok {
		return
	}

	groups, err := h.absenceService.ListAll(ctx, grant)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	total := 0
	for _, g := range groups {
		total += len(g.Absences)
	}
	if total == 0 {
		h.reply(chatID, "📋 Aucune demande d'absence.")
		return
	}

	h.reply(chatID, fmt.Sprintf("📋 Demandes d'absence : %d employé(s), %d demande(s).\n"+
		"Export complet : GET /api/admin/absences/export", len(groups), total))

	for _, g := range groups {
		if len(g.Absences) == 0 {
			continue
		}
		for _, msg := range userAbsenceMessages(chatID, g.User, g.Absences) {
			h.send(msg)
		}
	}
}

// userAbsenceMessages собирает сообщения по одному сотруднику в пределах лимитов Telegram
func userAbsenceMessages(chatID int64, user models.User, absences []models.Absence) []tgbotapi.MessageConfig {
	header := fmt.Sprintf("👤 %s %s (%s)\n", user.FirstName, user.Name, user.Email)

	var (
		messages []tgbotapi.MessageConfig
		b        strings.Builder
		rows     [][]tgbotapi.InlineKeyboardButton
	)

	flush := func() {
		if b.Len() == 0 {
			return
		}
		msg := tgbotapi.NewMessage(chatID, b.String())
		if len(rows) > 0 {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		}
		messages = append(messages, msg)
		b.Reset()
		rows = nil
	}

	for i := range absences {
		a := &absences[i]
		line := formatAbsenceLine(a)
		pending := a.StatusID == models.StatusPending

		full := utf8.RuneCountInString(b.String())+utf8.RuneCountInString(line) > maxMessageRunes
		if full || (pending && len(rows) == maxKeyboardRows) {
			flush()
		}
		if b.Len() == 0 {
			b.WriteString(header)
		}

		b.WriteString(line)
		if pending {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("✅ N° %d", a.ID),
					fmt.Sprintf("setstatus:%d:%d", a.ID, models.StatusApproved)),
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("⛔ N° %d", a.ID),
					fmt.Sprintf("setstatus:%d:%d", a.ID, models.StatusRejected)),
			))
		}
	}
	flush()

	return messages
}

// setStatus: /setstatus absence_id status_id
func (h *Handler) setStatus(ctx context.Context, chatID int64, args string) {
	grant, ok := h.adminGrant(ctx, chatID)
	if !ok {
		return
	}

	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.reply(chatID, "❌ Format : /setstatus id_absence id_statut\nExemple : /setstatus 7 2")
		return
	}

	absenceID, ok := parseID(parts[0])
	if !ok {
		h.reply(chatID, "❌ Identifiant d'absence invalide.")
		return
	}
	statusID, ok := parseID(parts[1])
	if !ok {
		h.reply(chatID, "❌ Statut invalide. Utilisez /statuses pour la liste.")
		return
	}

	absence, err := h.absenceService.SetStatus(ctx, grant, absenceID, statusID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Statut mis à jour.\n%s", formatAbsenceLine(absence)))
}
