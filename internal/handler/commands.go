package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := message.CommandArguments()

	switch message.Command() {
	case "start":
		h.sendStartMessage(chatID)
	case "help":
		h.sendHelpMessage(chatID)
	case "link":
		h.linkAccount(ctx, message, args)
	case "statuses":
		h.showStatuses(ctx, chatID)

	// Заявки сотрудника
	case "absence":
		h.submitAbsence(ctx, chatID, args)
	case "myabsences":
		h.showMyAbsences(ctx, chatID, args)

	// Команды администратора
	case "allabsences":
		h.showAllAbsences(ctx, chatID)
	case "setstatus":
		h.setStatus(ctx, chatID, args)

	default:
		h.reply(chatID, "❌ Commande inconnue. Utilisez /help pour la liste des commandes.")
	}
}

func (h *Handler) sendStartMessage(chatID int64) {
	h.reply(chatID, `👋 Bienvenue sur le bot de gestion des absences !

Pour commencer, liez ce chat à votre compte :
/link email mot_de_passe

Ensuite tapez /help pour voir les commandes.`)
}

func (h *Handler) sendHelpMessage(chatID int64) {
	h.reply(chatID, `📋 Commandes disponibles :

👤 Compte :
/link email mot_de_passe - Lier ce chat à votre compte

🏖️ Absences :
/absence début fin motif - Déposer une demande
    Exemple : /absence 01.07.2026 14.07.2026 Congés d'été
    Formats : JJ.MM.AAAA, JJ-MM-AAAA, AAAA-MM-JJ ou JJ.MM (année en cours)
/myabsences [statut] - Mes demandes (statut : 1, 2 ou 3)
/statuses - Liste des statuts

👑 Administration :
/allabsences - Toutes les demandes par employé
/setstatus id_absence id_statut - Changer le statut d'une demande`)
}

// linkAccount привязывает чат к аккаунту. Сообщение с паролем удаляется.
func (h *Handler) linkAccount(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.reply(chatID, "❌ Format : /link email mot_de_passe")
		return
	}

	h.request(tgbotapi.NewDeleteMessage(chatID, message.MessageID))

	user, err := h.userService.LinkChat(ctx, parts[0], parts[1], chatID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Chat lié au compte %s %s (%s).", user.FirstName, user.Name, user.Email))
}

func (h *Handler) showStatuses(ctx context.Context, chatID int64) {
	statuses, err := h.absenceService.Statuses(ctx)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	var b strings.Builder
	b.WriteString("📋 Statuts :\n")
	for _, s := range statuses {
		fmt.Fprintf(&b, "%d - %s\n", s.ID, s.Label)
	}
	h.reply(chatID, b.String())
}
