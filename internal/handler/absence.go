package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"absence-tracker/internal/models"
	"absence-tracker/internal/service"
	"absence-tracker/pkg/period"
)

// submitAbsence: /absence début fin motif...
func (h *Handler) submitAbsence(ctx context.Context, chatID int64, args string) {
	user, _, ok := h.principal(ctx, chatID)
	if !ok {
		return
	}

	parts := strings.Fields(args)
	if len(parts) < 3 {
		h.reply(chatID, `🏖️ Déposer une absence

Format : /absence début fin motif
Exemple : /absence 01.07.2026 14.07.2026 Congés d'été
Pour un seul jour, indiquez deux fois la même date.`)
		return
	}

	now := h.now()
	startDate, err := period.Parse(parts[0], now)
	if err != nil {
		h.reply(chatID, "❌ Date de début : "+err.Error())
		return
	}
	endDate, err := period.Parse(parts[1], now)
	if err != nil {
		h.reply(chatID, "❌ Date de fin : "+err.Error())
		return
	}
	reason := strings.Join(parts[2:], " ")

	absence, err := h.absenceService.Submit(ctx, user.ID, service.SubmitAbsenceInput{
		StartDate: startDate.Format(period.ISOLayout),
		EndDate:   endDate.Format(period.ISOLayout),
		Reason:    reason,
	})

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		h.replyConflict(ctx, chatID, user.ID, period.New(startDate, endDate), conflict)
		return
	}
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	p := absence.Period()
	workingDays, err := h.calendar.WorkingDays(ctx, p)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to count working days")
		workingDays = p.Days()
	}

	h.reply(chatID, fmt.Sprintf(`✅ Demande enregistrée !

🆔 N° %d
🏖️ Période : %s
📅 Nombre de jours : %d (ouvrés : %d)
📝 Motif : %s
📌 Statut : %s`, absence.ID, p.String(), p.Days(), workingDays, absence.Reason, absence.StatusLabel()))
}

// replyConflict показывает, с какими заявками пересекается новый период
func (h *Handler) replyConflict(ctx context.Context, chatID int64, userID uint, candidate period.Range, conflict *service.ConflictError) {
	conflicts, err := h.absenceService.Overlap().Conflicting(ctx, userID, candidate)
	if err != nil || len(conflicts) == 0 {
		h.reply(chatID, "❌ "+conflict.Message)
		return
	}

	var b strings.Builder
	b.WriteString("❌ " + conflict.Message + "\n\nDemandes en conflit :\n")
	for i := range conflicts {
		b.WriteString(formatAbsenceLine(&conflicts[i]))
	}
	h.reply(chatID, b.String())
}

// showMyAbsences: /myabsences [status_id]
func (h *Handler) showMyAbsences(ctx context.Context, chatID int64, args string) {
	user, _, ok := h.principal(ctx, chatID)
	if !ok {
		return
	}

	var filter service.AbsenceFilter
	if arg := strings.TrimSpace(args); arg != "" {
		statusID, ok := parseID(arg)
		if !ok {
			h.reply(chatID, "❌ Statut invalide. Utilisez /statuses pour la liste.")
			return
		}
		filter.StatusID = &statusID
	}

	absences, err := h.absenceService.ListOwn(ctx, user.ID, filter)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(absences) == 0 {
		h.reply(chatID, "📭 Aucune demande d'absence.")
		return
	}

	var b strings.Builder
	b.WriteString("📋 Mes demandes d'absence :\n\n")
	totalDays := 0
	for i := range absences {
		b.WriteString(formatAbsenceLine(&absences[i]))
		totalDays += absences[i].Period().Days()
	}
	fmt.Fprintf(&b, "\n📊 Total : %d demande(s), %d jour(s)", len(absences), totalDays)

	h.reply(chatID, b.String())
}

func formatAbsenceLine(a *models.Absence) string {
	return fmt.Sprintf("%s N° %d : %s (%d j.) - %s\n   %s\n",
		statusEmoji(a.StatusID), a.ID, a.Period().String(), a.Period().Days(), a.StatusLabel(), a.Reason)
}

func statusEmoji(statusID uint) string {
	switch statusID {
	case models.StatusApproved:
		return "✅"
	case models.StatusRejected:
		return "⛔"
	default:
		return "⏳"
	}
}
