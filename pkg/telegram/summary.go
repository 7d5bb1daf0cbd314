package telegram

import (
	"fmt"
	"strings"
	"time"

	"kopilka/pkg/ledger"
)

func monthTitle(t time.Time) string {
	return t.Format("January 2006")
}

// summaryText renders a converted month report as an HTML message.
func summaryText(r ledger.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 <b>Ваши операции за %s (%s):</b>\n\n", monthTitle(r.Month), r.Currency)

	for _, line := range r.Lines {
		fmt.Fprintf(&sb, "<i>%s</i>: %s %s %s\n",
			line.Date.Format(dateLayout), line.Type, line.Amount.StringFixed(2), r.Currency)
	}

	fmt.Fprintf(&sb, "\n<b>Итого расходов:</b> %s %s\n", r.TotalExpenses.StringFixed(2), r.Currency)

	if !r.HasBudget {
		sb.WriteString("\nℹ️ Бюджет не установлен. Используйте /setbudget")
		return sb.String()
	}

	fmt.Fprintf(&sb, "<b>Установленный бюджет:</b> %s %s\n", r.Budget.StringFixed(2), r.Currency)
	fmt.Fprintf(&sb, "<b>Остаток бюджета:</b> %s %s\n", r.Remaining.StringFixed(2), r.Currency)
	fmt.Fprintf(&sb, "\n<b>Использовано:</b> %s%% %s", r.Percent.StringFixed(2), progressBar(r.Filled))

	return sb.String()
}

// progressBar renders a ten-segment utilization bar.
func progressBar(filled int) string {
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}

	return strings.Repeat("🟩", filled) + strings.Repeat("⬜️", 10-filled)
}
