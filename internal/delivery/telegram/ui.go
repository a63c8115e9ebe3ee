package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

var markPrefixes = map[entities.OptionMark]string{
	entities.MarkCorrect: "✅ ",
	entities.MarkWrong:   "❌ ",
}

// buildOptionKeyboard builds one button per option, decorated with marks.
func buildOptionKeyboard(q *entities.Question, marks map[int]entities.OptionMark) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options))
	for i, option := range q.Options {
		label := formatOptionLabel(i, option)
		if m, ok := marks[i]; ok {
			label = markPrefixes[m] + label
		}
		button := tgbotapi.NewInlineKeyboardButtonData(label, buildExamOptionCallback(q.ID, i))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
