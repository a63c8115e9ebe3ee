// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

// User-facing messages.
const (
	msgWelcome = "欢迎使用日语单词测验。\n\n" +
		"先用 /signin <用户名> <密码> 登录，再用 /exam 开始测验。"
	msgHelp = "可用命令：\n\n" +
		"/signin <用户名> <密码> — 登录\n" +
		"/exam — 开始测验\n" +
		"/stop — 结束测验\n" +
		"/stats — 答题统计\n" +
		"/signout — 退出登录并清除记录\n" +
		"/help — 帮助\n\n" +
		"测验中点击选项或发送选项编号作答。"
	msgSignInUsage    = "用法：/signin <用户名> <密码>"
	msgNotSignedIn    = "请先使用 /signin 登录。"
	msgSessionRunning = "测验已经在进行中。发送 /stop 结束。"
	msgNoSession      = "当前没有进行中的测验。发送 /exam 开始。"
	msgSessionStopped = "测验已结束。"
	msgSessionFailed  = "与服务器的连接出错，测验已结束。发送 /exam 重新开始。"
	msgSignedOut      = "已退出登录，答题记录已清除。"
	msgInternalError  = "出错了，请稍后再试。"
	msgUnknownCommand = "未知命令。发送 /help 查看可用命令。"
)

// maxMessageLength is the Telegram limit for message text.
const maxMessageLength = 4096

const truncationMark = "…"

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// formatQuestion renders the question card in MarkdownV2.
func formatQuestion(q *entities.Question, familiarity string) string {
	var b strings.Builder

	b.WriteString(bold(q.Term))
	if len(q.WordClasses) > 0 {
		b.WriteString("\n" + italic(strings.Join(q.WordClasses, "，")))
	}
	for i, m := range q.Meanings {
		b.WriteString("\n" + md(fmt.Sprintf("%d. %s", i+1, m)))
	}
	b.WriteString("\n\n" + md(familiarity))

	return b.String()
}

func formatOptionLabel(index int, option string) string {
	return fmt.Sprintf("%d.%s", index+1, option)
}

func formatStats(st *entities.AnswerStats) string {
	return fmt.Sprintf(
		"%s\n\n%s\n%s\n%s\n%s",
		bold("📊 答题统计"),
		md(fmt.Sprintf("✍️ 累计答题：%d", st.Total)),
		md(fmt.Sprintf("✅ 答对：%d", st.Correct)),
		md(fmt.Sprintf("🎯 正确率：%.1f%%", st.Accuracy())),
		md(fmt.Sprintf("📅 今日答题：%d", st.AnsweredToday)),
	)
}

// truncate cuts s to at most limit runes, marking the cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	keep := limit - len([]rune(truncationMark))
	return string(runes[:keep]) + truncationMark
}
