package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avetisov/seminarbot/config"
	"github.com/avetisov/seminarbot/internal/model"
	"github.com/avetisov/seminarbot/internal/repository"
	"github.com/avetisov/seminarbot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const (
	msgStart = "Привет! Пришлите домашнее задание в формате:\n" +
		"ФИО; группа (РГ1/РГ21/РГ22); тип (отработка/доп); № семинара; текст задания"
	msgInvalidFormat      = "⚠️ Неверный формат. Должно быть 5 полей, разделённых ‘;’."
	msgFeedbackFailed     = "⚠️ Не удалось получить фидбэк на работу. Попробуйте ещё раз позже."
	msgAccessDenied       = "⛔ Команда доступна только преподавателю."
	msgNoRecordsToday     = "Сегодня работ не поступало."
	msgExportUnavailable  = "⚠️ Не удалось подготовить выгрузку. Попробуйте позже."
	longPollTimeoutSecond = 30
)

// Bot is the Telegram transport: it routes inbound updates to the submission
// pipeline and the collection service and maps their errors to user replies.
type Bot struct {
	api           *tgbotapi.BotAPI
	submissionSvc service.SubmissionService
	collectSvc    service.CollectService
}

func New(cfg *config.Config, submissionSvc service.SubmissionService, collectSvc service.CollectService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	log.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")
	return &Bot{
		api:           api,
		submissionSvc: submissionSvc,
		collectSvc:    collectSvc,
	}, nil
}

// Run drains the long-poll update channel until Stop is called. Each update is
// handled on its own goroutine; the record store serialises what must not
// interleave.
func (b *Bot) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = longPollTimeoutSecond

	updates := b.api.GetUpdatesChan(u)
	log.Info().Msg("Bot started, waiting for messages")

	for update := range updates {
		go b.handleUpdate(update)
	}
}

// Stop closes the update channel, letting Run return.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.reply(msg.Chat.ID, msgStart)
		case "collect":
			b.handleCollect(msg)
		}
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	b.handleSubmission(msg)
}

func (b *Bot) handleSubmission(msg *tgbotapi.Message) {
	sender := model.Sender{ID: msg.From.ID, Handle: msg.From.UserName}

	err := b.submissionSvc.Process(context.Background(), sender, strings.TrimSpace(msg.Text), func(text string) error {
		return b.reply(msg.Chat.ID, text)
	})
	switch {
	case err == nil:
	case errors.Is(err, model.ErrInvalidFormat):
		b.reply(msg.Chat.ID, msgInvalidFormat)
	case errors.Is(err, service.ErrFeedbackUnavailable):
		b.reply(msg.Chat.ID, msgFeedbackFailed)
	case errors.Is(err, repository.ErrStoreUnavailable):
		// Feedback already reached the student; the loss is logged by the
		// pipeline, nothing useful to tell the user.
	default:
		log.Error().Int64("sender_id", sender.ID).Err(err).Msg("Unhandled pipeline error")
	}
}

func (b *Bot) handleCollect(msg *tgbotapi.Message) {
	export, err := b.collectSvc.Collect(msg.From.ID, time.Now())
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAccessDenied):
		b.reply(msg.Chat.ID, msgAccessDenied)
		return
	case errors.Is(err, service.ErrNoRecordsToday):
		b.reply(msg.Chat.ID, msgNoRecordsToday)
		return
	default:
		log.Error().Int64("requester_id", msg.From.ID).Err(err).Msg("Collect failed")
		b.reply(msg.Chat.ID, msgExportUnavailable)
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  export.Filename,
		Bytes: export.Data,
	})
	if export.Skipped > 0 {
		doc.Caption = "Внимание: часть строк журнала пропущена как повреждённая."
	}
	if _, err := b.api.Send(doc); err != nil {
		log.Error().Int64("requester_id", msg.From.ID).Err(err).Msg("Failed to send export document")
		b.reply(msg.Chat.ID, msgExportUnavailable)
	}
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		log.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send reply")
	}
	return err
}
