package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avetisov/seminarbot/internal/model"
	"github.com/avetisov/seminarbot/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// ReplyFunc delivers one text reply to the sender of the inbound message.
type ReplyFunc func(text string) error

type SubmissionService interface {
	// Process runs one inbound message through the pipeline:
	// parse/validate, generate feedback, reply with the feedback, then append
	// the record. Returns model.ErrInvalidFormat, ErrFeedbackUnavailable, or
	// repository.ErrStoreUnavailable; the caller maps those to user replies.
	// A store failure after the feedback reply was delivered is already logged
	// here at error level with the full row, for manual recovery.
	Process(ctx context.Context, sender model.Sender, rawText string, reply ReplyFunc) error
}

type submissionService struct {
	recordRepo  repository.RecordRepository
	feedbackSvc FeedbackService
}

func NewSubmissionService(recordRepo repository.RecordRepository, feedbackSvc FeedbackService) SubmissionService {
	return &submissionService{
		recordRepo:  recordRepo,
		feedbackSvc: feedbackSvc,
	}
}

func (s *submissionService) Process(ctx context.Context, sender model.Sender, rawText string, reply ReplyFunc) error {
	sub, err := model.ParseSubmission(rawText)
	if err != nil {
		log.Info().Int64("sender_id", sender.ID).Err(err).Msg("Submission rejected")
		return err
	}

	feedback, err := s.feedbackSvc.GenerateFeedback(ctx, sub.TaskText)
	if err != nil {
		log.Error().Int64("sender_id", sender.ID).Err(err).Msg("Failed to generate feedback")
		return err
	}

	if err := reply(feedback); err != nil {
		// Feedback never reached the student; drop the run without a record.
		log.Error().Int64("sender_id", sender.ID).Err(err).Msg("Failed to deliver feedback reply")
		return fmt.Errorf("deliver feedback: %w", err)
	}

	rec := model.Record{
		Timestamp:    time.Now().UTC(),
		SenderID:     sender.ID,
		SenderHandle: sender.Handle,
		Feedback:     feedback,
	}
	if rec.SenderHandle == "" {
		rec.SenderHandle = model.NoHandle
	}
	copier.Copy(&rec, sub)

	if err := s.recordRepo.EnsureInitialized(); err != nil {
		s.logLostRecord(&rec, err)
		return err
	}
	if err := s.recordRepo.Append(&rec); err != nil {
		s.logLostRecord(&rec, err)
		return err
	}

	log.Info().
		Int64("sender_id", sender.ID).
		Str("group", rec.Group).
		Str("task_type", rec.TaskType).
		Str("seminar_no", rec.SeminarNo).
		Msg("Submission recorded")
	return nil
}

// logLostRecord reports a record the student already received feedback for but
// that could not be stored, with every field so an operator can restore it.
func (s *submissionService) logLostRecord(rec *model.Record, err error) {
	log.Error().
		Err(err).
		Time("timestamp", rec.Timestamp).
		Int64("sender_id", rec.SenderID).
		Str("username", rec.SenderHandle).
		Str("fio", rec.FullName).
		Str("group", rec.Group).
		Str("task_type", rec.TaskType).
		Str("seminar_no", rec.SeminarNo).
		Str("task_text", rec.TaskText).
		Str("feedback", rec.Feedback).
		Msg("Record lost: feedback was delivered but the row could not be stored")
}
