package model_test

import (
	"testing"

	"github.com/avetisov/seminarbot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmission(t *testing.T) {
	t.Run("five fields in order", func(t *testing.T) {
		sub, err := model.ParseSubmission("Ivanov I.; RG21; retake; 3; Discuss the Sykes-Picot agreement")
		require.NoError(t, err)
		assert.Equal(t, "Ivanov I.", sub.FullName)
		assert.Equal(t, "RG21", sub.Group)
		assert.Equal(t, "retake", sub.TaskType)
		assert.Equal(t, "3", sub.SeminarNo)
		assert.Equal(t, "Discuss the Sykes-Picot agreement", sub.TaskText)
	})

	t.Run("whitespace is trimmed from every field", func(t *testing.T) {
		sub, err := model.ParseSubmission("  Петрова А.А. ;РГ1 ;  доп;12 ;  Реформы Ататюрка  ")
		require.NoError(t, err)
		assert.Equal(t, "Петрова А.А.", sub.FullName)
		assert.Equal(t, "РГ1", sub.Group)
		assert.Equal(t, "доп", sub.TaskType)
		assert.Equal(t, "12", sub.SeminarNo)
		assert.Equal(t, "Реформы Ататюрка", sub.TaskText)
	})

	t.Run("task text keeps its own semicolons", func(t *testing.T) {
		sub, err := model.ParseSubmission("Ivanov I.; RG22; extra; 5; First point; second point; conclusion")
		require.NoError(t, err)
		assert.Equal(t, "First point; second point; conclusion", sub.TaskText)
	})

	t.Run("fewer than five parts is rejected", func(t *testing.T) {
		sub, err := model.ParseSubmission("only;two;parts")
		assert.Nil(t, sub)
		assert.ErrorIs(t, err, model.ErrInvalidFormat)
	})

	t.Run("empty field after trim is rejected", func(t *testing.T) {
		sub, err := model.ParseSubmission("Ivanov I.;  ; retake; 3; text")
		assert.Nil(t, sub)
		assert.ErrorIs(t, err, model.ErrInvalidFormat)
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		_, err := model.ParseSubmission("")
		assert.ErrorIs(t, err, model.ErrInvalidFormat)
	})
}
