package ingest

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMANN-N/smart-practice/internal/router"
)

func typeText(s *IngestScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestEmptyTopicIsRejected(t *testing.T) {
	s := New()
	typeText(s, "   ")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(80, 20), "Enter a topic name")

	typeText(s, "x")
	assert.NotContains(t, s.View(80, 20), "Enter a topic name")
}

func TestEnterPopsWithTopic(t *testing.T) {
	s := New()
	typeText(s, " graphs ")
	assert.Equal(t, "graphs", s.Value())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	pop, ok := cmd().(router.PopScreenMsg)
	require.True(t, ok)
	assert.Equal(t, RequestedMsg{Topic: "graphs"}, pop.Result)
}

func TestKeyHints(t *testing.T) {
	hints := New().KeyHints()
	require.Len(t, hints, 2)
	assert.Equal(t, "Enter", hints[0].Key)
}
