package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// stubQAService returns a canned answer and records the question.
type stubQAService struct {
	answer      domain.Answer
	err         error
	gotQuestion string
	gotFilter   map[string]string
	gotTopK     int
}

func (s *stubQAService) AskQuestion(_ context.Context, question string, filter map[string]string, topK int) (domain.Answer, error) {
	s.gotQuestion = question
	s.gotFilter = filter
	s.gotTopK = topK
	return s.answer, s.err
}

func withStubServices(t *testing.T, svcs *Services) {
	t.Helper()
	appServices = svcs
	t.Cleanup(func() {
		appServices = nil
		askTopK = 0
		askJSON = false
		askFilters = nil
		rootCmd.SetArgs(nil)
	})
}

func sampleAnswer() domain.Answer {
	return domain.Answer{
		Text:       "Madde 1 ceza kanununun amacını düzenler.",
		Confidence: 0.82,
		Sources: []domain.RetrievalResult{
			{
				Chunk: domain.DocumentChunk{
					ID:      "article_1",
					Content: "Madde 1: Ceza Kanununun amacı...",
					Metadata: domain.ChunkMetadata{
						Type:   domain.ChunkTypeArticle,
						Number: 1,
					},
				},
				Distance: 0.36,
			},
		},
		Template: domain.PromptBasic,
	}
}

func TestAskCmd_TextOutput(t *testing.T) {
	stub := &stubQAService{answer: sampleAnswer()}
	withStubServices(t, &Services{QA: stub, DefaultTopK: 7})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "Ceza kanununun amacı nedir?"})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "Ceza kanununun amacı nedir?", stub.gotQuestion)
	assert.Equal(t, 7, stub.gotTopK)
	out := buf.String()
	assert.Contains(t, out, "Madde 1 ceza kanununun amacını düzenler.")
	assert.Contains(t, out, "Kaynaklar:")
	assert.Contains(t, out, "Madde 1 (yüksek)")
	assert.Contains(t, out, "Güven: 0.82")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	stub := &stubQAService{answer: sampleAnswer()}
	withStubServices(t, &Services{QA: stub})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "Ceza kanununun amacı nedir?"})

	require.NoError(t, rootCmd.Execute())

	var answer domain.Answer
	require.NoError(t, json.Unmarshal(buf.Bytes(), &answer))
	assert.Equal(t, "Madde 1 ceza kanununun amacını düzenler.", answer.Text)
	assert.InDelta(t, 0.82, answer.Confidence, 1e-9)
	assert.Len(t, answer.Sources, 1)
}

func TestAskCmd_FiltersAndTopK(t *testing.T) {
	stub := &stubQAService{answer: sampleAnswer()}
	withStubServices(t, &Services{QA: stub})

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{
		"ask", "Soykırım suçunun unsurları nelerdir?",
		"--filter", "hierarchy_level=special_provisions",
		"--top-k", "3",
	})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, map[string]string{"hierarchy_level": "special_provisions"}, stub.gotFilter)
	assert.Equal(t, 3, stub.gotTopK)
}

func TestAskCmd_NotConfigured(t *testing.T) {
	withStubServices(t, &Services{})

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "soru"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kanunqa config set")
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "nil pairs", pairs: nil, want: nil},
		{name: "single pair", pairs: []string{"type=article"}, want: map[string]string{"type": "article"}},
		{
			name:  "multiple pairs",
			pairs: []string{"type=article", "hierarchy_level=general_provisions"},
			want:  map[string]string{"type": "article", "hierarchy_level": "general_provisions"},
		},
		{name: "value with equals", pairs: []string{"term=a=b"}, want: map[string]string{"term": "a=b"}},
		{name: "missing separator", pairs: []string{"typearticle"}, wantErr: true},
		{name: "empty key", pairs: []string{"=article"}, wantErr: true},
		{name: "empty value", pairs: []string{"type="}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilters(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
