package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConjunctionDecomposer(t *testing.T) {
	d := NewConjunctionDecomposer(DefaultMaxSubQueries)

	t.Run("simple question stays whole", func(t *testing.T) {
		got := d.Decompose("Hırsızlık suçunun cezası nedir")
		assert.Equal(t, []string{"Hırsızlık suçunun cezası nedir"}, got)
	})

	t.Run("trailing question mark is not a clause boundary", func(t *testing.T) {
		got := d.Decompose("Ceza kanununun amacı nedir?")
		assert.Equal(t, []string{"Ceza kanununun amacı nedir?"}, got)
	})

	t.Run("original question comes first", func(t *testing.T) {
		question := "Hırsızlık suçunun cezası nedir ve nitelikli halleri nelerdir"
		got := d.Decompose(question)
		assert.Equal(t, question, got[0])
		assert.Equal(t, []string{
			question,
			"Hırsızlık suçunun cezası nedir",
			"nitelikli halleri nelerdir",
		}, got)
	})

	t.Run("splits on punctuation", func(t *testing.T) {
		got := d.Decompose("Meşru müdafaa nedir? Sınırları nasıl belirlenir?")
		assert.Equal(t, []string{
			"Meşru müdafaa nedir? Sınırları nasıl belirlenir?",
			"Meşru müdafaa nedir",
			"Sınırları nasıl belirlenir",
		}, got)
	})

	t.Run("single word clauses dropped", func(t *testing.T) {
		got := d.Decompose("Kast ve taksir arasındaki fark nedir")
		assert.Equal(t, []string{
			"Kast ve taksir arasındaki fark nedir",
			"taksir arasındaki fark nedir",
		}, got)
	})

	t.Run("case insensitive dedupe", func(t *testing.T) {
		got := d.Decompose("hakaret suçu nedir ve Hakaret suçu nedir")
		assert.Equal(t, []string{"hakaret suçu nedir ve Hakaret suçu nedir", "hakaret suçu nedir"}, got)
	})

	t.Run("cap bounds the fan-out", func(t *testing.T) {
		capped := NewConjunctionDecomposer(2)
		got := capped.Decompose("Kasten öldürme nedir ve hırsızlık nasıl cezalandırılır ve dolandırıcılık neyi kapsar")
		assert.Len(t, got, 2)
		assert.Equal(t, "Kasten öldürme nedir ve hırsızlık nasıl cezalandırılır ve dolandırıcılık neyi kapsar", got[0])
	})

	t.Run("non positive max selects default", func(t *testing.T) {
		fallback := NewConjunctionDecomposer(0)
		assert.Equal(t, DefaultMaxSubQueries, fallback.maxSubQueries)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		got := d.Decompose("  Tutuklama şartları nelerdir  ")
		assert.Equal(t, []string{"Tutuklama şartları nelerdir"}, got)
	})
}
