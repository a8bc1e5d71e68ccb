package domain

import "fmt"

// PromptTemplateKind is the closed set of prompt template variants.
// Selection is a pure function of observable question and retrieval
// features; adding a variant means adding a constant, a template body and
// a selection rule.
type PromptTemplateKind string

// Available prompt templates.
const (
	// PromptBasic answers simple single-clause questions.
	PromptBasic PromptTemplateKind = "basic"

	// PromptStructured produces a sectioned analysis for questions with
	// multiple clauses or explicit enumeration cues.
	PromptStructured PromptTemplateKind = "structured"

	// PromptMultiStep walks through step-by-step reasoning when the
	// question was decomposed into several sub-queries.
	PromptMultiStep PromptTemplateKind = "multi_step"
)

// IsValid returns true if the template kind is recognised.
func (k PromptTemplateKind) IsValid() bool {
	return k == PromptBasic || k == PromptStructured || k == PromptMultiStep
}

// Prompt bodies. Each takes the assembled context first and the question
// second.
const (
	basicPromptBody = `Sen Türk Ceza Kanunu konusunda uzmanlaşmış bir hukuk asistanısın.

Bağlam:
%s

Soru: %s

Yanıtını oluştururken şu kurallara uy:
1. Sadece verilen bağlamda bulunan bilgileri kullan
2. Yasal terimleri doğru ve yerinde kullan
3. Cevabını kanun maddeleriyle destekle
4. Açık ve anlaşılır bir dil kullan

Yanıt:`

	structuredPromptBody = `Sen Türk Ceza Kanunu konusunda uzmanlaşmış bir hukuk asistanısın.

Bağlam:
%s

Soru: %s

Yanıtını aşağıdaki yapıda oluştur:

1. SORU KAPSAMI:
   - Sorunun hangi yasal konuları içerdiğini belirt
   - İlgili yasal terimleri tanımla

2. İLGİLİ KANUN MADDELERİ:
   - Her maddeyi "Madde X:" formatında belirt
   - Maddeleri önem sırasına göre sırala

3. HUKUKİ ANALİZ:
   - Her maddenin nasıl yorumlanması gerektiğini açıkla
   - Varsa istisnai durumları ve şartları belirt

4. SONUÇ:
   - Ana noktaları özetle
   - Tüm yasal referansları tekrar belirt

Sadece verilen bağlamda bulunan bilgileri kullan, spekülasyon yapma.

Yanıt:`

	multiStepPromptBody = `Sen Türk Ceza Kanunu konusunda uzmanlaşmış bir hukuk asistanısın.

Bağlam:
%s

Soru: %s

Bu soruyu yanıtlamak için aşağıdaki adımları izle:

1. SORU ANALİZİ: sorunun ana konusunu ve ilgili yasal kavramları belirle
2. YASAL ÇERÇEVE: ilgili kanun maddelerini listele ve ilişkilerini açıkla
3. HUKUKİ DEĞERLENDİRME: her maddeyi ayrı ayrı ele al, istisnaları belirt
4. SONUÇ: analizleri özetle ve yasal referansları ekle

Sadece verilen bağlamda bulunan bilgileri kullan.

Yanıt:`
)

// Render fills the template with the assembled context and question.
func (k PromptTemplateKind) Render(context, question string) string {
	switch k {
	case PromptStructured:
		return fmt.Sprintf(structuredPromptBody, context, question)
	case PromptMultiStep:
		return fmt.Sprintf(multiStepPromptBody, context, question)
	default:
		return fmt.Sprintf(basicPromptBody, context, question)
	}
}
