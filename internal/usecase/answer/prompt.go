package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/korag/internal/domain"
)

// promptTemplate is the fixed answering prompt. Section order is part
// of the contract: instruction, exemplars, anchor content, question.
// The exemplar section keeps its header even when no exemplars exist.
// Not configurable per request.
const promptTemplate = `## 임무:
제공된 '최종 출처' 정보만을 사용하여 '최종 질문'에 가장 정확하게 답변하십시오. 출처에 답이 없으면 '주어진 정보로는 답을 찾을 수 없습니다.'라고 답하세요. 답변은 반드시 출처에 명시된 용어로 작성하십시오.

## 학습 예시:
%s
## 최종 출처:
%s

## 최종 질문:
%s

[최종 답변]:
`

const exemplarEntryFormat = "[예시 질문]: %s\n[예시 출처]: %s\n[예시 답변]: %s\n"

// assemblePrompt renders the prompt from exemplars, the anchor's
// content, and the question. Pure string render, no side effects.
func assemblePrompt(exemplars []domain.Document, anchorContent, question string) string {
	var sb strings.Builder
	for _, ex := range exemplars {
		meta := ex.Metadata.WithDefaults()
		fmt.Fprintf(&sb, exemplarEntryFormat, meta.Question, ex.Content, meta.Answer)
	}
	return fmt.Sprintf(promptTemplate, sb.String(), anchorContent, question)
}
