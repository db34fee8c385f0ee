package scanning

import (
	"strings"
)

// NoExamsIdentified is what the model is told to answer when the slip lists no exams
const NoExamsIdentified = "NENHUM EXAME IDENTIFICADO"

// examScanPrompt is the shared prompt used by all LLM providers for reading requisition slips
const examScanPrompt = `Analise esta imagem de uma guia médica e extraia TODOS os nomes dos exames solicitados.

Retorne APENAS uma lista simples com os nomes dos exames, um por linha, sem numeração, sem formatação adicional.

Exemplos de exames que podem aparecer:
- Hemograma
- Glicose
- Colesterol Total
- HDL
- LDL
- Triglicerídeos
- Creatinina
- Ureia
- TSH
- T4 Livre
- Ácido Úrico
- TGO
- TGP
- Hemoglobina Glicada

Se não conseguir identificar nenhum exame, retorne apenas: "` + NoExamsIdentified + `"`

// CleanText strips markdown fences and list markers the model sometimes adds
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
