package types

import (
	"encoding/json"
	"fmt"
)

// fieldAliases maps the Portuguese field names accepted on input to their
// canonical JSON names. The table is flat: every alias maps to the same
// canonical name wherever it appears.
var fieldAliases = map[string]string{
	"contato":             "contact",
	"nome_completo":       "full_name",
	"telefone":            "phone",
	"localizacao":         "location",
	"site":                "website",
	"resumo_profissional": "professional_summary",
	"experiencias":        "experiences",
	"cargo":               "role",
	"empresa":             "company",
	"data_inicio":         "start_date",
	"data_fim":            "end_date",
	"resumo":              "summary",
	"conquistas":          "highlights",
	"formacoes":           "educations",
	"curso":               "degree",
	"instituicao":         "institution",
	"detalhes":            "summary",
	"competencias":        "skills",
	"projetos":            "projects",
	"nome":                "name",
	"descricao":           "description",
	"etiquetas":           "tags",
	"layout_id":           "template_id",
	"formato":             "format",
	"curriculo":           "resume",
}

// canonicalize rewrites aliased object keys in place, recursively. A
// canonical key already present wins over its alias.
func canonicalize(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, value := range node {
			if canonical, ok := fieldAliases[key]; ok {
				if _, exists := node[canonical]; exists {
					continue
				}
				key = canonical
			}
			out[key] = canonicalize(value)
		}
		return out
	case []any:
		for i := range node {
			node[i] = canonicalize(node[i])
		}
		return node
	default:
		return v
	}
}

func decodeCanonical(data []byte, target any) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	normalized, err := json.Marshal(canonicalize(raw))
	if err != nil {
		return fmt.Errorf("failed to re-encode JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, target); err != nil {
		return fmt.Errorf("invalid résumé payload: %w", err)
	}
	return nil
}

// DecodeResume decodes a résumé accepting both English and Portuguese field
// names.
func DecodeResume(data []byte) (ResumeData, error) {
	var resume ResumeData
	if err := decodeCanonical(data, &resume); err != nil {
		return ResumeData{}, err
	}
	resume.EnsureLists()
	return resume, nil
}

// DecodeRenderRequest decodes a render request accepting both English and
// Portuguese field names.
func DecodeRenderRequest(data []byte) (RenderRequest, error) {
	var req RenderRequest
	if err := decodeCanonical(data, &req); err != nil {
		return RenderRequest{}, err
	}
	req.Resume.EnsureLists()
	return req, nil
}
