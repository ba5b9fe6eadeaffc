package llm

// promptTemplate 评分提示词,与生成端约定的输出格式:四元素 JSON 数组
// [score, question, null, answer]
const promptTemplate = "Responde la pregunta del usuario y calcula UN solo puntaje final de 1 a 10 considerando internamente:\n" +
	"- Exactitud (40%)\n- Integridad (25%)\n- Claridad (20%)\n- Concisión (10%)\n- Utilidad (5%)\n\n" +
	"Devuelve EXCLUSIVAMENTE un JSON válido en este FORMATO y ORDEN (sin texto extra):\n" +
	"[\n  final_score_entero_1_a_10,\n  \"<repite la pregunta EXACTAMENTE como la recibiste>\",\n  null,\n  \"<respuesta en texto>\"\n]\n\n" +
	"No incluyas desgloses ni comentarios.\n\n" +
	"Pregunta:\n"

// BuildPrompt 拼接完整提示词
func BuildPrompt(question string) string {
	return promptTemplate + question
}
