package pipeline

import "google.golang.org/genai"

// systemInstruction steers the model toward the single-transaction
// extraction task. The response shape itself is enforced by the
// response schema, so the instruction only has to cover semantics.
const systemInstruction = `You are the extraction engine of a personal finance tracker.
Users send short informal messages, usually in Portuguese, about money they spent or received.

Task:
- Decide whether the message describes a single financial transaction.
- If it does, fill in the "transaction" object.
- If it does not (greetings, questions, chit-chat), set "transaction" to null.

Rules:
- "amount" is always a positive number; the direction is carried by "type".
- "type" is "expense" for money spent and "income" for money received.
- "category" is a short label in the language of the message, such as
  "Alimentação", "Transporte", "Mercado", "Salário", "Lazer", "Saúde" or
  "Contas". Invent a fitting label when none of these apply.
- "description" is a short summary of what the money was for.
- Never invent an amount. If no amount is recognizable, set "transaction" to null.`

// responseSchema constrains the model output to exactly the shape the
// decoder expects: {"transaction": {...}} or {"transaction": null}.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transaction": {
				Type:     genai.TypeObject,
				Nullable: genai.Ptr(true),
				Properties: map[string]*genai.Schema{
					"amount":      {Type: genai.TypeNumber},
					"type":        {Type: genai.TypeString, Enum: []string{"income", "expense"}},
					"category":    {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
				},
				Required: []string{"amount", "type", "category", "description"},
			},
		},
		Required: []string{"transaction"},
	}
}
