package models

import "github.com/ilkoid/promptlab/pkg/prompt"

const summaryInstructions = `<purpose>
Summarize the given content based on the instructions and example-output
</purpose>

<instructions>
  <instruction>Output in markdown format</instruction>
  <instruction>Summarize into 4 sections: High level summary, Main Points, Sentiment, and 3 hot takes biased toward the author and 3 hot takes biased against the author</instruction>
  <instruction>Write the summary in the same format as the example-output</instruction>
</instructions>
`

const summaryExample = `
<example-output>
# Title

## High Level Summary
...

## Main Points
...

## Sentiment
...

## Hot Takes (biased toward the author)
...

## Hot Takes (biased against the author)
...
</example-output>
`

// DefaultPrompts возвращает встроенную библиотеку промптов.
//
// Каждый вызов возвращает новую копию: её можно свободно менять.
func DefaultPrompts() []Prompt {
	return []Prompt{
		{
			ID:   "ad-hoc",
			Name: "Ad-hoc (Quick Prompt)",
			Content: "Summarize the content with 3 hot takes biased toward the author and 3 hot takes biased against the author\n\n" +
				"...paste content here...",
			Variables: []prompt.Variable{},
			LLMID:     "gpt-4.1-mini",
		},
		{
			ID:        "structured",
			Name:      "Structured Prompt (Purpose + Instructions)",
			Content:   summaryInstructions + "\n<content>\n  ...paste content here...\n</content>",
			Variables: []prompt.Variable{},
			LLMID:     "gpt-4.1-mini",
		},
		{
			ID:        "few-shot",
			Name:      "Few-Shot (Structured + Example Output)",
			Content:   summaryInstructions + summaryExample + "\n<content>\n  ...paste content here...\n</content>",
			Variables: []prompt.Variable{},
			LLMID:     "gpt-4.1-mini",
		},
		{
			ID:        "dynamic-vars",
			Name:      "Dynamic Variables (Production-ready)",
			Content:   summaryInstructions + summaryExample + "\n<content>\n  {{content}}\n</content>",
			Variables: []prompt.Variable{{Name: "content"}},
			LLMID:     "gpt-4.1-mini",
		},
		{
			ID:   "openai-best-practice",
			Name: "OpenAI Best Practice (Identity/Instructions/Examples/Context)",
			Content: `# Identity
You are a helpful assistant that labels short product reviews as Positive, Negative, or Neutral.

# Instructions
* Only output a single word in your response with no additional formatting or commentary.
* Your response should only be one of the words "Positive", "Negative", or "Neutral" depending on the sentiment of the product review you are given.

# Examples

<product_review id="example-1">
I absolutely love these headphones - sound quality is amazing!
</product_review>
<assistant_response id="example-1">
Positive
</assistant_response>

<product_review id="example-2">
Battery life is okay, but the ear pads feel cheap.
</product_review>
<assistant_response id="example-2">
Neutral
</assistant_response>

<product_review id="example-3">
Terrible customer service, I'll never buy from them again.
</product_review>
<assistant_response id="example-3">
Negative
</assistant_response>

# Context
<product_review>
{{review}}
</product_review>`,
			Variables: []prompt.Variable{{Name: "review"}},
			LLMID:     "gpt-4.1-mini",
		},
		{
			ID:   "chain-of-thought",
			Name: "Chain-of-Thought Reasoning",
			Content: `You are an expert problem solver. Think step by step to break down the problem and explain your reasoning.

Question: {{question}}

First, think carefully step by step about what documents or information are needed to answer the query. Then, print out the TITLE and ID of each document. Then, format the IDs into a list.

Answer:`,
			Variables: []prompt.Variable{{Name: "question"}},
			LLMID:     "o3-mini",
		},
		{
			ID:   "json-output",
			Name: "Structured Output (JSON)",
			Content: `Summarize the following content and output the result as a JSON object with the following fields:
- "summary": a concise summary of the content
- "main_points": an array of the main points
- "sentiment": "positive", "neutral", or "negative"
- "hot_takes_for": array of 3 hot takes biased toward the author
- "hot_takes_against": array of 3 hot takes biased against the author

Content:
{{content}}

Respond ONLY with valid JSON.`,
			IsJSONOutput: true,
			Variables:    []prompt.Variable{{Name: "content"}},
			LLMID:        "gpt-4.1-mini",
		},
		{
			ID:   "agentic-system",
			Name: "Agentic Workflow (System Prompt)",
			Content: `## PERSISTENCE
You are an agent - keep going until the user's query is completely resolved, before ending your turn and yielding back to the user. Only terminate your turn when you are sure that the problem is solved.

## TOOL CALLING
If you are not sure about file content or codebase structure pertaining to the user's request, use your tools to read files and gather the relevant information: do NOT guess or make up an answer.

## PLANNING
You MUST plan extensively before each function call, and reflect extensively on the outcomes of the previous function calls. DO NOT do this entire process by making function calls only, as this can impair your ability to solve the problem and think insightfully.

## USER QUERY
{{query}}`,
			Variables: []prompt.Variable{{Name: "query"}},
			LLMID:     "o3-mini",
		},
		{
			ID:        "blank",
			Name:      "Blank",
			Variables: []prompt.Variable{},
			LLMID:     "gpt-4.1-mini",
		},
	}
}
