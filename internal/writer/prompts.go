package writer

// Prompt templates for the single-call writing stages. Each stage that
// feeds later pipeline logic demands JSON so the caller can decode it
// deterministically instead of re-parsing free text.

const synthesizerPrompt = `You are a research writer synthesizing source material into a report.

TOPIC: %s

RESEARCH SOURCES:
%s

TASK:
Write a coherent, well-structured report on the topic using ONLY the research
sources above. Every factual statement must carry an inline citation marker
[n] referring to the source URL it came from. Do not invent sources or cite
URLs that do not appear in the research material.

Respond with JSON ONLY:
{
  "report_markdown": "the full report in markdown with inline [n] citations",
  "citations": [{"id": 1, "url": "https://...", "title": "source title"}]
}`

const extractorPrompt = `You are extracting atomic factual claims from a draft report.

DRAFT:
%s

CITATIONS:
%s

TASK:
List every atomic factual claim in the draft together with the URL of the
citation it relies on. An atomic claim is a single, independently checkable
statement. Split compound sentences into separate claims. Resolve each [n]
marker to its URL using the citations list.

Respond with JSON ONLY:
{
  "claims": [{"id": 1, "text": "the claim text", "url": "https://..."}]
}`

const criticPrompt = `You are reviewing a draft report against its verification results.

DRAFT:
%s

VERIFICATION REPORT:
%s

TASK:
Critique the draft. Focus on claims the verification marked unsupported,
weak sourcing, internal contradictions, and structural problems. For each
issue, reference the claim id where one applies and suggest a concrete fix:
rewrite the statement, qualify it, or remove it.

Respond with JSON ONLY:
{
  "summary": "overall assessment in 2-3 sentences",
  "issues": [{"claim_id": 1, "severity": "minor|major|critical", "description": "...", "suggestion": "..."}]
}`

const reviserPrompt = `You are revising a draft report to fix verification failures.

CURRENT DRAFT:
%s

CRITIQUE:
%s

UNSUPPORTED CLAIMS:
%s

TASK:
Produce a revised draft. Remove or rewrite every unsupported claim: either
qualify it so it matches what the source actually says, or drop it entirely.
Keep supported claims and their [n] citation markers intact. Do not add new
factual claims without a citation from the existing list.

Respond with JSON ONLY:
{
  "report_markdown": "the full revised report in markdown",
  "citations": [{"id": 1, "url": "https://...", "title": "source title"}]
}`

const stylerPrompt = `You are applying a style guide to a finished report.

STYLE GUIDE:
%s

REPORT:
%s

TASK:
Rewrite the report to follow the style guide. Preserve every factual
statement and its [n] citation marker exactly; change only tone, structure,
and presentation. Output the styled report as markdown, with no preamble.`

// styleGuides maps guide names to the formatting profile handed to the
// style stage.
var styleGuides = map[string]string{
	"general": `# General Report Style
- Accessible to a non-specialist reader
- Short paragraphs, minimal jargon, terms defined on first use
- Open with a plain-language summary of the key findings`,

	"technical": `# Technical Brief Style
- Precise, dense prose for an expert reader
- Lead with an executive summary, then findings in order of importance
- Use section headings, tables where data warrants them, and exact figures`,

	"defi_report": `# DeFi Research Report Style
- Audience: protocol analysts and fund researchers
- Lead with protocol overview, TVL/volume figures, and risk factors
- Flag every unaudited dependency and governance concentration explicitly
- Quantify claims with on-chain figures where the sources provide them`,
}
