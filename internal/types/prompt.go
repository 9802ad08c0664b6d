package types

// ClipAnalysisPrompt is the default highlight selection prompt. Placeholders:
// min clip seconds, max clip seconds, transcript text. The response contract
// matches what internal/candidate parses; the model frequently violates it,
// which is why recovery parsing exists.
const ClipAnalysisPrompt = `You are a short-form video editor. Read the transcript below and select the most engaging highlight clips.

Rules:
- Each clip must be between %d and %d seconds long.
- Clips must start and end at natural sentence boundaries.
- Order clips from best to worst.

Respond with ONLY a JSON array, no prose. Each element:
{"title": "...", "start": <seconds>, "end": <seconds>, "category": "...", "tags": ["..."], "score": <0-100>}

Transcript:
%s`
