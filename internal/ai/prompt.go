package ai

import "fmt"

const systemPrompt = "You are a senior cyber-threat analyst. Return only JSON."

func buildPrompt(raw string) (string, string) {
	userPrompt := fmt.Sprintf(`Extract IoCs (IPs, domains, hashes, CVEs) and MITRE ATT&CK IDs from the raw data below, then output STRICT JSON with exactly these keys:
  {"iocs": ["..."], "mitre": ["..."], "summary": "..."}

Rules:
- "iocs": indicator strings only, deduplicated.
- "mitre": ATT&CK technique IDs such as T1566.
- "summary": at most 120 words.
- Output JSON only, no prose around it.

RAW_DATA:
%s`, raw)

	return systemPrompt, userPrompt
}
