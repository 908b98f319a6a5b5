package line

import "strings"

// MaxTextLength is the platform limit on the text of one text message.
const MaxTextLength = 5000

// SplitText splits text into chunks of at most maxLen bytes, preferring to
// break on paragraph, line, sentence, and finally word boundaries. A break
// point is only used when it keeps the chunk at least a quarter of maxLen,
// so chunks stay reasonably balanced.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = MaxTextLength
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	minSplit := maxLen / 4
	var chunks []string

	for len(text) > maxLen {
		window := text[:maxLen]

		split := -1
		for _, sep := range []string{"\n\n", "\n"} {
			if i := strings.LastIndex(window, sep); i >= minSplit {
				split = i
				break
			}
		}
		if split < 0 {
			for _, sep := range []string{". ", "? ", "! "} {
				if i := strings.LastIndex(window, sep); i >= minSplit && i+1 > split {
					split = i + 1
				}
			}
		}
		if split < 0 {
			if i := strings.LastIndex(window, " "); i >= minSplit {
				split = i
			}
		}
		if split < 0 {
			split = maxLen
		}

		chunks = append(chunks, strings.TrimSpace(text[:split]))
		text = strings.TrimSpace(text[split:])
	}

	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
