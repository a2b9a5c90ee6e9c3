package analysis

import (
	"path"
	"strings"
)

var languages = map[string]string{
	".go":    "go",
	".js":    "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".py":    "python",
	".java":  "java",
	".kt":    "kotlin",
	".scala": "scala",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".rs":    "rust",
	".swift": "swift",
	".dart":  "dart",
	".sh":    "bash",
	".sql":   "sql",
	".lua":   "lua",
	".pl":    "perl",
	".ex":    "elixir",
	".exs":   "elixir",
	".hs":    "haskell",
	".clj":   "clojure",
}

// Language returns the language name for key's extension, or "other".
func Language(key string) string {
	if lang, ok := languages[strings.ToLower(path.Ext(key))]; ok {
		return lang
	}
	return "other"
}

const binarySniffLen = 8192

// isBinary reports whether content looks like binary data: a NUL byte in the
// first 8 KiB, or more than 30% control characters there.
func isBinary(content []byte) bool {
	sample := content
	if len(sample) > binarySniffLen {
		sample = sample[:binarySniffLen]
	}
	if len(sample) == 0 {
		return false
	}

	control := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return float64(control)/float64(len(sample)) > 0.30
}
