package auditlog

import "strings"

// sensitiveKeys are detail-map key fragments whose values must never reach
// the audit store. Matched case-insensitively as substrings, so
// "newPassword" and "credential_hint" are both caught.
var sensitiveKeys = []string{
	"password",
	"credential",
	"secret",
	"token",
}

const redacted = "<redacted>"

// RedactDetails returns a copy of details with sensitive values replaced.
// The input map is not modified. Nested maps are redacted recursively.
func RedactDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}

	sanitized := make(map[string]any, len(details))
	for key, value := range details {
		if isSensitiveKey(key) {
			sanitized[key] = redacted
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			sanitized[key] = RedactDetails(nested)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeys {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
