package shellcommand

import "strings"

func StartsWithSuccess(output string) bool {
	return strings.HasPrefix(strings.TrimSpace(output), "Success")
}

func DoesNotStartWithError(output string) bool {
	return !strings.HasPrefix(strings.TrimSpace(output), "Error")
}

// Contains returns a validator that requires substr in the output.
func Contains(substr string) func(string) bool {
	return func(output string) bool {
		return strings.Contains(output, substr)
	}
}

// StartsWith returns a validator that requires the trimmed output to begin
// with prefix.
func StartsWith(prefix string) func(string) bool {
	return func(output string) bool {
		return strings.HasPrefix(strings.TrimSpace(output), prefix)
	}
}
