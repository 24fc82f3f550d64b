package chat

import "math/rand/v2"

const (
	// HandleLength is the length of a generated display handle.
	HandleLength = 6

	handleAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func randomHandle() string {
	b := make([]byte, HandleLength)
	for i := range b {
		b[i] = handleAlphabet[rand.IntN(len(handleAlphabet))]
	}
	return string(b)
}

// FormatMessage renders a chat line the way every room member receives it.
func FormatMessage(handle, text string) string {
	return handle + " :: " + text
}
