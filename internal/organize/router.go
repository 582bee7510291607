package organize

// Classify maps a lowercase dotted extension to its category folder name.
// A miss is not an error: it signals "leave the file alone". Callers are
// responsible for lowercasing the extension before lookup.
func Classify(ext string, table map[string]string) (string, bool) {
	category, ok := table[ext]
	return category, ok
}
