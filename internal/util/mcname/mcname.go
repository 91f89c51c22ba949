package mcname

// Valid reports whether name is syntactically a Minecraft username:
// 1-16 characters of [A-Za-z0-9_]. The lower bound is lax on purpose,
// legacy accounts exist with names shorter than the modern 3-character
// minimum.
func Valid(name string) bool {
	if len(name) == 0 || len(name) > 16 {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '_':
		default:
			return false
		}
	}
	return true
}
