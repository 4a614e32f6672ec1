package doctors

import "strings"

// Filter returns the doctors whose name, specialization or location contains
// term, ignoring case. An empty term returns list itself. The input is never
// modified and relative order is kept.
func Filter(list []Doctor, term string) []Doctor {
	if term == "" {
		return list
	}

	needle := strings.ToLower(term)
	out := make([]Doctor, 0, len(list))
	for _, d := range list {
		if matches(d, needle) {
			out = append(out, d)
		}
	}
	return out
}

func matches(d Doctor, needle string) bool {
	return strings.Contains(strings.ToLower(d.Name), needle) ||
		strings.Contains(strings.ToLower(d.Specialization), needle) ||
		strings.Contains(strings.ToLower(d.Location), needle)
}
