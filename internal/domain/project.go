package domain

// Project describes the web project being scaffolded.
type Project struct {
	Name      string
	Slug      string
	Dir       string
	Languages []string
}

// DefaultLanguage returns the first selected language, or empty if none were selected.
func (p Project) DefaultLanguage() string {
	if len(p.Languages) == 0 {
		return ""
	}
	return p.Languages[0]
}
