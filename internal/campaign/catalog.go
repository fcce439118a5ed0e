package campaign

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func Tones() []NamedOption {
	return []NamedOption{
		{Key: "bold_energetic", Name: "Bold & Energetic"},
		{Key: "minimal_modern", Name: "Minimal & Modern"},
		{Key: "playful_fun", Name: "Playful & Fun"},
		{Key: "elegant_luxury", Name: "Elegant & Luxury"},
		{Key: "earthy_natural", Name: "Earthy & Natural"},
		{Key: "professional_trusted", Name: "Professional & Trusted"},
	}
}

func Audiences() []NamedOption {
	return []NamedOption{
		{Key: "gen_z", Name: "Gen Z (18-24)"},
		{Key: "millennials", Name: "Millennials (25-40)"},
		{Key: "parents", Name: "Busy Parents"},
		{Key: "professionals", Name: "Working Professionals"},
		{Key: "creatives", Name: "Creatives & Makers"},
		{Key: "everyone", Name: "Broad Audience"},
	}
}
