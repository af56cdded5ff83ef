package fixtures

// Team is a tracked club and its football-data.org id.
type Team struct {
	Name string `mapstructure:"name" json:"name"`
	ID   int    `mapstructure:"id" json:"id"`
}

// DefaultCompetitions maps competition codes to display names.
func DefaultCompetitions() map[string]string {
	return map[string]string{
		"PL":  "Premier League",
		"CL":  "Champions League",
		"BL1": "Bundesliga",
		"SA":  "Serie A",
		"PD":  "La Liga",
		"FL1": "Ligue 1",
	}
}

// CompetitionName returns the display name of code, or code itself when the
// table has no entry for it.
func CompetitionName(table map[string]string, code string) string {
	if name, ok := table[code]; ok {
		return name
	}
	return code
}

// DefaultTeams returns the tracked clubs, grouped by league.
func DefaultTeams() []Team {
	return []Team{
		// Premier League
		{"Liverpool FC", 64},
		{"Arsenal FC", 57},
		{"Manchester City", 65},
		{"Chelsea FC", 61},
		{"Tottenham Hotspur", 73},
		{"Manchester United", 66},
		{"Newcastle United", 67},

		// Bundesliga
		{"FC Bayern München", 5},
		{"Borussia Dortmund", 4},
		{"Eintracht Frankfurt", 19},
		{"Hamburger SV", 7},
		{"FC Schalke 04", 6},
		{"SV Werder Bremen", 12},

		// La Liga
		{"FC Barcelona", 81},
		{"Real Madrid CF", 86},
		{"Atlético de Madrid", 78},
		{"Sevilla FC", 559},
		{"Real Betis Balompié", 90},
		{"Valencia CF", 95},

		// Serie A
		{"AC Milan", 98},
		{"FC Internazionale Milano", 108},
		{"AS Roma", 100},
		{"Juventus FC", 109},
		{"SSC Napoli", 113},

		// Ligue 1
		{"Paris Saint-Germain", 524},
		{"Olympique de Marseille", 516},
		{"Olympique Lyonnais", 523},
	}
}
