package catalog

import "github.com/starford/scenaview/internal/models"

// builtin is the reference catalog shipped with the viewer. Some sequences
// reference scenario ids that are not in the scenario list; those shares
// never match a selectable scenario.
func builtin() Data {
	return Data{
		Scenarios: []models.Scenario{
			{ID: "1", Name: "City", Description: "Urban driving scenarios"},
			{ID: "2", Name: "Clear Sky", Description: "Clear weather conditions"},
			{ID: "3", Name: "Tunnel", Description: "Driving through tunnels"},
			{ID: "4", Name: "Rain", Description: "Wet weather conditions"},
			{ID: "5", Name: "Highway", Description: "High-speed highway driving"},
			{ID: "6", Name: "Country Road", Description: "Rural and countryside driving"},
		},
		Sequences: []models.Sequence{
			{ID: "1", Name: "Morning Commute", TotalFrames: 1200, Description: "Daily morning drive to work",
				Scenarios: shares("2", 85, "10", 70, "4", 45)},
			{ID: "2", Name: "Highway Journey", TotalFrames: 2000, Description: "Long distance highway travel",
				Scenarios: shares("4", 95, "7", 30, "9", 25)},
			{ID: "3", Name: "Tunnel Drive", TotalFrames: 800, Description: "Underground tunnel navigation",
				Scenarios: shares("1", 100, "2", 40, "5", 60)},
			{ID: "4", Name: "Rainy Day Trip", TotalFrames: 950, Description: "Driving in wet conditions",
				Scenarios: shares("3", 100, "2", 65, "10", 55)},
			{ID: "5", Name: "Night Drive", TotalFrames: 1100, Description: "Evening and night driving",
				Scenarios: shares("5", 100, "4", 70, "9", 50)},
			{ID: "6", Name: "Winter Conditions", TotalFrames: 1300, Description: "Snow and ice driving",
				Scenarios: shares("6", 100, "9", 60, "4", 40)},
			{ID: "7", Name: "Construction Zone", TotalFrames: 900, Description: "Navigating through work zones",
				Scenarios: shares("7", 100, "4", 80, "10", 75)},
			{ID: "8", Name: "Shopping Center", TotalFrames: 750, Description: "Mall and shopping area driving",
				Scenarios: shares("8", 90, "2", 70, "10", 60)},
			{ID: "9", Name: "Country Road", TotalFrames: 1250, Description: "Rural and countryside driving",
				Scenarios: shares("9", 100, "5", 45, "6", 35)},
			{ID: "10", Name: "Rush Hour", TotalFrames: 1400, Description: "Peak traffic hours",
				Scenarios: shares("10", 100, "2", 90, "7", 40)},
			{ID: "11", Name: "Weekend Trip", TotalFrames: 1600, Description: "Leisure weekend driving",
				Scenarios: shares("4", 60, "9", 70, "8", 50)},
			{ID: "12", Name: "Emergency Response", TotalFrames: 1000, Description: "Urgent driving scenarios",
				Scenarios: shares("2", 80, "4", 70, "10", 85)},
		},
	}
}

// shares builds a share list from alternating id, percentage pairs.
func shares(pairs ...any) []models.ScenarioShare {
	out := make([]models.ScenarioShare, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.ScenarioShare{
			ScenarioID: pairs[i].(string),
			Percentage: pairs[i+1].(int),
		})
	}
	return out
}
