package discovery

// Category is one entry of the static niche candidate catalog, supplied at
// startup. GrowthFactor is a sector multiplier applied to the growth
// sub-score (1.0 = neutral).
type Category struct {
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords"`
	GrowthFactor float64  `json:"growth_factor"`
}

// DefaultCatalog returns the built-in candidate set.
func DefaultCatalog() []Category {
	return []Category{
		{
			Name:         "Technology",
			Keywords:     []string{"AI", "Robot", "Smart Home", "Automation", "Drone", "VR", "Blockchain", "Machine Learning", "Cybersecurity"},
			GrowthFactor: 1.2,
		},
		{
			Name:         "Lifestyle",
			Keywords:     []string{"Minimalist", "Wellness", "Mindfulness", "Self Care", "Work Life Balance", "Digital Detox", "Slow Living", "Cozy"},
			GrowthFactor: 1.1,
		},
		{
			Name:         "Sustainability",
			Keywords:     []string{"Eco Friendly", "Zero Waste", "Sustainable", "Green Energy", "Solar", "Recycle", "Organic", "Climate"},
			GrowthFactor: 1.3,
		},
		{
			Name:         "Business",
			Keywords:     []string{"Remote Work", "Startup", "Freelance", "Coworking", "Entrepreneur", "Digital Nomad", "Leadership", "Teamwork"},
			GrowthFactor: 1.0,
		},
		{
			Name:         "Health",
			Keywords:     []string{"Mental Health", "Meditation", "Yoga", "Fitness", "Nutrition", "Sleep", "Therapy", "Healthcare"},
			GrowthFactor: 1.15,
		},
		{
			Name:         "Food",
			Keywords:     []string{"Plant Based", "Vegan", "Healthy Eating", "Meal Prep", "Superfoods", "Organic Food", "Farm to Table"},
			GrowthFactor: 1.1,
		},
		{
			Name:         "Travel",
			Keywords:     []string{"Ecotourism", "Adventure", "Solo Travel", "Staycation", "Glamping", "Road Trip", "City Break"},
			GrowthFactor: 1.0,
		},
		{
			Name:         "Creative",
			Keywords:     []string{"Digital Art", "Generative Art", "3D Design", "Motion Graphics", "Abstract", "Retro", "Gradient"},
			GrowthFactor: 1.25,
		},
		{
			Name:         "Finance",
			Keywords:     []string{"Cryptocurrency", "Fintech", "Investment", "Passive Income", "Stock Market", "Banking", "Wealth"},
			GrowthFactor: 1.1,
		},
		{
			Name:         "Seasonal",
			Keywords:     []string{"Christmas", "New Year", "Valentine", "Halloween", "Summer", "Winter", "Autumn", "Spring"},
			GrowthFactor: 1.0,
		},
	}
}
