package core

// DefaultAppliances is the seed set a new session starts with.
func DefaultAppliances() []ApplianceInput {
	return []ApplianceInput{
		{Name: "Kulkas", Units: 1, WattsPerUnit: 800, TariffClass: "R-1", HoursPerDay: 24},
		{Name: "AC", Units: 1, WattsPerUnit: 2000, TariffClass: "R-1", HoursPerDay: 8},
		{Name: "Mesin Cuci", Units: 1, WattsPerUnit: 1500, TariffClass: "R-1", HoursPerDay: 2},
		{Name: "Lampu LED", Units: 5, WattsPerUnit: 20, TariffClass: "R-1", HoursPerDay: 12},
		{Name: "Kipas Angin", Units: 2, WattsPerUnit: 75, TariffClass: "R-1", HoursPerDay: 8},
		{Name: "Setrika", Units: 1, WattsPerUnit: 2000, TariffClass: "R-1", HoursPerDay: 1},
		{Name: "TV LED", Units: 1, WattsPerUnit: 200, TariffClass: "R-1", HoursPerDay: 6},
		{Name: "Rice Cooker", Units: 1, WattsPerUnit: 1000, TariffClass: "R-1", HoursPerDay: 2},
		{Name: "Laptop", Units: 1, WattsPerUnit: 300, TariffClass: "R-1", HoursPerDay: 8},
		{Name: "Microwave", Units: 1, WattsPerUnit: 1200, TariffClass: "R-1", HoursPerDay: 0.5},
		{Name: "Pemanas Air", Units: 1, WattsPerUnit: 3000, TariffClass: "R-1", HoursPerDay: 1},
		{Name: "Blender", Units: 1, WattsPerUnit: 700, TariffClass: "R-1", HoursPerDay: 0.5},
		{Name: "Hair Dryer", Units: 1, WattsPerUnit: 1800, TariffClass: "R-1", HoursPerDay: 0.5},
		{Name: "Kamera Pengawas", Units: 2, WattsPerUnit: 15, TariffClass: "R-1", HoursPerDay: 24},
		{Name: "PC", Units: 1, WattsPerUnit: 200, TariffClass: "R-1", HoursPerDay: 6},
	}
}
