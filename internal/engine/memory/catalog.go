package memory

import "time"

func day(d int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// seedCatalog returns the demo furniture catalog used in development mode.
func seedCatalog() []product {
	return []product{
		{ID: 1, ProductCode: "SOF-001", Name: "Sofá Berlim 3 Lugares", Description: "Sofá de 3 lugares em veludo com pés de madeira", Category: "Sofás", Material: "Veludo", Color: "Azul", Style: "Moderno", Price: 2499.90, Height: 85, Width: 210, Depth: 95, DateCreated: day(0)},
		{ID: 2, ProductCode: "SOF-002", Name: "Sofá Retrátil Oslo", Description: "Sofá retrátil e reclinável em suede", Category: "Sofás", Material: "Suede", Color: "Cinza", Style: "Contemporâneo", Price: 3199.00, Height: 90, Width: 230, Depth: 105, DateCreated: day(3)},
		{ID: 3, ProductCode: "POL-001", Name: "Poltrona Costela", Description: "Poltrona costela com puff em linho", Category: "Poltronas", Material: "Linho", Color: "Bege", Style: "Escandinavo", Price: 1299.00, Height: 100, Width: 80, Depth: 85, DateCreated: day(5)},
		{ID: 4, ProductCode: "POL-002", Name: "Poltrona Giratória Madrid", Description: "Poltrona giratória em couro sintético", Category: "Poltronas", Material: "Couro sintético", Color: "Preto", Style: "Moderno", Price: 899.00, Height: 95, Width: 75, Depth: 80, DateCreated: day(8)},
		{ID: 5, ProductCode: "MES-001", Name: "Mesa de Jantar Lisboa", Description: "Mesa de jantar retangular para 6 lugares em madeira maciça", Category: "Mesas", Material: "Madeira", Color: "Castanho", Style: "Rústico", Price: 1899.00, Height: 78, Width: 160, Depth: 90, DateCreated: day(10)},
		{ID: 6, ProductCode: "MES-002", Name: "Mesa de Centro Turim", Description: "Mesa de centro redonda com tampo de vidro", Category: "Mesas", Material: "Vidro", Color: "Transparente", Style: "Moderno", Price: 549.90, Height: 45, Width: 80, Depth: 80, DateCreated: day(12)},
		{ID: 7, ProductCode: "CAD-001", Name: "Cadeira Eames", Description: "Cadeira de jantar em polipropileno com pés de madeira", Category: "Cadeiras", Material: "Polipropileno", Color: "Branco", Style: "Escandinavo", Price: 189.90, Height: 82, Width: 46, Depth: 50, DateCreated: day(14)},
		{ID: 8, ProductCode: "CAD-002", Name: "Cadeira Estofada Porto", Description: "Cadeira de jantar estofada em linho", Category: "Cadeiras", Material: "Linho", Color: "Cinza", Style: "Contemporâneo", Price: 329.00, Height: 88, Width: 50, Depth: 55, DateCreated: day(16)},
		{ID: 9, ProductCode: "EST-001", Name: "Estante Industrial Veneza", Description: "Estante de aço e madeira com 5 prateleiras", Category: "Estantes", Material: "Aço", Color: "Preto", Style: "Industrial", Price: 799.00, Height: 180, Width: 90, Depth: 35, DateCreated: day(18)},
		{ID: 10, ProductCode: "CAM-001", Name: "Cama Box Casal Munique", Description: "Cama box casal com baú e cabeceira estofada", Category: "Camas", Material: "Suede", Color: "Bege", Style: "Contemporâneo", Price: 2799.00, Height: 110, Width: 158, Depth: 198, DateCreated: day(20)},
		{ID: 11, ProductCode: "GUA-001", Name: "Guarda-Roupa Casal Viena", Description: "Guarda-roupa de 6 portas com espelho", Category: "Guarda-Roupas", Material: "MDF", Color: "Branco", Style: "Moderno", Price: 1599.00, Height: 220, Width: 230, Depth: 55, DateCreated: day(22)},
		{ID: 12, ProductCode: "RAC-001", Name: "Rack para TV Milão", Description: "Rack suspenso para TV até 65 polegadas", Category: "Racks", Material: "MDF", Color: "Castanho", Style: "Moderno", Price: 649.90, Height: 40, Width: 180, Depth: 38, DateCreated: day(24)},
	}
}

// seedSynonyms maps common search words to catalog vocabulary. Keys are
// lowercase; the real engine keeps this table in the database.
func seedSynonyms() map[string][]string {
	return map[string][]string{
		"sofa":     {"sofá", "sofá retrátil"},
		"divã":     {"sofá", "poltrona"},
		"cadeira":  {"cadeira de jantar", "poltrona"},
		"mesa":     {"mesa de jantar", "mesa de centro"},
		"armario":  {"guarda-roupa", "estante"},
		"armário":  {"guarda-roupa", "estante"},
		"cama":     {"cama box", "cama de casal"},
		"estante":  {"rack", "prateleira"},
		"poltrona": {"poltrona costela", "cadeira"},
	}
}
