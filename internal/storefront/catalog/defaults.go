package catalog

import "github.com/DarshanM12/student-ecommerce/internal/domain"

const imageBase = "https://images.unsplash.com/"

// categoryDefs — фиксированный список категорий витрины в порядке показа.
var categoryDefs = []domain.Category{
	{ID: "stationery", Name: "Stationery", Icon: "📝"},
	{ID: "id-cards", Name: "ID Cards & Lanyards", Icon: "🪪"},
	{ID: "lab-materials", Name: "Lab Materials", Icon: "🔬"},
	{ID: "sports", Name: "Sports Items", Icon: "⚽"},
	{ID: "snacks", Name: "Snacks", Icon: "🍪"},
	{ID: "raincoat", Name: "Raincoat & Umbrella", Icon: "☔"},
	{ID: "electronics", Name: "Electronics Accessories", Icon: "🔌"},
	{ID: "others", Name: "Others", Icon: "📦"},
}

// DefaultProducts возвращает стартовый ассортимент магазина (26 товаров, 8 категорий).
// Каждый вызов отдаёт новый срез.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Notebook (200 pages)", Price: 45, Image: imageBase + "photo-1544947950-fa07a98d237f?w=400", Category: "stationery"},
		{ID: "p2", Name: "Ball Point Pen (Pack of 5)", Price: 25, Image: imageBase + "photo-1583484963886-47ce95e2e5fb?w=400", Category: "stationery"},
		{ID: "p3", Name: "A4 Paper (500 sheets)", Price: 200, Image: imageBase + "photo-1455621481073-d5bc1c40e3cb?w=400", Category: "stationery"},
		{ID: "p4", Name: "Stapler with Staples", Price: 75, Image: imageBase + "photo-1585221140117-5bc4baee9cd1?w=400", Category: "stationery"},

		{ID: "p5", Name: "ID Card Lanyard (Nylon)", Price: 50, Image: imageBase + "photo-1586268221531-5857a6e4f024?w=400", Category: "id-cards"},
		{ID: "p6", Name: "ID Card Holder (Clear)", Price: 30, Image: imageBase + "photo-1600210492486-724fe5c67fb0?w=400", Category: "id-cards"},
		{ID: "p7", Name: "Premium ID Card Lanyard", Price: 100, Image: imageBase + "photo-1622459921698-06a292954f4a?w=400", Category: "id-cards"},

		{ID: "p8", Name: "Laboratory Notebook", Price: 120, Image: imageBase + "photo-1509228468518-180dd4864904?w=400", Category: "lab-materials"},
		{ID: "p9", Name: "Safety Goggles", Price: 150, Image: imageBase + "photo-1559757148-5c350d0d3c56?w=400", Category: "lab-materials"},
		{ID: "p10", Name: "Lab Coat (White)", Price: 400, Image: imageBase + "photo-1576267423445-b2e0074d68a4?w=400", Category: "lab-materials"},
		{ID: "p11", Name: "Calculator (Scientific)", Price: 350, Image: imageBase + "photo-1587145820266-a5951ee6f620?w=400", Category: "lab-materials"},

		{ID: "p12", Name: "Cricket Ball (Leather)", Price: 250, Image: imageBase + "photo-1530469380069-488c885a130c?w=400", Category: "sports"},
		{ID: "p13", Name: "Badminton Racket", Price: 450, Image: imageBase + "photo-1622163642998-6bd7a686d09f?w=400", Category: "sports"},
		{ID: "p14", Name: "Football (Size 5)", Price: 300, Image: imageBase + "photo-1575361204480-aadea25e6e68?w=400", Category: "sports"},

		{ID: "p15", Name: "Energy Bar (Chocolate)", Price: 30, Image: imageBase + "photo-1606313564200-e75d5e30476c?w=400", Category: "snacks"},
		{ID: "p16", Name: "Biscuits (Mixed Pack)", Price: 45, Image: imageBase + "photo-1558961363-fa8fdf82db35?w=400", Category: "snacks"},
		{ID: "p17", Name: "Chips (Family Pack)", Price: 40, Image: imageBase + "photo-1563636619-e9143da7973b?w=400", Category: "snacks"},
		{ID: "p18", Name: "Juice Box (Mixed)", Price: 25, Image: imageBase + "photo-1600271886742-f049cd451bba?w=400", Category: "snacks"},

		{ID: "p19", Name: "Raincoat (Waterproof)", Price: 350, Image: imageBase + "photo-1591047135829-37bcedc1b8c1?w=400", Category: "raincoat"},
		{ID: "p20", Name: "Umbrella (Compact)", Price: 250, Image: imageBase + "photo-1531891570155-9e961d3ad1f3?w=400", Category: "raincoat"},
		{ID: "p21", Name: "Raincoat + Umbrella Combo", Price: 550, Image: imageBase + "photo-1541876163-4cc5c8d5d0d3?w=400", Category: "raincoat"},

		{ID: "p22", Name: "USB Cable (Type-C)", Price: 150, Image: imageBase + "photo-1587825140708-dfaf72ae4b04?w=400", Category: "electronics"},
		{ID: "p23", Name: "Phone Charger (Fast)", Price: 200, Image: imageBase + "photo-1609091839311-d5365f9ff1c8?w=400", Category: "electronics"},
		{ID: "p24", Name: "Power Bank (10000mAh)", Price: 800, Image: imageBase + "photo-1609091839311-d5365f9ff1c8?w=400", Category: "electronics"},

		{ID: "p25", Name: "Water Bottle (1L)", Price: 150, Image: imageBase + "photo-1602143407151-7111542de6e8?w=400", Category: "others"},
		{ID: "p26", Name: "Backpack (College)", Price: 650, Image: imageBase + "photo-1553062407-98eeb64c6a62?w=400", Category: "others"},
	}
}
