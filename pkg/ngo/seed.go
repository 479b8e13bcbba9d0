package ngo

import "LeftoverLink/domain"

// DefaultNGOs is the reference set loaded by cmd/database/seed.
var DefaultNGOs = []domain.NGO{
	{Name: "Rohit Mishra", Email: "rohit318mishra@gmail.com", Location: "Gwalior", Lat: 26.2134, Lng: 78.1987, Phone: "9876543210", Address: "City Centre, Gwalior, MP"},
	{Name: "Karan Mishra", Email: "karan14032a@gmail.com", Location: "Gwalior", Lat: 26.2039, Lng: 78.1639, Phone: "9988776655", Address: "Lashkar, Gwalior, MP"},
	{Name: "Deepa Mishra", Email: "deepa2010mishra@gmail.com", Location: "Gwalior", Lat: 26.228, Lng: 78.242, Phone: "9123456789", Address: "Morar, Gwalior, MP"},
	{Name: "Helping Legs", Email: "helpinglegs@gmail.com", Location: "Gwalior", Lat: 26.237, Lng: 78.191, Phone: "8877665544", Address: "Thatipur, Gwalior, MP"},
	{Name: "jinx help", Email: "jinxhelp@gmail.com", Location: "Gwalior", Lat: 26.248, Lng: 78.17, Phone: "7766554433", Address: "DD Nagar, Gwalior, MP"},
	{Name: "john wick", Email: "johnwick@gmail.com", Location: "Gwalior", Lat: 26.195, Lng: 78.188, Phone: "6655443322", Address: "Phool Bagh, Gwalior, MP"},
}
