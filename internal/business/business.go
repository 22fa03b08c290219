package business

// GeoCoordinate is a fixed latitude/longitude pair.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// OpeningHours describes a weekly opening rule.
type OpeningHours struct {
	DayOfWeek []string
	Opens     string
	Closes    string
}

// BusinessInfo holds the agency details shared by every page and schema.
type BusinessInfo struct {
	Name         string
	Description  string
	URL          string
	Phone        string // E.164
	Email        string
	PriceRange   string
	Image        string
	Logo         string
	SameAs       []string
	HasMap       string
	Geo          GeoCoordinate
	OpeningHours OpeningHours
	Street       string
	Locality     string
	Region       string
	PostalCode   string
	Country      string
}

// ServiceArea is the structured-data projection of a suburb the agency serves.
type ServiceArea struct {
	Name    string
	State   string
	Country string
}

// Info is the process-wide business record.
var Info = BusinessInfo{
	Name:        "Red Ox Digital",
	Description: "Red Ox Digital is a Dakabin-based digital marketing agency helping Moreton Bay trades, industrial operators and retailers win more customers through local SEO, Google Ads, social media and conversion-focused websites.",
	URL:         "https://www.redoxdigital.com.au",
	Phone:       "+61734100200",
	Email:       "hello@redoxdigital.com.au",
	PriceRange:  "$$",
	Image:       "https://www.redoxdigital.com.au/images/red-ox-digital-og.jpg",
	Logo:        "https://www.redoxdigital.com.au/assets/img/red-ox-logo.png",
	SameAs: []string{
		"https://www.facebook.com/redoxdigital",
		"https://www.instagram.com/redoxdigital",
		"https://www.linkedin.com/company/red-ox-digital",
	},
	HasMap: "https://maps.google.com/?cid=4815162342108",
	Geo: GeoCoordinate{
		Latitude:  -27.2261,
		Longitude: 152.9846,
	},
	OpeningHours: OpeningHours{
		DayOfWeek: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		Opens:     "09:00",
		Closes:    "17:00",
	},
	Street:     "Boundary Road",
	Locality:   "Dakabin",
	Region:     "QLD",
	PostalCode: "4503",
	Country:    "AU",
}

// serviceAreaNames is edited independently of the location registry; see locations.Drift.
var serviceAreaNames = []string{
	"North Lakes",
	"Mango Hill",
	"Kallangur",
	"Dakabin",
	"Narangba",
	"Burpengary",
	"Petrie",
	"Murrumba Downs",
	"Griffin",
	"Deception Bay",
	"Redcliffe",
	"Strathpine",
	"Brendale",
	"Caboolture",
	"Morayfield",
}

// ServiceAreaNames returns the suburb list backing ServiceAreas.
func ServiceAreaNames() []string {
	return append([]string(nil), serviceAreaNames...)
}

// ServiceAreas returns one ServiceArea per suburb, in list order.
func ServiceAreas() []ServiceArea {
	out := make([]ServiceArea, 0, len(serviceAreaNames))
	for _, name := range serviceAreaNames {
		out = append(out, ServiceArea{Name: name, State: "QLD", Country: "AU"})
	}
	return out
}
