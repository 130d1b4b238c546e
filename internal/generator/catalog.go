package generator

// productSpec describes one catalog entry. Weights are relative market
// share and get normalized before selection.
type productSpec struct {
	Name           string
	PriceMin       float64
	PriceMax       float64
	Weight         float64
	SeasonalFactor float64
}

var productCatalog = []productSpec{
	{"Laptop", 800, 2500, 0.15, 1.2},
	{"Desktop", 600, 1800, 0.08, 1.0},
	{"Monitor", 200, 800, 0.12, 1.1},
	{"Keyboard", 30, 200, 0.18, 1.0},
	{"Mouse", 20, 150, 0.19, 1.0},
	{"Headphones", 50, 400, 0.15, 1.3},
	{"Tablet", 300, 1200, 0.10, 1.4},
	{"Smartphone", 400, 1500, 0.12, 1.5},
	{"Printer", 150, 600, 0.06, 0.9},
	{"Webcam", 40, 250, 0.08, 1.2},
	{"Speaker", 80, 500, 0.10, 1.1},
	{"Router", 100, 400, 0.05, 1.0},
}

var regions = []string{"North", "South", "East", "West", "Central"}

type channelSpec struct {
	Name   string
	Weight float64
}

var salesChannels = []channelSpec{
	{"Online", 0.45},
	{"Retail", 0.30},
	{"Partner", 0.15},
	{"Direct", 0.10},
}

type segmentSpec struct {
	Name              string
	Weight            float64
	OrderValueMult    float64
	BundleProbability float64
}

var customerSegments = []segmentSpec{
	{"Enterprise", 0.15, 2.5, 0.40},
	{"SMB", 0.35, 1.5, 0.30},
	{"Consumer", 0.40, 1.0, 0.15},
	{"Education", 0.10, 1.2, 0.35},
}

// regionFactor captures the regional economy. Tech-heavy products average
// both factors; everything else follows economic strength alone.
type regionFactor struct {
	EconomicStrength float64
	TechAdoption     float64
}

var regionalFactors = map[string]regionFactor{
	"North":   {1.2, 1.3},
	"South":   {0.9, 0.8},
	"East":    {1.1, 1.1},
	"West":    {1.3, 1.4},
	"Central": {1.0, 1.0},
}

// Products often bought together; the first purchase can trigger a
// follow-on transaction for one of these.
var productBundles = map[string][]string{
	"Laptop":     {"Mouse", "Keyboard", "Headphones"},
	"Desktop":    {"Monitor", "Keyboard", "Mouse"},
	"Smartphone": {"Headphones", "Speaker"},
	"Tablet":     {"Keyboard", "Headphones"},
	"Webcam":     {"Headphones", "Speaker"},
}

const (
	TierTop     = "top_performer"
	TierHigh    = "high_performer"
	TierAverage = "average_performer"
	TierLow     = "low_performer"
)

type tierSpec struct {
	Name            string
	Share           float64
	PerformanceMult float64
	NameSuffix      string
}

var salespersonTiers = []tierSpec{
	{TierTop, 0.10, 1.8, " (Top)"},
	{TierHigh, 0.20, 1.4, " (High)"},
	{TierLow, 0.20, 0.6, " (Low)"},
	{TierAverage, 0.50, 1.0, ""},
}

var highValueProducts = map[string]bool{
	"Laptop":     true,
	"Desktop":    true,
	"Smartphone": true,
}

var computerProducts = map[string]bool{
	"Laptop":     true,
	"Desktop":    true,
	"Tablet":     true,
	"Smartphone": true,
}

var peripheralProducts = map[string]bool{
	"Monitor": true,
	"Printer": true,
}

var techProducts = map[string]bool{
	"Laptop":     true,
	"Desktop":    true,
	"Smartphone": true,
	"Tablet":     true,
	"Webcam":     true,
}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Carlos", "Karen", "Wei",
	"Nancy", "Daniel", "Lisa", "Matthew", "Betty", "Anthony", "Margaret",
	"Mark", "Sandra", "Priya", "Ashley", "Steven", "Kimberly", "Paul",
	"Emily", "Andrew", "Donna", "Joshua", "Michelle",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
	"Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

var emailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "example.com",
}
