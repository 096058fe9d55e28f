package listing

// Damascus is the seeded name of the one city with a neighborhood allow-list.
const Damascus = "دمشق"

// damascusActive are the neighborhoods currently served in Damascus.
var damascusActive = []string{"المزة", "كفرسوسة", "الميدان"}

// damascusKnown is the catalogue of Damascus neighborhoods offered to owners
// and seekers; only damascusActive among them accept listings.
var damascusKnown = []string{
	"المزة", "كفرسوسة", "الميدان", "القدم", "القصاع", "المالكي", "أبو رمانة",
	"البرامكة", "ركن الدين", "الصالحية", "الشعلان", "المهاجرين", "العدوي",
	"القنوات", "باب توما", "باب شرقي", "ساروجة", "العفيف", "الجسر الأبيض",
	"الزاهرة", "الرحمانية", "دمر", "السبينة", "جوبر", "حرستا", "دوما",
	"داريا", "معضمية الشام", "صحنايا", "الكسوة", "التضامن", "الهامة",
	"قدسيا", "يملك", "القابون", "برزة", "القطيفة", "الخضيري",
	"الزبداني", "بلد", "جرمانا", "سقبا", "معربا", "عربين", "حزة", "ببيلا",
}

// Policy decides which neighborhoods of a city are active. Cities without an
// allow-list accept any area.
type Policy struct {
	active map[string][]string
	known  map[string][]string
}

// DefaultPolicy restricts Damascus to its active neighborhoods.
func DefaultPolicy() *Policy {
	return NewPolicy(
		map[string][]string{Damascus: damascusActive},
		map[string][]string{Damascus: damascusKnown},
	)
}

// NewPolicy builds a policy from per-city allow-lists and optional area catalogues.
func NewPolicy(active, known map[string][]string) *Policy {
	p := &Policy{active: map[string][]string{}, known: map[string][]string{}}
	for city, areas := range active {
		p.active[city] = append([]string(nil), areas...)
	}
	for city, areas := range known {
		p.known[city] = append([]string(nil), areas...)
	}
	return p
}

// Restricted reports whether city has an allow-list.
func (p *Policy) Restricted(city string) bool {
	_, ok := p.active[city]
	return ok
}

// Allows reports whether area is active in city.
func (p *Policy) Allows(city, area string) bool {
	list, ok := p.active[city]
	if !ok {
		return true
	}
	for _, a := range list {
		if a == area {
			return true
		}
	}
	return false
}

// ActiveAreas returns a copy of city's allow-list, or nil when unrestricted.
func (p *Policy) ActiveAreas(city string) []string {
	if list, ok := p.active[city]; ok {
		return append([]string(nil), list...)
	}
	return nil
}

// KnownAreas returns the area catalogue for city. For a restricted city with
// no catalogue this is its allow-list.
func (p *Policy) KnownAreas(city string) []string {
	if list, ok := p.known[city]; ok {
		return append([]string(nil), list...)
	}
	return p.ActiveAreas(city)
}
