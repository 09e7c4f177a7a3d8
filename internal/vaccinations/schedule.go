// Package vaccinations serves the farm's reference vaccination programmes.
package vaccinations

import (
	"fmt"

	"github.com/gmchicks/storefront-backend/pkg/enums"
	pkgerrors "github.com/gmchicks/storefront-backend/pkg/errors"
)

// Entry is one dose in a programme, keyed by chick age in days.
type Entry struct {
	Day     int    `json:"day"`
	Vaccine string `json:"vaccine"`
	Method  string `json:"method"`
	Note    string `json:"note"`
}

// UpcomingEntry is an Entry due on or after the chick's current age.
type UpcomingEntry struct {
	Entry
	DaysUntil int `json:"days_until"`
}

// Tip is general flock health advice.
type Tip struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Entries are sorted by Day.
var layerSchedule = []Entry{
	{Day: 1, Vaccine: "Marek's Disease", Method: "Subcutaneous injection", Note: "Given at the hatchery before dispatch"},
	{Day: 7, Vaccine: "Newcastle Disease + Infectious Bronchitis", Method: "Eye drop or drinking water", Note: "First Newcastle dose"},
	{Day: 14, Vaccine: "Gumboro (IBD)", Method: "Drinking water", Note: "Withhold water for two hours beforehand"},
	{Day: 21, Vaccine: "Newcastle Disease (Lasota)", Method: "Drinking water", Note: "Booster"},
	{Day: 28, Vaccine: "Gumboro (IBD)", Method: "Drinking water", Note: "Second Gumboro dose"},
	{Day: 42, Vaccine: "Fowl Pox", Method: "Wing web stab", Note: "Check for a scab at the site after a week"},
	{Day: 56, Vaccine: "Newcastle Disease (Lasota)", Method: "Drinking water", Note: "Booster"},
	{Day: 70, Vaccine: "Fowl Typhoid", Method: "Intramuscular injection", Note: "Vaccinate healthy birds only"},
	{Day: 112, Vaccine: "Newcastle Disease + Infectious Bronchitis (killed)", Method: "Intramuscular injection", Note: "Before point of lay"},
	{Day: 126, Vaccine: "Egg Drop Syndrome", Method: "Intramuscular injection", Note: "Before laying begins"},
}

var broilerSchedule = []Entry{
	{Day: 1, Vaccine: "Marek's Disease", Method: "Subcutaneous injection", Note: "Given at the hatchery before dispatch"},
	{Day: 7, Vaccine: "Newcastle Disease + Infectious Bronchitis", Method: "Eye drop or drinking water", Note: "First Newcastle dose"},
	{Day: 10, Vaccine: "Gumboro (IBD)", Method: "Drinking water", Note: "Withhold water for two hours beforehand"},
	{Day: 18, Vaccine: "Gumboro (IBD)", Method: "Drinking water", Note: "Second Gumboro dose"},
	{Day: 21, Vaccine: "Newcastle Disease (Lasota)", Method: "Drinking water", Note: "Booster before market weight"},
}

var tips = []Tip{
	{Title: "Keep the cold chain", Body: "Store vaccines between 2 and 8 degrees Celsius and never freeze them."},
	{Title: "Use clean water", Body: "Mix water vaccines with chlorine-free water and add skimmed milk powder to stabilise them."},
	{Title: "Vaccinate in the cool hours", Body: "Early morning dosing reduces stress and the birds drink faster."},
	{Title: "Only healthy birds", Body: "Do not vaccinate a flock showing signs of disease; consult a vet first."},
	{Title: "Keep records", Body: "Write down the date, batch number and vaccine for every dose."},
	{Title: "Biosecurity", Body: "Limit visitors, disinfect footwear and isolate new birds for two weeks."},
}

// Schedule returns a copy of the programme for chickType.
func Schedule(chickType enums.ChickType) ([]Entry, error) {
	var src []Entry
	switch chickType {
	case enums.ChickTypeLayer:
		src = layerSchedule
	case enums.ChickTypeBroiler:
		src = broilerSchedule
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown chick type %q", chickType))
	}
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}

// Tips returns the flock health tips.
func Tips() []Tip {
	out := make([]Tip, len(tips))
	copy(out, tips)
	return out
}

// Upcoming returns the doses due on or after chickAge days.
func Upcoming(chickAge int, chickType enums.ChickType) ([]UpcomingEntry, error) {
	if chickAge < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chick age must not be negative")
	}
	schedule, err := Schedule(chickType)
	if err != nil {
		return nil, err
	}
	out := make([]UpcomingEntry, 0, len(schedule))
	for _, entry := range schedule {
		if entry.Day >= chickAge {
			out = append(out, UpcomingEntry{Entry: entry, DaysUntil: entry.Day - chickAge})
		}
	}
	return out, nil
}
