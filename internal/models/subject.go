package models

// Subject icons rendered by the portal. Anything else falls back to IconBook.
const (
	IconBook       = "Book"
	IconCode       = "Code"
	IconCalculator = "Calculator"
	IconDatabase   = "Database"
	IconCpu        = "Cpu"
	IconGlobe      = "Globe"
	IconShield     = "Shield"
)

// SubjectIcons lists the supported icon names in display order.
var SubjectIcons = []string{IconBook, IconCode, IconCalculator, IconDatabase, IconCpu, IconGlobe, IconShield}

// Subject represents a course area that study files are filed under.
type Subject struct {
	ID            string `json:"id"`
	NameEn        string `json:"nameEn"`
	NameAr        string `json:"nameAr"`
	DescriptionEn string `json:"descriptionEn"`
	DescriptionAr string `json:"descriptionAr"`
	Icon          string `json:"icon"`
}

// IsKnownIcon reports whether icon belongs to the supported set.
func IsKnownIcon(icon string) bool {
	for _, known := range SubjectIcons {
		if known == icon {
			return true
		}
	}
	return false
}
