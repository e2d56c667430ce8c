package threats

const (
	StatusPotential = "Potential"
	StatusActive    = "Active"
	StatusResolved  = "Resolved"
)

var validStatuses = map[string]struct{}{
	StatusPotential: {},
	StatusActive:    {},
	StatusResolved:  {},
}

// UnresolvedStatuses is the derived "unresolved" filter.
var UnresolvedStatuses = []string{StatusPotential, StatusActive}

// Categories is the fixed vocabulary a threat can be tagged with.
var Categories = []string{
	"Personnel / Human Life",
	"Environment",
	"IT Services",
	"Physical Assets",
	"Sensitive Data",
	"Operational Continuity",
	"General Security",
}

var validCategories = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

const (
	MinLevel = 1
	MaxLevel = 5
)

var levelLabels = map[int]string{
	1: "Informational",
	2: "Low",
	3: "Medium",
	4: "High",
	5: "Critical",
}

func ValidStatus(status string) bool {
	_, ok := validStatuses[status]
	return ok
}

func ValidCategory(category string) bool {
	_, ok := validCategories[category]
	return ok
}

func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

func LevelLabel(level int) string {
	if label, ok := levelLabels[level]; ok {
		return label
	}
	return "Unknown"
}
