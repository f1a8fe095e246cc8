package models

// BadgeID identifies one badge variant.
type BadgeID string

const (
	BadgeStarter   BadgeID = "starter"
	BadgeTenPosts  BadgeID = "tenPosts"
	BadgePoints50  BadgeID = "points50"
	BadgePoints150 BadgeID = "points150"
	BadgeVariety3  BadgeID = "variety3"
	BadgeCafeteria BadgeID = "cafeteria3"
)

// Badge couples a badge variant with its display data and earning rule.
// Rules are pure predicates over the student-stats view.
type Badge struct {
	ID     BadgeID                 `json:"id"`
	Name   string                  `json:"name"`
	Icon   string                  `json:"icon"`
	Earned func(StudentStats) bool `json:"-"`
}

// Badges returns the full badge table in evaluation order. The order is part
// of the contract: rules are evaluated top to bottom.
func Badges() []Badge {
	return []Badge{
		{ID: BadgeStarter, Name: "بداية صحية", Icon: "🌱", Earned: func(s StudentStats) bool { return s.PostCount >= 1 }},
		{ID: BadgeTenPosts, Name: "ملتزم", Icon: "✅", Earned: func(s StudentStats) bool { return s.PostCount >= 10 }},
		{ID: BadgePoints50, Name: "نقاط 50", Icon: "⭐", Earned: func(s StudentStats) bool { return s.Points >= 50 }},
		{ID: BadgePoints150, Name: "بطل الصحة", Icon: "🏅", Earned: func(s StudentStats) bool { return s.Points >= 150 }},
		{ID: BadgeVariety3, Name: "متذوّق", Icon: "🍇", Earned: func(s StudentStats) bool { return s.DistinctFoodTypes >= 3 }},
		{ID: BadgeCafeteria, Name: "اختيارات مقصف ذكية", Icon: "🏫", Earned: func(s StudentStats) bool { return s.CafeteriaPosts >= 3 }},
	}
}

// BadgeByID looks up a badge variant. The second return is false for ids
// imported from documents produced by other versions.
func BadgeByID(id BadgeID) (Badge, bool) {
	for _, b := range Badges() {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
